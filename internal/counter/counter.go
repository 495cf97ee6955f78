// Package counter computes elapsed work time from a wall-clock anchor.
//
// The value is always recomputed as base + floor((now - anchor) / 1s). It is
// never advanced by callbacks, so a throttled or delayed ticker cannot make
// it drift.
package counter

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State is a copy of the counter's internals, used to restore the counter
// exactly when a command is rolled back.
type State struct {
	Base    int64
	Anchor  time.Time
	Running bool
}

// Counter is safe for concurrent use.
type Counter struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	base    int64
	anchor  time.Time
	running bool
}

// New creates a stopped counter at zero.
func New(clock clockwork.Clock) *Counter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Counter{clock: clock}
}

// Start begins a run with base seconds already accumulated. Calling Start on a
// running counter re-anchors it.
func (c *Counter) Start(base int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if base < 0 {
		base = 0
	}
	c.base = base
	c.anchor = c.clock.Now()
	c.running = true
}

// Stop freezes the counter and returns its final value. Stopping a counter
// that is not running returns the frozen value unchanged.
func (c *Counter) Stop() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.base = c.elapsedLocked()
		c.running = false
	}
	return c.base
}

// Set freezes the counter at value.
func (c *Counter) Set(value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value < 0 {
		value = 0
	}
	c.base = value
	c.running = false
}

// Elapsed returns the current elapsed seconds.
func (c *Counter) Elapsed() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsedLocked()
}

// Running reports whether a run is active.
func (c *Counter) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Capture returns the counter's internals.
func (c *Counter) Capture() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{Base: c.base, Anchor: c.anchor, Running: c.running}
}

// Restore puts the counter back to a captured state. A restored running
// counter keeps its original anchor, so time that passed since the capture is
// still counted.
func (c *Counter) Restore(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = s.Base
	c.anchor = s.Anchor
	c.running = s.Running
}

func (c *Counter) elapsedLocked() int64 {
	if !c.running {
		return c.base
	}
	delta := c.clock.Since(c.anchor)
	if delta < 0 {
		delta = 0
	}
	return c.base + int64(delta/time.Second)
}
