// Package engine drives a work-day session: it owns the elapsed-time counter,
// applies start/pause/resume/end through the remote service, keeps the remote
// record current with throttled sync pushes and persists a local snapshot so
// a restart can show a value before the remote answers.
//
// Remote state is authoritative. Local status only changes after the remote
// confirms a command; the displayed elapsed value is the one thing allowed to
// move ahead of confirmation.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/worktimer/internal/counter"
	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/snapshot"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	DefaultTickInterval     = time.Second
	DefaultSyncInterval     = 30 * time.Second
	DefaultAutosaveInterval = 60 * time.Second
)

// Options configures an Engine. Tracker is required; everything else has a
// usable zero value.
type Options struct {
	Tracker   remote.Tracker
	Snapshots snapshot.Store
	Clock     clockwork.Clock
	Logger    zerolog.Logger
	Observer  Observer

	TickInterval     time.Duration
	SyncInterval     time.Duration
	AutosaveInterval time.Duration

	// OnTick is called from the display tick with the current view.
	OnTick func(View)
}

// View is what a UI renders.
type View struct {
	ElapsedSeconds int64
	Status         domain.SessionStatus
	SessionID      string
	HasActiveDay   bool

	CanStart  bool
	CanPause  bool
	CanResume bool
	CanEnd    bool

	// Provisional is true until the remote status has been loaded. The
	// elapsed value then comes from the local snapshot.
	Provisional bool
	Busy        bool
	LoadErr     error
}

// ReminderView is the subset a reminder needs to decide whether to prompt.
type ReminderView struct {
	Status       domain.SessionStatus
	HasActiveDay bool
}

type Engine struct {
	tracker  remote.Tracker
	snaps    snapshot.Store
	clock    clockwork.Clock
	logger   zerolog.Logger
	observer Observer
	onTick   func(View)

	tick, syncEvery, autosaveEvery time.Duration

	counter *counter.Counter

	mu         sync.Mutex
	status     domain.SessionStatus
	session    *domain.WorkSession
	loaded     bool
	loadErr    error
	closed     bool
	lastSyncAt time.Time

	busy    atomic.Bool
	syncing atomic.Bool

	stopLoop context.CancelFunc
	loopDone chan struct{}
	inflight sync.WaitGroup
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Snapshots == nil {
		opts.Snapshots = snapshot.NewMemoryStore(snapshot.Options{Clock: opts.Clock})
	}
	if opts.Observer == nil {
		opts.Observer = NoopObserver{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = DefaultSyncInterval
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = DefaultAutosaveInterval
	}
	return &Engine{
		tracker:       opts.Tracker,
		snaps:         opts.Snapshots,
		clock:         opts.Clock,
		logger:        opts.Logger,
		observer:      opts.Observer,
		onTick:        opts.OnTick,
		tick:          opts.TickInterval,
		syncEvery:     opts.SyncInterval,
		autosaveEvery: opts.AutosaveInterval,
		counter:       counter.New(opts.Clock),
		status:        domain.StatusNotStarted,
	}
}

// Start loads the session, then runs the display, sync and autosave tickers
// until Close. A load failure is returned, but the engine keeps running and
// retries the load on each sync tick.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.loopDone != nil {
		e.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.stopLoop = cancel
	e.loopDone = make(chan struct{})
	e.mu.Unlock()

	err := e.load(ctx)

	display := e.clock.NewTicker(e.tick)
	primary := e.clock.NewTicker(e.syncEvery)
	autosave := e.clock.NewTicker(e.autosaveEvery)
	go e.loop(loopCtx, display, primary, autosave)
	return err
}

func (e *Engine) loop(ctx context.Context, display, primary, autosave clockwork.Ticker) {
	defer close(e.loopDone)
	defer display.Stop()
	defer primary.Stop()
	defer autosave.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-display.Chan():
			e.displayTick(ctx)
		case <-primary.Chan():
			e.background(ctx, e.primaryTick)
		case <-autosave.Chan():
			e.background(ctx, e.autosaveTick)
		}
	}
}

// background runs fn off the loop goroutine so a slow remote never delays
// the display tick.
func (e *Engine) background(ctx context.Context, fn func(context.Context)) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		fn(ctx)
	}()
}

// Close stops the tickers, waits for background work, and pushes the final
// elapsed value when a session is active. Commands issued afterwards return
// ErrClosed.
func (e *Engine) Close(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	stop, done := e.stopLoop, e.loopDone
	e.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	e.inflight.Wait()

	if p, ok := e.activePayload(); ok {
		_ = e.push(ctx, SourceTeardown, p)
	}
}

// State returns the current view.
func (e *Engine) State() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) Reminder() ReminderView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ReminderView{Status: e.status, HasActiveDay: e.status.Active()}
}

func (e *Engine) viewLocked() View {
	v := View{
		ElapsedSeconds: e.counter.Elapsed(),
		Status:         e.status,
		HasActiveDay:   e.status.Active(),
		Provisional:    !e.loaded,
		Busy:           e.busy.Load(),
		LoadErr:        e.loadErr,
	}
	if e.session != nil {
		v.SessionID = e.session.ID
	}
	if e.loaded && !v.Busy && !e.closed {
		v.CanStart = domain.Allowed(e.status, domain.CommandStart)
		v.CanPause = domain.Allowed(e.status, domain.CommandPause)
		v.CanResume = domain.Allowed(e.status, domain.CommandResume)
		v.CanEnd = domain.Allowed(e.status, domain.CommandEnd)
	}
	return v
}

// displayTick refreshes the snapshot while running and hands the view to the
// UI. It only reads the counter.
func (e *Engine) displayTick(ctx context.Context) {
	e.mu.Lock()
	running := e.loaded && e.counter.Running()
	view := e.viewLocked()
	e.mu.Unlock()

	if running {
		e.persist(ctx)
	}
	if e.onTick != nil {
		e.onTick(view)
	}
}

// adoptLocked makes s the current session. Elapsed time comes from the
// session, never from the local counter.
func (e *Engine) adoptLocked(s *domain.WorkSession) {
	e.session = s
	e.status = s.Status
	switch s.Status {
	case domain.StatusInProgress:
		e.counter.Start(s.NetSeconds)
	case domain.StatusNotStarted:
		e.session = nil
		e.counter.Set(0)
	default:
		e.counter.Set(s.NetSeconds)
	}
}

func (e *Engine) resetLocked() {
	e.session = nil
	e.status = domain.StatusNotStarted
	e.counter.Set(0)
}

// persist writes the snapshot for an active session and clears it otherwise.
func (e *Engine) persist(ctx context.Context) {
	e.mu.Lock()
	active := e.status.Active() && e.session != nil
	snap := domain.LocalSnapshot{
		BaseElapsedSeconds: e.counter.Elapsed(),
		IsRunning:          e.counter.Running(),
		SavedAtEpochMs:     e.clock.Now().UnixMilli(),
	}
	if e.session != nil {
		snap.SessionID = e.session.ID
	}
	e.mu.Unlock()

	var err error
	if active {
		err = e.snaps.Write(ctx, snap)
	} else {
		err = e.snaps.Clear(ctx)
	}
	if err != nil {
		e.logger.Warn().Err(err).Bool("write", active).Msg("snapshot_persist_failed")
	}
}
