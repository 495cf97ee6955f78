package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
)

// Tracker operation names as recorded by RecordingTracker.
const (
	OpStartDay  = "start_day"
	OpPause     = "pause"
	OpResume    = "resume"
	OpEndDay    = "end_day"
	OpSyncTime  = "sync_time"
	OpGetStatus = "get_status"
)

// TrackerCall is one recorded call. Payload is set for sync calls.
type TrackerCall struct {
	Op      string
	Payload *domain.SyncPayload
}

// RecordingTracker wraps a remote.Tracker, records every call in order and
// can fail chosen operations.
type RecordingTracker struct {
	Inner remote.Tracker

	mu    sync.Mutex
	calls []TrackerCall
	fail  map[string]error
	// Before runs before a call reaches Inner, outside the tracker lock.
	Before func(op string)
}

func NewRecordingTracker(inner remote.Tracker) *RecordingTracker {
	return &RecordingTracker{Inner: inner, fail: map[string]error{}}
}

// Fail makes every later call of op return err until Heal is called.
func (r *RecordingTracker) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = err
}

// Heal clears the injected failure for op.
func (r *RecordingTracker) Heal(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fail, op)
}

// Calls returns a copy of the recorded calls.
func (r *RecordingTracker) Calls() []TrackerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TrackerCall(nil), r.calls...)
}

// Count returns how many times op was called.
func (r *RecordingTracker) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Syncs returns the payloads of all recorded sync calls.
func (r *RecordingTracker) Syncs() []domain.SyncPayload {
	var out []domain.SyncPayload
	for _, c := range r.Calls() {
		if c.Op == OpSyncTime {
			out = append(out, *c.Payload)
		}
	}
	return out
}

func (r *RecordingTracker) record(op string, p *domain.SyncPayload) error {
	if r.Before != nil {
		r.Before(op)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, TrackerCall{Op: op, Payload: p})
	return r.fail[op]
}

func (r *RecordingTracker) StartDay(ctx context.Context) (*remote.StartDayResult, error) {
	if err := r.record(OpStartDay, nil); err != nil {
		return nil, err
	}
	return r.Inner.StartDay(ctx)
}

func (r *RecordingTracker) Pause(ctx context.Context) (*domain.WorkSession, error) {
	if err := r.record(OpPause, nil); err != nil {
		return nil, err
	}
	return r.Inner.Pause(ctx)
}

func (r *RecordingTracker) Resume(ctx context.Context) (*domain.WorkSession, error) {
	if err := r.record(OpResume, nil); err != nil {
		return nil, err
	}
	return r.Inner.Resume(ctx)
}

func (r *RecordingTracker) EndDay(ctx context.Context) (*domain.WorkSession, error) {
	if err := r.record(OpEndDay, nil); err != nil {
		return nil, err
	}
	return r.Inner.EndDay(ctx)
}

func (r *RecordingTracker) SyncTime(ctx context.Context, p domain.SyncPayload) (*domain.WorkSession, error) {
	if err := r.record(OpSyncTime, &p); err != nil {
		return nil, err
	}
	return r.Inner.SyncTime(ctx, p)
}

func (r *RecordingTracker) GetStatus(ctx context.Context) (*remote.Status, error) {
	if err := r.record(OpGetStatus, nil); err != nil {
		return nil, err
	}
	return r.Inner.GetStatus(ctx)
}

var _ remote.Tracker = (*RecordingTracker)(nil)
