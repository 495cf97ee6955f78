package engine

import (
	"context"
	"fmt"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
)

// Reload fetches the remote status again and reconciles local state with it.
// It fails with ErrConcurrentCommand while a command is in flight.
func (e *Engine) Reload(ctx context.Context) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrConcurrentCommand
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return e.load(ctx)
}

// load shows the local snapshot while the engine has never loaded, then asks
// the remote once. The remote answer replaces whatever the snapshot said.
func (e *Engine) load(ctx context.Context) error {
	e.showProvisional(ctx)

	st, err := e.tracker.GetStatus(ctx)
	if err != nil {
		e.mu.Lock()
		e.loadErr = err
		e.mu.Unlock()
		e.logger.Warn().Err(err).Msg("session_load_failed")
		return fmt.Errorf("loading session status: %w", err)
	}

	e.mu.Lock()
	e.loaded = true
	e.loadErr = nil
	e.reconcileLocked(st)
	status, elapsed := e.status, e.counter.Elapsed()
	e.mu.Unlock()

	e.persist(ctx)
	e.logger.Info().
		Str("status", string(status)).
		Int64("elapsed_seconds", elapsed).
		Bool("has_active_day", st.HasActiveDay).
		Msg("session_loaded")
	return nil
}

func (e *Engine) showProvisional(ctx context.Context) {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if loaded {
		return
	}

	snap, err := e.snaps.Read(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("snapshot_read_failed")
		return
	}
	if snap == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return
	}
	elapsed := snap.ProjectedElapsed(e.clock.Now())
	if snap.IsRunning {
		e.counter.Start(elapsed)
	} else {
		e.counter.Set(elapsed)
	}
}

func (e *Engine) reconcileLocked(st *remote.Status) {
	switch {
	case st.HasActiveDay && st.Session != nil && st.CurrentStatus.Active():
		s := *st.Session
		s.Status = st.CurrentStatus
		e.adoptLocked(&s)
	case !st.HasActiveDay && st.CurrentStatus == domain.StatusCompleted && st.Session != nil:
		s := *st.Session
		s.Status = domain.StatusCompleted
		e.adoptLocked(&s)
	default:
		if st.HasActiveDay {
			e.logger.Warn().Str("status", string(st.CurrentStatus)).Msg("active_day_without_session")
		}
		e.resetLocked()
	}
}

// retryLoad runs from the primary tick while the engine has not loaded yet.
func (e *Engine) retryLoad(ctx context.Context) {
	if !e.busy.CompareAndSwap(false, true) {
		return
	}
	defer e.busy.Store(false)
	_ = e.load(ctx)
}
