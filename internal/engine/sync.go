package engine

import (
	"context"

	"github.com/alexanderramin/worktimer/internal/domain"
)

func (e *Engine) primaryTick(ctx context.Context) {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if !loaded {
		e.retryLoad(ctx)
		return
	}
	e.maybePush(ctx, SourcePrimary)
}

func (e *Engine) autosaveTick(ctx context.Context) {
	e.maybePush(ctx, SourceAutosave)
}

// maybePush sends the current elapsed value when a session is running and at
// least one sync interval has passed since the last successful push. Both
// periodic ticks share this throttle. Reports whether a push was attempted.
func (e *Engine) maybePush(ctx context.Context, source SyncSource) bool {
	// Claim the flag before reading the throttle so a tick that lost the race
	// sees the lastSyncAt left by the winner.
	if !e.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer e.syncing.Store(false)

	e.mu.Lock()
	due := e.loaded && e.status == domain.StatusInProgress && e.session != nil &&
		e.clock.Since(e.lastSyncAt) >= e.syncEvery
	e.mu.Unlock()
	if !due {
		return false
	}

	p, ok := e.activePayload()
	if !ok {
		return false
	}
	_ = e.push(ctx, source, p)
	return true
}

// activePayload builds a sync payload from the counter when a session is open.
func (e *Engine) activePayload() (domain.SyncPayload, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || !e.status.Active() {
		return domain.SyncPayload{}, false
	}
	return domain.SyncPayload{
		SessionID:      e.session.ID,
		ElapsedSeconds: e.counter.Elapsed(),
		Running:        e.counter.Running(),
		Timestamp:      e.clock.Now(),
	}, true
}

// push sends p and records the outcome. Failures are logged and reported to
// the observer but otherwise swallowed; the next tick tries again. The
// response never changes the local elapsed value.
func (e *Engine) push(ctx context.Context, source SyncSource, p domain.SyncPayload) error {
	s, err := e.tracker.SyncTime(ctx, p)
	e.observer.OnSync(SyncEvent{
		Source:         source,
		SessionID:      p.SessionID,
		ElapsedSeconds: p.ElapsedSeconds,
		Err:            err,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("source", string(source)).Msg("sync_failed")
		return err
	}

	e.mu.Lock()
	e.lastSyncAt = p.Timestamp
	local := e.status
	e.mu.Unlock()

	if s != nil && s.Status != local {
		e.logger.Warn().
			Str("local", string(local)).
			Str("remote", string(s.Status)).
			Msg("sync_status_mismatch")
	}
	return nil
}
