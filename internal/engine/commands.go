package engine

import (
	"context"
	"fmt"

	"github.com/alexanderramin/worktimer/internal/domain"
)

// StartDay opens the day's session, or adopts the open one the remote
// already has.
func (e *Engine) StartDay(ctx context.Context) error {
	return e.run(ctx, domain.CommandStart, "starting day")
}

// Pause pushes the true elapsed value, then pauses.
func (e *Engine) Pause(ctx context.Context) error {
	return e.run(ctx, domain.CommandPause, "pausing day")
}

func (e *Engine) Resume(ctx context.Context) error {
	return e.run(ctx, domain.CommandResume, "resuming day")
}

// EndDay pushes the true elapsed value, then completes the session.
func (e *Engine) EndDay(ctx context.Context) error {
	return e.run(ctx, domain.CommandEnd, "ending day")
}

func (e *Engine) run(ctx context.Context, cmd domain.Command, verb string) (err error) {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrConcurrentCommand
	}
	defer e.busy.Store(false)

	start := e.clock.Now()
	e.mu.Lock()
	if err := e.checkReadyLocked(cmd); err != nil {
		e.mu.Unlock()
		return err
	}
	tx := e.beginLocked()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		to := e.status
		e.mu.Unlock()
		e.observer.OnCommand(CommandEvent{
			Command:  cmd,
			From:     tx.status,
			To:       to,
			Elapsed:  e.counter.Elapsed(),
			Duration: e.clock.Since(start),
			Err:      err,
		})
	}()

	if cmd == domain.CommandPause || cmd == domain.CommandEnd {
		if p, ok := e.activePayload(); ok {
			_ = e.push(ctx, SourcePreflush, p)
		}
	}

	// Only the displayed value moves ahead of the remote.
	switch cmd {
	case domain.CommandPause, domain.CommandEnd:
		e.counter.Stop()
	case domain.CommandResume:
		e.counter.Start(e.counter.Elapsed())
	}

	s, err := e.call(ctx, cmd)
	if err != nil {
		tx.rollback()
		// A display tick may have saved the optimistic state meanwhile.
		e.persist(ctx)
		return fmt.Errorf("%s: %w", verb, err)
	}
	tx.commit(s)
	e.persist(ctx)
	return nil
}

func (e *Engine) checkReadyLocked(cmd domain.Command) error {
	if e.closed {
		return ErrClosed
	}
	if !e.loaded {
		if e.loadErr != nil {
			return fmt.Errorf("%w: %w", ErrNotLoaded, e.loadErr)
		}
		return ErrNotLoaded
	}
	if _, err := domain.Next(e.status, cmd); err != nil {
		return err
	}
	return nil
}

func (e *Engine) call(ctx context.Context, cmd domain.Command) (*domain.WorkSession, error) {
	switch cmd {
	case domain.CommandStart:
		res, err := e.tracker.StartDay(ctx)
		if err != nil {
			return nil, err
		}
		if res.AlreadyStarted {
			e.logger.Info().
				Str("session_id", res.Session.ID).
				Int64("net_seconds", res.Session.NetSeconds).
				Msg("day_already_started")
		}
		return res.Session, nil
	case domain.CommandPause:
		return e.tracker.Pause(ctx)
	case domain.CommandResume:
		return e.tracker.Resume(ctx)
	case domain.CommandEnd:
		return e.tracker.EndDay(ctx)
	}
	return nil, fmt.Errorf("unknown command %q", cmd)
}
