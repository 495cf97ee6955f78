package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/worktimer/internal/db"
	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const dayLayout = "2006-01-02"

type timeTrackingService struct {
	sessions repository.WorkSessionRepo
	uow      db.UnitOfWork
	clock    clockwork.Clock
	loc      *time.Location
	observer UseCaseObserver
}

// NewTimeTrackingService creates the service. Calendar days are computed in
// loc (UTC when nil).
func NewTimeTrackingService(sessions repository.WorkSessionRepo, uow db.UnitOfWork, clock clockwork.Clock, loc *time.Location, observers ...UseCaseObserver) TimeTrackingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &timeTrackingService{
		sessions: sessions,
		uow:      uow,
		clock:    clock,
		loc:      loc,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timeTrackingService) StartDay(ctx context.Context) (result *remote.StartDayResult, err error) {
	now := s.clock.Now()
	defer s.observe(ctx, "start_day", now, &err, func() map[string]any {
		return map[string]any{"already_started": result != nil && result.AlreadyStarted}
	})

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteWorkSessionRepo(tx)

		open, err := repo.GetOpen(ctx)
		switch {
		case err == nil:
			accrue(open, now)
			result = &remote.StartDayResult{Session: sessionView(open), AlreadyStarted: true}
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		rec := &repository.SessionRecord{
			WorkSession: domain.WorkSession{
				ID:        uuid.New().String(),
				Status:    domain.StatusInProgress,
				StartedAt: now,
				UpdatedAt: now,
			},
			Day:          now.In(s.loc).Format(dayLayout),
			NetUpdatedAt: now,
			CreatedAt:    now,
		}
		if err := repo.Create(ctx, rec); err != nil {
			return err
		}
		result = &remote.StartDayResult{Session: sessionView(rec)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("starting day: %w", err)
	}
	return result, nil
}

func (s *timeTrackingService) Pause(ctx context.Context) (*domain.WorkSession, error) {
	return s.transition(ctx, domain.CommandPause, func(rec *repository.SessionRecord, now time.Time) {
		accrue(rec, now)
		rec.PauseStartedAt = &now
	})
}

func (s *timeTrackingService) Resume(ctx context.Context) (*domain.WorkSession, error) {
	return s.transition(ctx, domain.CommandResume, func(rec *repository.SessionRecord, now time.Time) {
		closePause(rec, now)
		rec.NetUpdatedAt = now
	})
}

func (s *timeTrackingService) EndDay(ctx context.Context) (*domain.WorkSession, error) {
	return s.transition(ctx, domain.CommandEnd, func(rec *repository.SessionRecord, now time.Time) {
		accrue(rec, now)
		closePause(rec, now)
		rec.EndedAt = &now
	})
}

// transition applies cmd to the open session. mutate runs before the status
// changes, so it still sees the previous status.
func (s *timeTrackingService) transition(ctx context.Context, cmd domain.Command, mutate func(*repository.SessionRecord, time.Time)) (view *domain.WorkSession, err error) {
	now := s.clock.Now()
	defer s.observe(ctx, string(cmd), now, &err, nil)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteWorkSessionRepo(tx)

		rec, err := repo.GetOpen(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: no open session to %s", domain.ErrInvalidTransition, cmd)
		}
		if err != nil {
			return err
		}

		next, err := domain.Next(rec.Status, cmd)
		if err != nil {
			return err
		}
		mutate(rec, now)
		rec.Status = next
		rec.UpdatedAt = now
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		view = sessionView(rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return view, nil
}

// SyncTime raises the stored net time to the client's value. It never lowers
// it, and never beyond the wall time since the session started.
func (s *timeTrackingService) SyncTime(ctx context.Context, p domain.SyncPayload) (view *domain.WorkSession, err error) {
	now := s.clock.Now()
	defer s.observe(ctx, "sync_time", now, &err, func() map[string]any {
		return map[string]any{"elapsed_seconds": p.ElapsedSeconds, "running": p.Running}
	})

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteWorkSessionRepo(tx)

		rec, err := repo.GetByID(ctx, p.SessionID)
		if err != nil {
			return err
		}
		if !rec.Status.Active() {
			return fmt.Errorf("session %s is not open: %w", p.SessionID, repository.ErrNotFound)
		}

		accrue(rec, now)
		reported := p.ElapsedSeconds
		if ceiling := int64(now.Sub(rec.StartedAt) / time.Second); reported > ceiling {
			reported = ceiling
		}
		if reported > rec.NetSeconds {
			rec.NetSeconds = reported
		}
		rec.UpdatedAt = now
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		view = sessionView(rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("syncing time: %w", err)
	}
	return view, nil
}

func (s *timeTrackingService) GetStatus(ctx context.Context) (status *remote.Status, err error) {
	now := s.clock.Now()
	defer s.observe(ctx, "get_status", now, &err, nil)

	open, err := s.sessions.GetOpen(ctx)
	if err == nil {
		accrue(open, now)
		return &remote.Status{HasActiveDay: true, CurrentStatus: open.Status, Session: sessionView(open)}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading status: %w", err)
	}

	latest, err := s.sessions.GetLatestByDay(ctx, now.In(s.loc).Format(dayLayout))
	if errors.Is(err, repository.ErrNotFound) {
		return &remote.Status{CurrentStatus: domain.StatusNotStarted}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading status: %w", err)
	}
	return &remote.Status{CurrentStatus: latest.Status, Session: sessionView(latest)}, nil
}

func (s *timeTrackingService) observe(ctx context.Context, name string, start time.Time, errp *error, fields func() map[string]any) {
	event := UseCaseEvent{
		Name:      name,
		StartedAt: start,
		Duration:  s.clock.Since(start),
		Success:   *errp == nil,
		Err:       *errp,
	}
	if fields != nil {
		event.Fields = fields()
	}
	s.observer.ObserveUseCase(ctx, event)
}

// accrue folds whole seconds worked since NetUpdatedAt into NetSeconds. The
// sub-second remainder stays pending so repeated reads do not lose time.
func accrue(rec *repository.SessionRecord, now time.Time) {
	if rec.Status != domain.StatusInProgress {
		return
	}
	whole := now.Sub(rec.NetUpdatedAt) / time.Second
	if whole <= 0 {
		return
	}
	rec.NetSeconds += int64(whole)
	rec.NetUpdatedAt = rec.NetUpdatedAt.Add(whole * time.Second)
}

func closePause(rec *repository.SessionRecord, now time.Time) {
	if rec.PauseStartedAt == nil {
		return
	}
	if d := now.Sub(*rec.PauseStartedAt); d > 0 {
		rec.PauseSeconds += int64(d / time.Second)
	}
	rec.PauseStartedAt = nil
}

func sessionView(rec *repository.SessionRecord) *domain.WorkSession {
	ws := rec.WorkSession
	return &ws
}
