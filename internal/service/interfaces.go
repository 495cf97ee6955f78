package service

import (
	"context"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
)

// TimeTrackingService is the authoritative side of the work-day timer. Its
// method set matches remote.Tracker so it can back the HTTP server or be used
// in-process.
type TimeTrackingService interface {
	StartDay(ctx context.Context) (*remote.StartDayResult, error)
	Pause(ctx context.Context) (*domain.WorkSession, error)
	Resume(ctx context.Context) (*domain.WorkSession, error)
	EndDay(ctx context.Context) (*domain.WorkSession, error)
	SyncTime(ctx context.Context, p domain.SyncPayload) (*domain.WorkSession, error)
	GetStatus(ctx context.Context) (*remote.Status, error)
}

var _ remote.Tracker = TimeTrackingService(nil)
