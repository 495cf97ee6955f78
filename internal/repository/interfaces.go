package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
)

// SessionRecord is a stored work session plus the bookkeeping the service
// needs to compute net and pause time.
type SessionRecord struct {
	domain.WorkSession
	Day string
	// NetSeconds is accurate as of NetUpdatedAt. A running session accrues
	// on top of that.
	NetUpdatedAt   time.Time
	PauseStartedAt *time.Time
	CreatedAt      time.Time
}

type WorkSessionRepo interface {
	Create(ctx context.Context, s *SessionRecord) error
	GetByID(ctx context.Context, id string) (*SessionRecord, error)
	GetOpen(ctx context.Context) (*SessionRecord, error)
	GetLatestByDay(ctx context.Context, day string) (*SessionRecord, error)
	Update(ctx context.Context, s *SessionRecord) error
}

var _ WorkSessionRepo = (*SQLiteWorkSessionRepo)(nil)
