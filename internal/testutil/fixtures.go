package testutil

import (
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/repository"
	"github.com/google/uuid"
)

// SessionOption customizes a test session record.
type SessionOption func(*repository.SessionRecord)

func WithStatus(s domain.SessionStatus) SessionOption {
	return func(r *repository.SessionRecord) {
		r.Status = s
	}
}

func WithNetSeconds(n int64) SessionOption {
	return func(r *repository.SessionRecord) {
		r.NetSeconds = n
	}
}

func WithPauseStartedAt(t time.Time) SessionOption {
	return func(r *repository.SessionRecord) {
		r.PauseStartedAt = &t
	}
}

func WithEndedAt(t time.Time) SessionOption {
	return func(r *repository.SessionRecord) {
		r.EndedAt = &t
	}
}

// NewTestSessionRecord returns an in-progress session started at startedAt.
func NewTestSessionRecord(startedAt time.Time, opts ...SessionOption) *repository.SessionRecord {
	startedAt = startedAt.UTC()
	r := &repository.SessionRecord{
		WorkSession: domain.WorkSession{
			ID:        uuid.New().String(),
			Status:    domain.StatusInProgress,
			StartedAt: startedAt,
			UpdatedAt: startedAt,
		},
		Day:          startedAt.Format("2006-01-02"),
		NetUpdatedAt: startedAt,
		CreatedAt:    startedAt,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
