package remote

import (
	"math"
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
)

// SessionJSON is the wire form of a work session.
type SessionJSON struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	NetSeconds int64      `json:"netSeconds"`
	PauseHours float64    `json:"pauseHours"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
}

type StartDayResponse struct {
	Session        *SessionJSON `json:"session"`
	AlreadyStarted bool         `json:"alreadyStarted"`
}

type SessionResponse struct {
	Session *SessionJSON `json:"session"`
}

type StatusResponse struct {
	HasActiveDay  bool         `json:"hasActiveDay"`
	CurrentStatus string       `json:"currentStatus"`
	Session       *SessionJSON `json:"session"`
}

type SyncRequest struct {
	SessionID      string `json:"sessionId"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
	Running        bool   `json:"running"`
	Timestamp      string `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewSessionJSON converts a domain session for the wire.
func NewSessionJSON(s *domain.WorkSession) *SessionJSON {
	if s == nil {
		return nil
	}
	return &SessionJSON{
		ID:         s.ID,
		Status:     string(s.Status),
		NetSeconds: s.NetSeconds,
		PauseHours: float64(s.PauseSeconds) / 3600,
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
	}
}

// Domain converts the wire session back. Unknown statuses are kept as-is so
// the caller can reject them.
func (s *SessionJSON) Domain() *domain.WorkSession {
	if s == nil {
		return nil
	}
	return &domain.WorkSession{
		ID:           s.ID,
		Status:       domain.SessionStatus(s.Status),
		NetSeconds:   s.NetSeconds,
		PauseSeconds: int64(math.Round(s.PauseHours * 3600)),
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
	}
}

// NewSyncRequest converts a payload for the wire.
func NewSyncRequest(p domain.SyncPayload) SyncRequest {
	return SyncRequest{
		SessionID:      p.SessionID,
		ElapsedSeconds: p.ElapsedSeconds,
		Running:        p.Running,
		Timestamp:      p.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// Payload parses the wire request. A missing or malformed timestamp yields
// the zero time.
func (r SyncRequest) Payload() domain.SyncPayload {
	ts, _ := time.Parse(time.RFC3339Nano, r.Timestamp)
	return domain.SyncPayload{
		SessionID:      r.SessionID,
		ElapsedSeconds: r.ElapsedSeconds,
		Running:        r.Running,
		Timestamp:      ts,
	}
}
