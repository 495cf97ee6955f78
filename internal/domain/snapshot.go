package domain

import "time"

// LocalSnapshot is what the client persists between reloads so it can render
// a timer before the remote status arrives. It is never authoritative.
type LocalSnapshot struct {
	BaseElapsedSeconds int64  `json:"baseElapsed"`
	IsRunning          bool   `json:"running"`
	SavedAtEpochMs     int64  `json:"savedAt"`
	SessionID          string `json:"sessionId"`
}

// SavedAt returns the save time as a time.Time.
func (s LocalSnapshot) SavedAt() time.Time {
	return time.UnixMilli(s.SavedAtEpochMs)
}

// Expired reports whether more than ttl has passed since the snapshot was
// saved. A snapshot exactly ttl old is still valid.
func (s LocalSnapshot) Expired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-s.SavedAtEpochMs > ttl.Milliseconds()
}

// ProjectedElapsed estimates the elapsed seconds at now. A running snapshot
// keeps accruing from its save time.
func (s LocalSnapshot) ProjectedElapsed(now time.Time) int64 {
	if !s.IsRunning {
		return s.BaseElapsedSeconds
	}
	delta := (now.UnixMilli() - s.SavedAtEpochMs) / 1000
	if delta < 0 {
		delta = 0
	}
	return s.BaseElapsedSeconds + delta
}

// SyncPayload is the periodic reconciliation message pushed to the remote.
type SyncPayload struct {
	SessionID      string
	ElapsedSeconds int64
	Running        bool
	Timestamp      time.Time
}
