// Package snapshot persists the client's last known timer state so a reload
// can show a value before the remote status arrives. Entries older than the
// TTL are discarded on read.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultKey = "worktimer.session"
	DefaultTTL = 24 * time.Hour
)

// ErrStaleSnapshot marks a snapshot older than the TTL. Read deletes such a
// snapshot and reports it as absent; the error only shows up in logs.
var ErrStaleSnapshot = errors.New("stale snapshot")

// Store holds a single snapshot record.
type Store interface {
	Write(ctx context.Context, s domain.LocalSnapshot) error
	// Read returns nil when no snapshot exists or the stored one expired.
	Read(ctx context.Context) (*domain.LocalSnapshot, error)
	Clear(ctx context.Context) error
}

// Options configures a store. Zero values fall back to defaults.
type Options struct {
	Key   string
	TTL   time.Duration
	Clock clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

func checkFresh(s domain.LocalSnapshot, now time.Time, ttl time.Duration) error {
	if s.Expired(now, ttl) {
		return ErrStaleSnapshot
	}
	return nil
}
