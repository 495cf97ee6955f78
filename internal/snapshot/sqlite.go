package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/worktimer/internal/db"
	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/rs/zerolog"
)

// SQLiteStore keeps the snapshot as a JSON value under one key of the
// local_snapshots table.
type SQLiteStore struct {
	db     db.DBTX
	opts   Options
	logger zerolog.Logger
}

func NewSQLiteStore(conn db.DBTX, opts Options, logger zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{db: conn, opts: opts.withDefaults(), logger: logger}
}

func (s *SQLiteStore) Write(ctx context.Context, snap domain.LocalSnapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	query := `INSERT INTO local_snapshots (key, value, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`
	if _, err := s.db.ExecContext(ctx, query, s.opts.Key, string(value), snap.SavedAtEpochMs); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context) (*domain.LocalSnapshot, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_snapshots WHERE key = ?`, s.opts.Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap domain.LocalSnapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		// A corrupt record is as useless as a stale one.
		s.logger.Warn().Err(err).Str("key", s.opts.Key).Msg("discarding unreadable snapshot")
		return nil, s.Clear(ctx)
	}

	if err := checkFresh(snap, s.opts.Clock.Now(), s.opts.TTL); err != nil {
		s.logger.Debug().Err(err).
			Str("key", s.opts.Key).
			Time("saved_at", snap.SavedAt()).
			Msg("discarding snapshot")
		return nil, s.Clear(ctx)
	}
	return &snap, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_snapshots WHERE key = ?`, s.opts.Key); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}
