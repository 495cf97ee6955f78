package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/worktimer/internal/db"
	"github.com/alexanderramin/worktimer/internal/domain"
)

const timeLayout = time.RFC3339Nano

// SQLiteWorkSessionRepo implements WorkSessionRepo using a SQLite database.
type SQLiteWorkSessionRepo struct {
	db db.DBTX
}

// NewSQLiteWorkSessionRepo creates a repo over a *sql.DB or a *sql.Tx.
func NewSQLiteWorkSessionRepo(conn db.DBTX) *SQLiteWorkSessionRepo {
	return &SQLiteWorkSessionRepo{db: conn}
}

const sessionColumns = `id, day, status, net_seconds, net_updated_at, pause_seconds,
	pause_started_at, started_at, ended_at, created_at, updated_at`

func (r *SQLiteWorkSessionRepo) Create(ctx context.Context, s *SessionRecord) error {
	query := `INSERT INTO work_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Day,
		string(s.Status),
		s.NetSeconds,
		s.NetUpdatedAt.UTC().Format(timeLayout),
		s.PauseSeconds,
		nullableTimeToString(s.PauseStartedAt, timeLayout),
		s.StartedAt.UTC().Format(timeLayout),
		nullableTimeToString(s.EndedAt, timeLayout),
		s.CreatedAt.UTC().Format(timeLayout),
		s.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting work session: %w", err)
	}
	return nil
}

func (r *SQLiteWorkSessionRepo) GetByID(ctx context.Context, id string) (*SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE id = ?`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

// GetOpen returns the most recently started in-progress or paused session.
func (r *SQLiteWorkSessionRepo) GetOpen(ctx context.Context) (*SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE status IN ('in_progress','paused')
		ORDER BY started_at DESC LIMIT 1`
	return r.scanSession(r.db.QueryRowContext(ctx, query))
}

// GetLatestByDay returns the most recently started session of any status on day.
func (r *SQLiteWorkSessionRepo) GetLatestByDay(ctx context.Context, day string) (*SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE day = ? ORDER BY started_at DESC LIMIT 1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, day))
}

func (r *SQLiteWorkSessionRepo) Update(ctx context.Context, s *SessionRecord) error {
	query := `UPDATE work_sessions SET
		status = ?, net_seconds = ?, net_updated_at = ?, pause_seconds = ?,
		pause_started_at = ?, ended_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(s.Status),
		s.NetSeconds,
		s.NetUpdatedAt.UTC().Format(timeLayout),
		s.PauseSeconds,
		nullableTimeToString(s.PauseStartedAt, timeLayout),
		nullableTimeToString(s.EndedAt, timeLayout),
		s.UpdatedAt.UTC().Format(timeLayout),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating work session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("work session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteWorkSessionRepo) scanSession(row rowScanner) (*SessionRecord, error) {
	var s SessionRecord
	var status, netUpdatedAt, startedAt, createdAt, updatedAt string
	var pauseStartedAt, endedAt sql.NullString

	err := row.Scan(
		&s.ID, &s.Day, &status, &s.NetSeconds, &netUpdatedAt, &s.PauseSeconds,
		&pauseStartedAt, &startedAt, &endedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning work session: %w", err)
	}

	s.Status = domain.SessionStatus(status)
	for _, f := range []struct {
		dst *time.Time
		src string
		col string
	}{
		{&s.NetUpdatedAt, netUpdatedAt, "net_updated_at"},
		{&s.StartedAt, startedAt, "started_at"},
		{&s.CreatedAt, createdAt, "created_at"},
		{&s.UpdatedAt, updatedAt, "updated_at"},
	} {
		t, err := time.Parse(timeLayout, f.src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.col, err)
		}
		*f.dst = t
	}
	s.PauseStartedAt = parseNullableTime(pauseStartedAt, timeLayout)
	s.EndedAt = parseNullableTime(endedAt, timeLayout)
	return &s, nil
}
