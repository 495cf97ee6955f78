package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS work_sessions (
		id               TEXT PRIMARY KEY,
		day              TEXT NOT NULL,
		status           TEXT NOT NULL
		                 CHECK(status IN ('not_started','in_progress','paused','completed')),
		net_seconds      INTEGER NOT NULL DEFAULT 0 CHECK(net_seconds >= 0),
		net_updated_at   TEXT NOT NULL,
		pause_seconds    INTEGER NOT NULL DEFAULT 0 CHECK(pause_seconds >= 0),
		pause_started_at TEXT,
		started_at       TEXT NOT NULL,
		ended_at         TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_sessions_day ON work_sessions(day)`,
	// At most one open session per day.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_work_sessions_one_open
		ON work_sessions(day) WHERE status IN ('in_progress','paused')`,
	`CREATE TABLE IF NOT EXISTS local_snapshots (
		key      TEXT PRIMARY KEY,
		value    TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	)`,
}
