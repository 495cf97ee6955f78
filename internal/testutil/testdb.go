package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/worktimer/internal/db"
)

// NewTestDB returns a migrated in-memory database holding the work_sessions
// and local_snapshots tables. It is closed on test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening session test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW wraps database for the time-tracking service.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountSessions returns how many work sessions of any status are stored for day.
func CountSessions(t *testing.T, database *sql.DB, day string) int {
	t.Helper()
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM work_sessions WHERE day = ?`, day).Scan(&n); err != nil {
		t.Fatalf("counting sessions for %s: %v", day, err)
	}
	return n
}
