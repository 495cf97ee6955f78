package db

import (
	"context"
	"database/sql"
)

// DBTX is the query surface shared by the session repository and the
// snapshot store. The service hands them a *sql.Tx inside WithinTx; the CLI
// hands the snapshot store the *sql.DB directly.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
