package dialect

import (
	"context"
)

// Dialect names for the supported backends.
const (
	// Postgres is the dialect name for PostgreSQL.
	Postgres = "postgres"
	// SQLite is the dialect name for SQLite.
	SQLite = "sqlite"
)

// ExecQuerier wraps the two basic Exec and Query methods.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The v argument
	// receives the execution result and is expected to be nil or *sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. The v argument receives
	// the returned rows and is expected to be *sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in a transaction.
type Tx interface {
	ExecQuerier
	driverTx
}

type driverTx interface {
	Commit() error
	Rollback() error
}
