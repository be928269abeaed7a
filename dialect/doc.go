// Package dialect provides the database dialect abstraction for docstore.
//
// This package defines the interfaces and constants used for
// database-specific operations, allowing docstore to target both of its
// supported backends behind one execution surface.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback, and the
// ExecQuerier interface is implemented by both Driver and Tx. Any value
// satisfying ExecQuerier can execute parameterized SQL on behalf of the
// document API, which is what allows callers to supply an already-open
// transaction when several document operations must be atomic.
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/docstore/dialect"
//	    "github.com/syssam/docstore/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: database/sql-backed driver implementation and
//     query-statistics instrumentation
package dialect
