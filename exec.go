package docstore

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/syssam/docstore/dialect"
	"github.com/syssam/docstore/dialect/sql"
)

// Querier is the execution handle the document layer runs statements
// against: anything that can execute parameterized SQL and report which
// dialect it speaks. *sql.Driver satisfies it directly; a transaction is
// adapted through the per-backend Store.WithTx helpers.
type Querier interface {
	dialect.ExecQuerier
	Dialect() string
}

// RowMapper converts the current row of a result set into a value.
type RowMapper[T any] func(rows *sql.Rows) (T, error)

// DocMapper returns a RowMapper that deserializes the single "data" column
// into a document through the configured serializer.
func DocMapper[T any](cfg Config) RowMapper[T] {
	return func(rows *sql.Rows) (T, error) {
		var doc T
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return doc, fmt.Errorf("docstore: scan document: %w", err)
		}
		if err := cfg.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("docstore: deserialize document: %w", err)
		}
		return doc, nil
	}
}

// ValueMapper returns a RowMapper that scans a single column into T.
func ValueMapper[T any]() RowMapper[T] {
	return func(rows *sql.Rows) (T, error) {
		var v T
		if err := rows.Scan(&v); err != nil {
			return v, fmt.Errorf("docstore: scan value: %w", err)
		}
		return v, nil
	}
}

// Scalar runs a query expected to produce exactly one row and maps it.
// Zero rows is an error wrapping ErrNoRows.
func Scalar[T any](ctx context.Context, q Querier, query string, params []Param, mapper RowMapper[T]) (T, error) {
	var zero T
	v, ok, err := Single[T](ctx, q, query, params, mapper)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, fmt.Errorf("docstore: scalar %q: %w", query, ErrNoRows)
	}
	return v, nil
}

// Single runs a query expected to produce zero or one row. Absence is
// reported through the boolean result, not an error. Extra rows beyond the
// first are ignored.
func Single[T any](ctx context.Context, q Querier, query string, params []Param, mapper RowMapper[T]) (T, bool, error) {
	var zero T
	rows, err := runQuery(ctx, q, query, params)
	if err != nil {
		return zero, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, false, err
		}
		return zero, false, nil
	}
	v, err := mapper(rows)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// List runs a query and maps every row, fully materializing the result
// before returning. No cursor semantics are exposed.
func List[T any](ctx context.Context, q Querier, query string, params []Param, mapper RowMapper[T]) ([]T, error) {
	rows, err := runQuery(ctx, q, query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := mapper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NonQuery runs a statement for effect and returns the affected-row count.
// A zero count is not an error; no row-count assertion is made.
func NonQuery(ctx context.Context, q Querier, query string, params []Param) (int64, error) {
	bound, args, err := Bind(q.Dialect(), query, params)
	if err != nil {
		return 0, err
	}
	var res stdsql.Result
	if err := q.Exec(ctx, bound, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// WrapTx adapts an already-open transaction to a Querier for the given
// dialect. The document layer never opens transactions itself; callers that
// need atomicity across several operations begin one and pass it in.
func WrapTx(tx dialect.Tx, dialectName string) Querier {
	return txQuerier{Tx: tx, name: dialectName}
}

type txQuerier struct {
	dialect.Tx
	name string
}

func (t txQuerier) Dialect() string { return t.name }

func runQuery(ctx context.Context, q Querier, query string, params []Param) (*sql.Rows, error) {
	bound, args, err := Bind(q.Dialect(), query, params)
	if err != nil {
		return nil, err
	}
	rows := &sql.Rows{}
	if err := q.Query(ctx, bound, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
