package sqlite

import (
	"context"

	"github.com/syssam/docstore"
	"github.com/syssam/docstore/dialect"
)

// FindAll returns every document in a table.
func FindAll[T any](ctx context.Context, s *Store, table string) ([]T, error) {
	return docstore.List(ctx, s.q, s.b.Select(table), nil, mapper[T](s))
}

// FindByID returns the document with the given id. Absence is reported
// through the boolean result, not an error.
func FindByID[T any](ctx context.Context, s *Store, table string, id any) (T, bool, error) {
	return docstore.Single(ctx, s.q, s.b.FindByID(table), []docstore.Param{
		docstore.P(docstore.ParamID, id),
	}, mapper[T](s))
}

// FindByField returns every document matching the criterion.
func FindByField[T any](ctx context.Context, s *Store, table string, f docstore.Field) ([]T, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return docstore.List(ctx, s.q, s.b.FindByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.SQLite)),
	}, mapper[T](s))
}

// FirstByField returns an arbitrary document matching the criterion. The
// underlying query has no ORDER BY, so "first" is not stable across calls.
func FirstByField[T any](ctx context.Context, s *Store, table string, f docstore.Field) (T, bool, error) {
	var zero T
	if err := f.Validate(); err != nil {
		return zero, false, err
	}
	return docstore.Single(ctx, s.q, s.b.FirstByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.SQLite)),
	}, mapper[T](s))
}

// UpdateByFunc fully replaces the stored document whose id the given
// function extracts from doc.
func UpdateByFunc[T any](ctx context.Context, s *Store, table string, idOf func(T) any, doc T) error {
	return s.UpdateByID(ctx, table, idOf(doc), doc)
}

// Query runs a caller-supplied statement with named parameters, mapping
// every row through the given mapper.
func Query[T any](ctx context.Context, s *Store, query string, params []docstore.Param, m docstore.RowMapper[T]) ([]T, error) {
	return docstore.List(ctx, s.q, query, params, m)
}

func mapper[T any](s *Store) docstore.RowMapper[T] {
	return docstore.DocMapper[T](s.Config())
}
