// Package postgres is the PostgreSQL backend of docstore.
//
// Documents live in single-column JSONB tables. On top of the shared
// statement family this backend adds JSONB containment (data @> criteria),
// JSON-path predicates (data @? path), GIN document indexes, shallow-merge
// patching via the || operator, and top-level field removal via the -
// operator.
//
// Patch semantics here are shallow: patching {"a": {"x": 1}} onto
// {"a": {"x": 1, "y": 2}} replaces the whole "a" object, dropping "y".
// The sqlite backend deep-merges instead; the divergence is deliberate.
package postgres

import (
	"context"
	stdsql "database/sql"
	"errors"
	"io"

	"github.com/lib/pq"
	"github.com/syssam/docstore"
	"github.com/syssam/docstore/dialect"
	"github.com/syssam/docstore/dialect/sql"
)

// Store is a document store backed by a PostgreSQL database.
// Its zero value is not usable; construct one with Open, OpenDB or NewStore.
type Store struct {
	q docstore.Querier
	b Builder
}

// Option configures a Store.
type Option func(*docstore.Config)

// WithConfig replaces the whole store configuration.
func WithConfig(cfg docstore.Config) Option {
	return func(c *docstore.Config) { *c = cfg }
}

// WithSerializer sets the document serializer.
func WithSerializer(s docstore.Serializer) Option {
	return func(c *docstore.Config) { c.Serializer = s }
}

// WithIDField sets the identifier field name (default "Id").
func WithIDField(name string) Option {
	return func(c *docstore.Config) { c.IDField = name }
}

// NewStore returns a Store executing against the given querier.
func NewStore(q docstore.Querier, opts ...Option) *Store {
	cfg := docstore.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{q: q, b: NewBuilder(cfg)}
}

// Open opens a PostgreSQL connection pool via lib/pq and returns a Store
// bound to it.
func Open(dsn string, opts ...Option) (*Store, error) {
	drv, err := sql.Open(dialect.Postgres, dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(drv, opts...), nil
}

// OpenDB returns a Store bound to an existing database handle.
func OpenDB(db *stdsql.DB, opts ...Option) *Store {
	return NewStore(sql.OpenDB(dialect.Postgres, db), opts...)
}

// WithTx returns a Store that executes every operation on the given open
// transaction. The transaction lifecycle stays with the caller.
func (s *Store) WithTx(tx dialect.Tx) *Store {
	return &Store{q: docstore.WrapTx(tx, dialect.Postgres), b: s.b}
}

// Querier returns the execution handle of the store.
func (s *Store) Querier() docstore.Querier { return s.q }

// Builder returns the statement builder of the store.
func (s *Store) Builder() Builder { return s.b }

// Config returns the store configuration.
func (s *Store) Config() docstore.Config { return s.b.Config() }

// Close closes the underlying connection if the store owns one.
func (s *Store) Close() error {
	if c, ok := s.q.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// EnsureTable creates the document table if it does not exist.
func (s *Store) EnsureTable(ctx context.Context, table string) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.EnsureTable(table), nil)
	return err
}

// EnsureKey creates the unique index on the id field if it does not exist.
// Insert's duplicate-id failure and Save's conflict resolution both depend
// on this index.
func (s *Store) EnsureKey(ctx context.Context, table string) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.EnsureKey(table), nil)
	return err
}

// EnsureFieldIndex creates a secondary index over document fields if it
// does not exist.
func (s *Store) EnsureFieldIndex(ctx context.Context, table, indexName string, fields ...string) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.EnsureIndex(table, indexName, fields), nil)
	return err
}

// EnsureDocumentIndex creates a GIN index over the whole document if it
// does not exist.
func (s *Store) EnsureDocumentIndex(ctx context.Context, table string, kind DocumentIndexKind) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.EnsureDocumentIndex(table, kind), nil)
	return err
}

// Insert writes a new document. A document whose id already exists fails
// with the database's uniqueness violation, surfaced unmodified; use Save
// for insert-or-update.
func (s *Store) Insert(ctx context.Context, table string, doc any) error {
	data, err := s.marshal(doc)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.Insert(table), []docstore.Param{
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// Save writes a document, inserting or replacing by id in one statement.
// EnsureKey must have been run for the table.
func (s *Store) Save(ctx context.Context, table string, doc any) error {
	data, err := s.marshal(doc)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.Save(table), []docstore.Param{
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// UpdateByID fully replaces the document with the given id. A missing id is
// a silent no-op.
func (s *Store) UpdateByID(ctx context.Context, table string, id, doc any) error {
	data, err := s.marshal(doc)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.Update(table), []docstore.Param{
		docstore.P(docstore.ParamID, docstore.IDText(id)),
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// PatchByID shallow-merges a partial document into the document with the
// given id. A missing id is a silent no-op.
func (s *Store) PatchByID(ctx context.Context, table string, id, patch any) error {
	data, err := s.marshal(patch)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.PatchByID(table), []docstore.Param{
		docstore.P(docstore.ParamID, docstore.IDText(id)),
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// PatchByField shallow-merges a partial document into every document
// matching the criterion.
func (s *Store) PatchByField(ctx context.Context, table string, f docstore.Field, patch any) error {
	if err := f.Validate(); err != nil {
		return err
	}
	data, err := s.marshal(patch)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.PatchByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.Postgres)),
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// PatchByContains shallow-merges a partial document into every document
// containing the criteria document.
func (s *Store) PatchByContains(ctx context.Context, table string, criteria, patch any) error {
	crit, err := s.marshal(criteria)
	if err != nil {
		return err
	}
	data, err := s.marshal(patch)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.PatchByContains(table), []docstore.Param{
		docstore.P(docstore.ParamCriteria, crit),
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// PatchByJSONPath shallow-merges a partial document into every document
// matching the JSON-path predicate.
func (s *Store) PatchByJSONPath(ctx context.Context, table, path string, patch any) error {
	data, err := s.marshal(patch)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.PatchByJSONPath(table), []docstore.Param{
		docstore.P(docstore.ParamPath, path),
		docstore.P(docstore.ParamData, data),
	})
	return err
}

// RemoveFieldsByID strips top-level keys from the document with the given
// id. Absent keys and absent ids are silent no-ops.
func (s *Store) RemoveFieldsByID(ctx context.Context, table string, id any, fields ...string) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.RemoveFieldsByID(table), []docstore.Param{
		docstore.P(docstore.ParamID, docstore.IDText(id)),
		docstore.P(docstore.ParamName, pq.Array(fields)),
	})
	return err
}

// RemoveFieldsByField strips top-level keys from every document matching
// the criterion.
func (s *Store) RemoveFieldsByField(ctx context.Context, table string, f docstore.Field, fields ...string) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := docstore.NonQuery(ctx, s.q, s.b.RemoveFieldsByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.Postgres)),
		docstore.P(docstore.ParamName, pq.Array(fields)),
	})
	return err
}

// RemoveFieldsByContains strips top-level keys from every document
// containing the criteria document.
func (s *Store) RemoveFieldsByContains(ctx context.Context, table string, criteria any, fields ...string) error {
	crit, err := s.marshal(criteria)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.RemoveFieldsByContains(table), []docstore.Param{
		docstore.P(docstore.ParamCriteria, crit),
		docstore.P(docstore.ParamName, pq.Array(fields)),
	})
	return err
}

// RemoveFieldsByJSONPath strips top-level keys from every document matching
// the JSON-path predicate.
func (s *Store) RemoveFieldsByJSONPath(ctx context.Context, table, path string, fields ...string) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.RemoveFieldsByJSONPath(table), []docstore.Param{
		docstore.P(docstore.ParamPath, path),
		docstore.P(docstore.ParamName, pq.Array(fields)),
	})
	return err
}

// DeleteByID deletes the document with the given id. A missing id is a
// silent no-op.
func (s *Store) DeleteByID(ctx context.Context, table string, id any) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.DeleteByID(table), []docstore.Param{
		docstore.P(docstore.ParamID, docstore.IDText(id)),
	})
	return err
}

// DeleteByField deletes every document matching the criterion.
func (s *Store) DeleteByField(ctx context.Context, table string, f docstore.Field) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := docstore.NonQuery(ctx, s.q, s.b.DeleteByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.Postgres)),
	})
	return err
}

// DeleteByContains deletes every document containing the criteria document.
func (s *Store) DeleteByContains(ctx context.Context, table string, criteria any) error {
	crit, err := s.marshal(criteria)
	if err != nil {
		return err
	}
	_, err = docstore.NonQuery(ctx, s.q, s.b.DeleteByContains(table), []docstore.Param{
		docstore.P(docstore.ParamCriteria, crit),
	})
	return err
}

// DeleteByJSONPath deletes every document matching the JSON-path predicate.
func (s *Store) DeleteByJSONPath(ctx context.Context, table, path string) error {
	_, err := docstore.NonQuery(ctx, s.q, s.b.DeleteByJSONPath(table), []docstore.Param{
		docstore.P(docstore.ParamPath, path),
	})
	return err
}

// CountAll returns the number of documents in a table.
func (s *Store) CountAll(ctx context.Context, table string) (int64, error) {
	return docstore.Scalar(ctx, s.q, s.b.CountAll(table), nil, docstore.ValueMapper[int64]())
}

// CountByField returns the number of documents matching the criterion.
func (s *Store) CountByField(ctx context.Context, table string, f docstore.Field) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return docstore.Scalar(ctx, s.q, s.b.CountByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.Postgres)),
	}, docstore.ValueMapper[int64]())
}

// CountByContains returns the number of documents containing the criteria
// document.
func (s *Store) CountByContains(ctx context.Context, table string, criteria any) (int64, error) {
	crit, err := s.marshal(criteria)
	if err != nil {
		return 0, err
	}
	return docstore.Scalar(ctx, s.q, s.b.CountByContains(table), []docstore.Param{
		docstore.P(docstore.ParamCriteria, crit),
	}, docstore.ValueMapper[int64]())
}

// CountByJSONPath returns the number of documents matching the JSON-path
// predicate.
func (s *Store) CountByJSONPath(ctx context.Context, table, path string) (int64, error) {
	return docstore.Scalar(ctx, s.q, s.b.CountByJSONPath(table), []docstore.Param{
		docstore.P(docstore.ParamPath, path),
	}, docstore.ValueMapper[int64]())
}

// ExistsByID reports whether a document with the given id exists.
func (s *Store) ExistsByID(ctx context.Context, table string, id any) (bool, error) {
	return docstore.Scalar(ctx, s.q, s.b.ExistsByID(table), []docstore.Param{
		docstore.P(docstore.ParamID, docstore.IDText(id)),
	}, docstore.ValueMapper[bool]())
}

// ExistsByField reports whether any document matches the criterion.
func (s *Store) ExistsByField(ctx context.Context, table string, f docstore.Field) (bool, error) {
	if err := f.Validate(); err != nil {
		return false, err
	}
	return docstore.Scalar(ctx, s.q, s.b.ExistsByField(table, f), []docstore.Param{
		docstore.P(docstore.ParamField, f.Value.Arg(dialect.Postgres)),
	}, docstore.ValueMapper[bool]())
}

// ExistsByContains reports whether any document contains the criteria
// document.
func (s *Store) ExistsByContains(ctx context.Context, table string, criteria any) (bool, error) {
	crit, err := s.marshal(criteria)
	if err != nil {
		return false, err
	}
	return docstore.Scalar(ctx, s.q, s.b.ExistsByContains(table), []docstore.Param{
		docstore.P(docstore.ParamCriteria, crit),
	}, docstore.ValueMapper[bool]())
}

// ExistsByJSONPath reports whether any document matches the JSON-path
// predicate.
func (s *Store) ExistsByJSONPath(ctx context.Context, table, path string) (bool, error) {
	return docstore.Scalar(ctx, s.q, s.b.ExistsByJSONPath(table), []docstore.Param{
		docstore.P(docstore.ParamPath, path),
	}, docstore.ValueMapper[bool]())
}

// Exec runs a caller-supplied statement with named parameters and returns
// the affected-row count.
func (s *Store) Exec(ctx context.Context, query string, params ...docstore.Param) (int64, error) {
	return docstore.NonQuery(ctx, s.q, query, params)
}

func (s *Store) marshal(doc any) (string, error) {
	data, err := s.Config().Marshal(doc)
	if err != nil {
		return "", &docstore.SerializeError{Err: err}
	}
	return string(data), nil
}

// IsUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505), the failure Insert surfaces for a
// duplicate id. The original error is never wrapped or replaced.
func IsUniqueViolation(err error) bool {
	var pqe *pq.Error
	return errors.As(err, &pqe) && pqe.Code == "23505"
}
