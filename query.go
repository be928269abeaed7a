package docstore

import (
	"fmt"
	"strings"
)

// Builder produces the dialect-neutral SQL statements shared by both
// backends. Statement text is a stable contract: tests assert it verbatim.
//
// Field names are interpolated as quoted JSON keys and nothing more; callers
// are responsible for supplying safe identifiers for fields and tables.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder using the given configuration.
func NewBuilder(cfg Config) Builder {
	return Builder{cfg: cfg}
}

// Config returns the builder's configuration.
func (b Builder) Config() Config { return b.cfg }

// IDField returns the configured identifier field name.
func (b Builder) IDField() string { return b.cfg.idField() }

// Select returns the data selection statement for a table.
func (b Builder) Select(table string) string {
	return fmt.Sprintf("SELECT data FROM %s", table)
}

// WhereByField returns a WHERE fragment for a field criterion, comparing
// against the given named parameter. Existence operations render without a
// placeholder.
func (b Builder) WhereByField(f Field, param string) string {
	if f.Op.Unary() {
		return fmt.Sprintf("data ->> '%s' %s", f.Name, f.Op.SQL())
	}
	return fmt.Sprintf("data ->> '%s' %s %s", f.Name, f.Op.SQL(), param)
}

// WhereByID returns a WHERE fragment matching the configured id field.
func (b Builder) WhereByID(param string) string {
	return b.WhereByField(Field{Name: b.IDField(), Op: OpEQ, Value: String("")}, param)
}

// EnsureTable returns the idempotent table creation statement. The JSON
// column type is dialect-specific (JSONB on Postgres, TEXT on SQLite).
func (b Builder) EnsureTable(table, jsonType string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (data %s NOT NULL)", table, jsonType)
}

// EnsureIndex returns the idempotent creation statement for a secondary
// index over one or more document fields. A field may carry a direction
// ("Name DESC"); the remainder is used as the JSON key.
func (b Builder) EnsureIndex(table, indexName string, fields []string) string {
	exprs := make([]string, len(fields))
	for i, field := range fields {
		name, direction, hasDir := strings.Cut(field, " ")
		expr := fmt.Sprintf("(data ->> '%s')", name)
		if hasDir {
			expr += " " + strings.ToUpper(direction)
		}
		exprs[i] = expr
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)",
		TableLocal(table), indexName, table, strings.Join(exprs, ", "))
}

// EnsureKey returns the idempotent creation statement for the unique index
// on the configured id field. This index is what makes Insert fail on a
// duplicate id and what the Save conflict target resolves against.
func (b Builder) EnsureKey(table string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_key ON %s ((data ->> '%s'))",
		TableLocal(table), table, b.IDField())
}

// Insert returns the document insertion statement.
func (b Builder) Insert(table string) string {
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, ParamData)
}

// Update returns the full-replacement statement for the document whose id
// matches the @id parameter.
func (b Builder) Update(table string) string {
	return fmt.Sprintf("UPDATE %s SET data = %s WHERE %s", table, ParamData, b.WhereByID(ParamID))
}

// Save returns the insert-or-update statement. The conflict target is the
// id field expression, not a named constraint, so the unique key index from
// EnsureKey must exist before this statement can run.
func (b Builder) Save(table string) string {
	return fmt.Sprintf(
		"INSERT INTO %s VALUES (%s) ON CONFLICT ((data ->> '%s')) DO UPDATE SET data = EXCLUDED.data",
		table, ParamData, b.IDField())
}

// CountAll returns the statement counting every document in a table.
func (b Builder) CountAll(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
}

// CountByField returns the statement counting documents matching a field
// criterion.
func (b Builder) CountByField(table string, f Field) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, b.WhereByField(f, ParamField))
}

// ExistsByID returns the statement testing for a document with the given id.
func (b Builder) ExistsByID(table string) string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", table, b.WhereByID(ParamID))
}

// ExistsByField returns the statement testing for documents matching a
// field criterion.
func (b Builder) ExistsByField(table string, f Field) string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", table, b.WhereByField(f, ParamField))
}

// FindByID returns the statement selecting the document with the given id.
func (b Builder) FindByID(table string) string {
	return fmt.Sprintf("%s WHERE %s", b.Select(table), b.WhereByID(ParamID))
}

// FindByField returns the statement selecting documents matching a field
// criterion.
func (b Builder) FindByField(table string, f Field) string {
	return fmt.Sprintf("%s WHERE %s", b.Select(table), b.WhereByField(f, ParamField))
}

// FirstByField returns FindByField limited to a single row. The result set
// carries no ORDER BY: which matching document comes first is plan-dependent
// and callers must treat it as an arbitrary match.
func (b Builder) FirstByField(table string, f Field) string {
	return b.FindByField(table, f) + " LIMIT 1"
}

// DeleteByID returns the statement deleting the document with the given id.
func (b Builder) DeleteByID(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, b.WhereByID(ParamID))
}

// DeleteByField returns the statement deleting documents matching a field
// criterion.
func (b Builder) DeleteByField(table string, f Field) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, b.WhereByField(f, ParamField))
}

// TableLocal returns the table-local part of a possibly schema-qualified
// name: the substring after the first "."; a name with no "." is treated as
// schema-less. Index names derive from this part only.
func TableLocal(table string) string {
	if _, local, ok := strings.Cut(table, "."); ok {
		return local
	}
	return table
}
