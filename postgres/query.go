package postgres

import (
	"fmt"

	"github.com/syssam/docstore"
)

// JSONType is the column type documents are stored in.
const JSONType = "JSONB"

// DocumentIndexKind selects the operator class of a whole-document index.
type DocumentIndexKind uint8

const (
	// IndexFull indexes the whole document for every JSONB operator.
	IndexFull DocumentIndexKind = iota
	// IndexOptimized indexes the document for containment queries only
	// (jsonb_path_ops); smaller and faster when @> is the only predicate.
	IndexOptimized
)

// Builder extends the common statement builder with the Postgres-only
// statement family: JSONB containment, JSON-path predicates, GIN indexes,
// shallow-merge patches, and field removal.
type Builder struct {
	docstore.Builder
}

// NewBuilder returns a Builder using the given configuration.
func NewBuilder(cfg docstore.Config) Builder {
	return Builder{Builder: docstore.NewBuilder(cfg)}
}

// WhereDataContains returns a WHERE fragment testing JSONB containment of
// the criteria document.
func (b Builder) WhereDataContains(param string) string {
	return "data @> " + param
}

// WhereJSONPathMatches returns a WHERE fragment testing a JSON-path
// predicate against the document.
func (b Builder) WhereJSONPathMatches(param string) string {
	return "data @? " + param + "::jsonpath"
}

// EnsureTable returns the idempotent table creation statement.
func (b Builder) EnsureTable(table string) string {
	return b.Builder.EnsureTable(table, JSONType)
}

// EnsureDocumentIndex returns the idempotent creation statement for a GIN
// index over the whole document.
func (b Builder) EnsureDocumentIndex(table string, kind DocumentIndexKind) string {
	ops := ""
	if kind == IndexOptimized {
		ops = " jsonb_path_ops"
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_document ON %s USING GIN (data%s)",
		docstore.TableLocal(table), table, ops)
}

// PatchByID returns the shallow-merge statement for the document with the
// given id. Postgres patching is the || operator: top-level keys of the
// patch replace the stored keys wholesale.
func (b Builder) PatchByID(table string) string {
	return b.patch(table, b.WhereByID(docstore.ParamID))
}

// PatchByField returns the shallow-merge statement for every document
// matching a field criterion.
func (b Builder) PatchByField(table string, f docstore.Field) string {
	return b.patch(table, b.WhereByField(f, docstore.ParamField))
}

// PatchByContains returns the shallow-merge statement for every document
// containing the criteria document.
func (b Builder) PatchByContains(table string) string {
	return b.patch(table, b.WhereDataContains(docstore.ParamCriteria))
}

// PatchByJSONPath returns the shallow-merge statement for every document
// matching a JSON-path predicate.
func (b Builder) PatchByJSONPath(table string) string {
	return b.patch(table, b.WhereJSONPathMatches(docstore.ParamPath))
}

func (b Builder) patch(table, where string) string {
	return fmt.Sprintf("UPDATE %s SET data = data || %s WHERE %s", table, docstore.ParamData, where)
}

// RemoveFieldsByID returns the statement stripping top-level keys from the
// document with the given id. The @name parameter is a text array.
func (b Builder) RemoveFieldsByID(table string) string {
	return b.removeFields(table, b.WhereByID(docstore.ParamID))
}

// RemoveFieldsByField returns the field-removal statement for every
// document matching a field criterion.
func (b Builder) RemoveFieldsByField(table string, f docstore.Field) string {
	return b.removeFields(table, b.WhereByField(f, docstore.ParamField))
}

// RemoveFieldsByContains returns the field-removal statement for every
// document containing the criteria document.
func (b Builder) RemoveFieldsByContains(table string) string {
	return b.removeFields(table, b.WhereDataContains(docstore.ParamCriteria))
}

// RemoveFieldsByJSONPath returns the field-removal statement for every
// document matching a JSON-path predicate.
func (b Builder) RemoveFieldsByJSONPath(table string) string {
	return b.removeFields(table, b.WhereJSONPathMatches(docstore.ParamPath))
}

func (b Builder) removeFields(table, where string) string {
	return fmt.Sprintf("UPDATE %s SET data = data - %s::text[] WHERE %s", table, docstore.ParamName, where)
}

// CountByContains returns the statement counting documents containing the
// criteria document.
func (b Builder) CountByContains(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, b.WhereDataContains(docstore.ParamCriteria))
}

// CountByJSONPath returns the statement counting documents matching a
// JSON-path predicate.
func (b Builder) CountByJSONPath(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, b.WhereJSONPathMatches(docstore.ParamPath))
}

// ExistsByContains returns the statement testing for documents containing
// the criteria document.
func (b Builder) ExistsByContains(table string) string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", table, b.WhereDataContains(docstore.ParamCriteria))
}

// ExistsByJSONPath returns the statement testing for documents matching a
// JSON-path predicate.
func (b Builder) ExistsByJSONPath(table string) string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", table, b.WhereJSONPathMatches(docstore.ParamPath))
}

// FindByContains returns the statement selecting documents containing the
// criteria document.
func (b Builder) FindByContains(table string) string {
	return fmt.Sprintf("%s WHERE %s", b.Select(table), b.WhereDataContains(docstore.ParamCriteria))
}

// FindByJSONPath returns the statement selecting documents matching a
// JSON-path predicate.
func (b Builder) FindByJSONPath(table string) string {
	return fmt.Sprintf("%s WHERE %s", b.Select(table), b.WhereJSONPathMatches(docstore.ParamPath))
}

// FirstByContains returns FindByContains limited to a single arbitrary row.
func (b Builder) FirstByContains(table string) string {
	return b.FindByContains(table) + " LIMIT 1"
}

// FirstByJSONPath returns FindByJSONPath limited to a single arbitrary row.
func (b Builder) FirstByJSONPath(table string) string {
	return b.FindByJSONPath(table) + " LIMIT 1"
}

// DeleteByContains returns the statement deleting documents containing the
// criteria document.
func (b Builder) DeleteByContains(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, b.WhereDataContains(docstore.ParamCriteria))
}

// DeleteByJSONPath returns the statement deleting documents matching a
// JSON-path predicate.
func (b Builder) DeleteByJSONPath(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, b.WhereJSONPathMatches(docstore.ParamPath))
}
