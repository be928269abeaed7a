package sqlite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/docstore"
)

// JSONType is the column type documents are stored in. SQLite stores JSON
// as ordinary text and applies its JSON functions to it.
const JSONType = "TEXT"

// Builder extends the common statement builder with the SQLite-only
// statement family: deep-merge patching via json_patch and field removal
// via json_remove. SQLite has no containment or JSON-path operators, so
// the by-contains / by-json-path families do not exist on this backend.
type Builder struct {
	docstore.Builder
}

// NewBuilder returns a Builder using the given configuration.
func NewBuilder(cfg docstore.Config) Builder {
	return Builder{Builder: docstore.NewBuilder(cfg)}
}

// EnsureTable returns the idempotent table creation statement.
func (b Builder) EnsureTable(table string) string {
	return b.Builder.EnsureTable(table, JSONType)
}

// PatchByID returns the deep-merge statement for the document with the
// given id. SQLite patching is json_patch (RFC 7396): nested objects merge
// key by key instead of being replaced wholesale.
func (b Builder) PatchByID(table string) string {
	return b.patch(table, b.WhereByID(docstore.ParamID))
}

// PatchByField returns the deep-merge statement for every document
// matching a field criterion.
func (b Builder) PatchByField(table string, f docstore.Field) string {
	return b.patch(table, b.WhereByField(f, docstore.ParamField))
}

func (b Builder) patch(table, where string) string {
	return fmt.Sprintf("UPDATE %s SET data = json_patch(data, json(%s)) WHERE %s",
		table, docstore.ParamData, where)
}

// RemoveFieldsByID returns the statement stripping count top-level keys
// from the document with the given id. Each key binds its own @nameN
// parameter holding a "$.field" path.
func (b Builder) RemoveFieldsByID(table string, count int) string {
	return b.removeFields(table, count, b.WhereByID(docstore.ParamID))
}

// RemoveFieldsByField returns the field-removal statement for every
// document matching a field criterion.
func (b Builder) RemoveFieldsByField(table string, f docstore.Field, count int) string {
	return b.removeFields(table, count, b.WhereByField(f, docstore.ParamField))
}

func (b Builder) removeFields(table string, count int, where string) string {
	names := make([]string, count)
	for i := range names {
		names[i] = docstore.ParamName + strconv.Itoa(i)
	}
	return fmt.Sprintf("UPDATE %s SET data = json_remove(data, %s) WHERE %s",
		table, strings.Join(names, ", "), where)
}

// FieldPathParams returns the @nameN parameters RemoveFields statements
// bind, one "$.field" path per removed key.
func FieldPathParams(fields []string) []docstore.Param {
	params := make([]docstore.Param, len(fields))
	for i, f := range fields {
		params[i] = docstore.P(docstore.ParamName+strconv.Itoa(i), "$."+f)
	}
	return params
}
