package docstore

import (
	"encoding/json"
	"fmt"
)

// DefaultIDField is the document key every table is addressed by unless a
// store is configured otherwise.
const DefaultIDField = "Id"

// Serializer converts documents to and from their stored JSON form.
// Implementations must produce JSON: the output is stored in a JSON-typed
// column and queried with the backend's JSON operators.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer is the default Serializer, backed by encoding/json.
type JSONSerializer struct{}

// Marshal implements Serializer.
func (JSONSerializer) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements Serializer.
func (JSONSerializer) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Config carries the two cross-cutting settings of the document layer: the
// document serializer and the identifier field name. A Config is attached to
// each store at construction time and threaded through query building and
// row mapping; there is no process-wide mutable state.
type Config struct {
	// Serializer converts documents to and from JSON.
	// Nil means JSONSerializer.
	Serializer Serializer
	// IDField is the JSON key holding the document identifier.
	// Empty means DefaultIDField.
	IDField string
}

// DefaultConfig returns a Config using encoding/json and the "Id" field.
func DefaultConfig() Config {
	return Config{Serializer: JSONSerializer{}, IDField: DefaultIDField}
}

// serializer returns the effective serializer.
func (c Config) serializer() Serializer {
	if c.Serializer == nil {
		return JSONSerializer{}
	}
	return c.Serializer
}

// idField returns the effective identifier field name.
func (c Config) idField() string {
	if c.IDField == "" {
		return DefaultIDField
	}
	return c.IDField
}

// IDText renders a document id as the text form the id-field comparison
// binds on Postgres, where "data ->>" always yields text. Strings pass
// through; other id types use their default formatting.
func IDText(id any) string {
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}

// Marshal serializes a document with the effective serializer.
func (c Config) Marshal(v any) ([]byte, error) {
	return c.serializer().Marshal(v)
}

// Unmarshal deserializes a document with the effective serializer.
func (c Config) Unmarshal(data []byte, v any) error {
	return c.serializer().Unmarshal(data, v)
}
