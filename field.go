package docstore

import (
	"strconv"

	"github.com/syssam/docstore/dialect"
)

// Op is a comparison operation applied to a JSON field.
type Op uint8

// Supported field operations.
const (
	OpEQ        Op = iota // =
	OpGT                  // >
	OpGTE                 // >=
	OpLT                  // <
	OpLTE                 // <=
	OpNE                  // <>
	OpExists              // IS NOT NULL
	OpNotExists           // IS NULL
)

var opText = [...]string{
	OpEQ:        "=",
	OpGT:        ">",
	OpGTE:       ">=",
	OpLT:        "<",
	OpLTE:       "<=",
	OpNE:        "<>",
	OpExists:    "IS NOT NULL",
	OpNotExists: "IS NULL",
}

var opName = [...]string{
	OpEQ:        "EQ",
	OpGT:        "GT",
	OpGTE:       "GTE",
	OpLT:        "LT",
	OpLTE:       "LTE",
	OpNE:        "NE",
	OpExists:    "EXISTS",
	OpNotExists: "NOT_EXISTS",
}

// SQL returns the SQL token the operation renders to.
func (o Op) SQL() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return ""
}

// Unary reports whether the operation takes no comparison value.
func (o Op) Unary() bool {
	return o == OpExists || o == OpNotExists
}

// String returns the operation name.
func (o Op) String() string {
	if int(o) < len(opName) {
		return opName[o]
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Kind is the type tag of a criterion Value.
type Kind uint8

// Value kinds.
const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// Value is a typed comparison value for a field criterion. The zero Value
// is invalid; comparison operations require one of the typed constructors.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// String returns a string Value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a float Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the type tag of the value.
func (v Value) Kind() Kind { return v.kind }

// Arg renders the value as a driver argument for the given dialect.
//
// Field comparisons run against the text extracted by "data ->>", so the
// Postgres rendering is always textual. Numeric ordering comparisons on
// Postgres are therefore lexicographic. SQLite applies its usual type
// affinity to the extracted value, so native Go values are passed through.
func (v Value) Arg(dialectName string) any {
	if dialectName == dialect.Postgres {
		return v.text()
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	}
	return nil
}

func (v Value) text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// Field is a single criterion against a JSON field: a field name, an
// operation, and (for comparison operations) a value.
type Field struct {
	// Name is the JSON key the criterion applies to.
	Name string
	// Op is the comparison operation.
	Op Op
	// Value is the comparison value. It must be set for comparison
	// operations and must be absent for EXISTS / NOT_EXISTS.
	Value Value
}

// EQ returns an equality criterion on the named field.
func EQ(name string, v Value) Field { return Field{Name: name, Op: OpEQ, Value: v} }

// GT returns a greater-than criterion on the named field.
func GT(name string, v Value) Field { return Field{Name: name, Op: OpGT, Value: v} }

// GTE returns a greater-than-or-equal criterion on the named field.
func GTE(name string, v Value) Field { return Field{Name: name, Op: OpGTE, Value: v} }

// LT returns a less-than criterion on the named field.
func LT(name string, v Value) Field { return Field{Name: name, Op: OpLT, Value: v} }

// LTE returns a less-than-or-equal criterion on the named field.
func LTE(name string, v Value) Field { return Field{Name: name, Op: OpLTE, Value: v} }

// NE returns an inequality criterion on the named field.
func NE(name string, v Value) Field { return Field{Name: name, Op: OpNE, Value: v} }

// Exists returns a criterion matching documents where the named field
// is present.
func Exists(name string) Field { return Field{Name: name, Op: OpExists} }

// NotExists returns a criterion matching documents where the named field
// is absent.
func NotExists(name string) Field { return Field{Name: name, Op: OpNotExists} }

// Validate checks the criterion invariant: a value is present iff the
// operation is a comparison.
func (f Field) Validate() error {
	switch {
	case f.Name == "":
		return &InvalidFieldError{Field: f, Reason: "field name is empty"}
	case f.Op.Unary() && f.Value.kind != KindInvalid:
		return &InvalidFieldError{Field: f, Reason: f.Op.String() + " does not take a value"}
	case !f.Op.Unary() && f.Value.kind == KindInvalid:
		return &InvalidFieldError{Field: f, Reason: f.Op.String() + " requires a value"}
	}
	return nil
}
