package docstore

import (
	stdsql "database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/docstore/dialect"
)

// Reserved parameter names used by the built-in statements. Custom queries
// may use any other name.
const (
	ParamID       = "@id"
	ParamField    = "@field"
	ParamData     = "@data"
	ParamPath     = "@path"
	ParamCriteria = "@criteria"
	ParamName     = "@name"
)

// Param is a named statement parameter.
type Param struct {
	// Name is the placeholder as it appears in the statement, including
	// the leading "@".
	Name string
	// Value is the bound value.
	Value any
}

// P returns a named parameter.
func P(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// placeholderRe matches "@name" placeholders. The JSON operators "@>" and
// "@?" are not matched because their second character is not a letter.
var placeholderRe = regexp.MustCompile(`@[A-Za-z_][A-Za-z0-9_]*`)

// Bind resolves the named placeholders of a statement for the given dialect.
//
// Postgres has no named-parameter support in its wire protocol, so each
// placeholder is rewritten to a positional "$N" marker (numbered by first
// appearance) and the arguments are returned in that order. SQLite supports
// the "@name" form natively, so the statement is returned unchanged and the
// arguments are bound by name.
//
// A placeholder with no matching parameter yields a MissingParamError.
// Parameters that do not appear in the statement are ignored.
func Bind(dialectName, query string, params []Param) (string, []any, error) {
	byName := make(map[string]any, len(params))
	for _, p := range params {
		byName[p.Name] = p.Value
	}
	var (
		args    []any
		ordinal = make(map[string]int)
		missing error
	)
	rewritten := placeholderRe.ReplaceAllStringFunc(query, func(name string) string {
		n, seen := ordinal[name]
		if !seen {
			v, ok := byName[name]
			if !ok {
				if missing == nil {
					missing = &MissingParamError{Name: name}
				}
				return name
			}
			n = len(args) + 1
			ordinal[name] = n
			switch dialectName {
			case dialect.Postgres:
				args = append(args, v)
			default:
				args = append(args, stdsql.Named(strings.TrimPrefix(name, "@"), v))
			}
		}
		if dialectName == dialect.Postgres {
			return "$" + strconv.Itoa(n)
		}
		return name
	})
	if missing != nil {
		return "", nil, fmt.Errorf("docstore: bind %q: %w", query, missing)
	}
	if dialectName != dialect.Postgres {
		return query, args, nil
	}
	return rewritten, args, nil
}
