package docstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/docstore/dialect"
)

func TestOpSQL(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpEQ, "="},
		{OpGT, ">"},
		{OpGTE, ">="},
		{OpLT, "<"},
		{OpLTE, "<="},
		{OpNE, "<>"},
		{OpExists, "IS NOT NULL"},
		{OpNotExists, "IS NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.SQL())
		})
	}
}

func TestOpUnary(t *testing.T) {
	for _, op := range []Op{OpEQ, OpGT, OpGTE, OpLT, OpLTE, OpNE} {
		assert.False(t, op.Unary(), op.String())
	}
	assert.True(t, OpExists.Unary())
	assert.True(t, OpNotExists.Unary())
}

func TestFieldValidate(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		wantErr bool
	}{
		{"comparison with value", EQ("Name", String("x")), false},
		{"ordering with value", GT("NumValue", Int(10)), false},
		{"existence without value", Exists("Name"), false},
		{"non existence without value", NotExists("Name"), false},
		{"comparison without value", Field{Name: "Name", Op: OpEQ}, true},
		{"ordering without value", Field{Name: "NumValue", Op: OpLT}, true},
		{"existence with value", Field{Name: "Name", Op: OpExists, Value: String("x")}, true},
		{"empty field name", Field{Op: OpEQ, Value: String("x")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidField(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValueArg(t *testing.T) {
	t.Run("postgres renders text", func(t *testing.T) {
		assert.Equal(t, "purple", String("purple").Arg(dialect.Postgres))
		assert.Equal(t, "10", Int(10).Arg(dialect.Postgres))
		assert.Equal(t, "2.5", Float(2.5).Arg(dialect.Postgres))
		assert.Equal(t, "true", Bool(true).Arg(dialect.Postgres))
	})
	t.Run("sqlite keeps native types", func(t *testing.T) {
		assert.Equal(t, "purple", String("purple").Arg(dialect.SQLite))
		assert.Equal(t, int64(10), Int(10).Arg(dialect.SQLite))
		assert.Equal(t, 2.5, Float(2.5).Arg(dialect.SQLite))
		assert.Equal(t, true, Bool(true).Arg(dialect.SQLite))
	})
}

func TestExistenceFragmentsHaveNoPlaceholder(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	for _, f := range []Field{Exists("Sub"), NotExists("Sub")} {
		frag := b.WhereByField(f, ParamField)
		assert.False(t, strings.Contains(frag, "@"), frag)
	}
}
