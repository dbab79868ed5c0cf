package sqlgen

import (
	"strconv"
	"strings"

	"github.com/mdsl-lang/mdslc/lang/ast"
)

// escapeString doubles every single quote, per spec.md §4.6: "single
// quotes doubled; no interpolation of raw user text."
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoted wraps s in single quotes with escaping applied.
func quoted(s string) string {
	return "'" + escapeString(s) + "'"
}

// sqlOrNull renders an optional string column: NULL for "", a quoted
// literal otherwise. Every optional text/date column in the core schema
// goes through this so NULL vs empty-string is never ambiguous.
func sqlOrNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return quoted(s)
}

func boolSQL(b bool) string {
	return strconv.FormatBool(b)
}

func floatSQL(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func intSQL(i int64) string {
	return strconv.FormatInt(i, 10)
}

// unitFieldSQLType implements spec.md §4.6's UNIT field type mapping. A
// Unit carries no instance data in this grammar (UNIT declares a schema,
// it is never populated with rows through the DSL), so "all observed
// values are integral" can never be evaluated — the spec's own fallback
// ("when ambiguous, default to DECIMAL(15,2)") applies unconditionally
// for NUMBER fields.
func unitFieldSQLType(f *ast.UnitField) string {
	switch f.Type.Kind {
	case ast.FieldID:
		if f.PrimaryKey {
			return "INTEGER PRIMARY KEY"
		}
		return "INTEGER"
	case ast.FieldText:
		if f.Type.TextLen > 0 && f.Type.TextLen <= 255 {
			return "VARCHAR(" + strconv.Itoa(f.Type.TextLen) + ")"
		}
		return "TEXT"
	case ast.FieldNumber:
		return "DECIMAL(15,2)"
	case ast.FieldBoolean:
		return "BOOLEAN"
	case ast.FieldCategory:
		return "VARCHAR(100)"
	default:
		return "TEXT"
	}
}

func categoryCheck(columnName string, categories []string) string {
	quotedCats := make([]string, len(categories))
	for i, c := range categories {
		quotedCats[i] = quoted(c)
	}
	return "CHECK (" + columnName + " IN (" + strings.Join(quotedCats, ", ") + "))"
}
