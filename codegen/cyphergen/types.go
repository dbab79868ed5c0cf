package cyphergen

import (
	"strconv"
	"strings"

	"github.com/mdsl-lang/mdslc/ir"
	"github.com/mdsl-lang/mdslc/lang/ast"
)

// escapeCypherString backslash-escapes ' and embedded newlines, per
// spec.md §4.7: property values are quoted strings with backslash-escape
// for ' and \n.
func escapeCypherString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func quotedCypher(s string) string {
	return "'" + escapeCypherString(s) + "'"
}

// cypherValue renders one property value for a CREATE/MATCH clause.
// Strings and anything without a native numeric/boolean shape render
// quoted; numbers and booleans render bare.
func cypherValue(v ast.Value) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case *ast.StringLit:
		return quotedCypher(val.Val)
	case *ast.NumberLit:
		if val.Raw != "" {
			return val.Raw
		}
		return strconv.FormatFloat(val.Val, 'f', -1, 64)
	case *ast.BoolLit:
		return strconv.FormatBool(val.Val)
	case *ast.DateLit:
		if val.Current {
			return "datetime()"
		}
		return "datetime(" + quotedCypher(val.Text) + ")"
	default:
		return quotedCypher(ir.RenderValue(v))
	}
}
