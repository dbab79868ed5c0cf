// Package ast defines the MDSL abstract syntax tree: a typed, spanned tree
// that tolerates case-insensitive keywords and trailing separators by
// construction (the parser normalizes both away before nodes exist).
//
// Grounded on tokenmodel/dsl/ast.go's approach of plain struct nodes with no
// inheritance; polymorphic value and outlet-block positions use a tagged
// interface (Value, Stmt) instead, per spec.md §9's guidance to dispatch on
// a Kind rather than model a class hierarchy.
package ast

import "github.com/mdsl-lang/mdslc/sourcemap"

// Spanned is embedded by every node to provide its source Span.
type Spanned struct {
	Sp sourcemap.Span
}

// Span returns the node's source span.
func (s Spanned) Span() sourcemap.Span { return s.Sp }

// Value is any expression-position node: string, number, boolean, variable
// reference, object literal, array literal, or date expression.
type Value interface {
	Span() sourcemap.Span
}

// StringLit is a double-quoted string literal value.
type StringLit struct {
	Spanned
	Val string
}

// NumberLit is a numeric literal value, keeping both the parsed float and
// the original text so the IR/SQL backend can tell an integral literal
// ("200001") from a value that merely happens to be whole ("200001.0").
type NumberLit struct {
	Spanned
	Val      float64
	Raw      string
	Integral bool
}

// BoolLit is a TRUE/FALSE literal.
type BoolLit struct {
	Spanned
	Val bool
}

// VarRef is a $name variable reference, resolved to a literal during
// semantic analysis.
type VarRef struct {
	Spanned
	Name string
}

// Field is one key=value pair inside an object literal or metadata/
// characteristics bag. Order is preserved because emission is
// deterministic and some consumers (historical_titles) care about it.
type Field struct {
	Name     string
	NameSpan sourcemap.Span
	Value    Value
}

// ObjectLit is a `{ key = value; ... }` object literal.
type ObjectLit struct {
	Spanned
	Fields []*Field
}

// Get returns the value bound to name, or nil if absent.
func (o *ObjectLit) Get(name string) Value {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// ArrayLit is a `[ elem, elem, ... ]` array literal.
type ArrayLit struct {
	Spanned
	Elems []Value
}

// DateLit is either a "YYYY-MM-DD" string or the bare CURRENT token.
type DateLit struct {
	Spanned
	Text    string // "YYYY-MM-DD", empty when Current
	Current bool
}

// DateRange is `<date> TO <date>`. Both ends are DateLit values (CURRENT is
// only meaningful as the To end, but the parser does not reject it as
// From; semantic analysis reports InvertedDateRange if it would matter).
type DateRange struct {
	Spanned
	From Value
	To   Value
}

// Name is an identifier-or-string name, carrying whether it was written as
// a bare identifier or a quoted string. Relationship/link names accept
// either (spec.md §9 Open Question 1); both backends always emit the text
// quoted regardless of how it was spelled in source.
type Name struct {
	Text   string
	Quoted bool
	Sp     sourcemap.Span
}

// Annotation is a uniform (name, optional value) pair attached to the
// nearest enclosing construct, per spec.md §9. Annotations never
// participate in semantic analysis. They live on the AST only: lowering
// to IR drops them, so neither backend emits them.
type Annotation struct {
	Spanned
	Name  string
	Value Value // nil if the annotation carries no value
}
