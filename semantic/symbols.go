// Package semantic resolves names and checks cross-reference consistency
// across a fully parsed lang/ast.Program, in two passes.
//
// Grounded on validation.Validator's accumulate-and-report shape (teacher's
// validation package): one long-lived analyzer with a sink of issues and a
// battery of checkXxx methods, rather than failing fast on the first
// problem. Generalized into two passes per spec.md §4.4: Pass A binds every
// name a later reference could resolve against, Pass B resolves every
// reference and checks cross-cutting invariants.
package semantic

import (
	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Symbols is the name-bound state produced by Pass A and consumed by both
// Pass B and the ir package's lowering.
type Symbols struct {
	Vars          map[string]ast.Value
	Units         map[string]*ast.Unit
	Vocabularies  map[string]*ast.Vocabulary
	Templates     map[string]*ast.Template
	Catalogs      map[string]*ast.Catalog
	Sources       map[string]*ast.Source
	OutletsByID   map[int64]*ast.Outlet
	EventsByName  map[string]*ast.Event
}

func newSymbols() *Symbols {
	return &Symbols{
		Vars:         map[string]ast.Value{},
		Units:        map[string]*ast.Unit{},
		Vocabularies: map[string]*ast.Vocabulary{},
		Templates:    map[string]*ast.Template{},
		Catalogs:     map[string]*ast.Catalog{},
		Sources:      map[string]*ast.Source{},
		OutletsByID:  map[int64]*ast.Outlet{},
		EventsByName: map[string]*ast.Event{},
	}
}

// Analyzer runs both passes over a Program and accumulates diagnostics.
type Analyzer struct {
	prog        *ast.Program
	sym         *Symbols
	errs        *diag.Sink
	warnOverlap bool
}

// New creates an Analyzer for prog, with FOR_PERIOD override-overlap
// warnings on (config.EmitConfig.WarnOverlappingOverrides' default).
func New(prog *ast.Program) *Analyzer {
	return &Analyzer{prog: prog, sym: newSymbols(), errs: diag.NewSink(), warnOverlap: true}
}

// Analyze runs name binding followed by reference checking, returning the
// bound Symbols (for the ir package to reuse) and the full diagnostic sink.
// warnOverlap mirrors config.EmitConfig.WarnOverlappingOverrides: when
// false, checkOverridePeriods stays silent on overlapping FOR_PERIOD
// layers instead of emitting KindOverlappingOverridePeriod warnings.
func Analyze(prog *ast.Program, warnOverlap bool) (*Symbols, *diag.Sink) {
	a := New(prog)
	a.warnOverlap = warnOverlap
	a.bindNames()
	a.checkImportCycles()
	a.checkReferences()
	a.checkTemporalInvariants()
	a.checkIntegrity()
	return a.sym, a.errs
}

func (a *Analyzer) duplicate(kind diag.Kind, name string, span sourcemap.Span) {
	a.errs.Errorf(span, kind, "%q is already declared", name)
}
