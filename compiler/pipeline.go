package compiler

import (
	"context"
	"fmt"

	"github.com/mdsl-lang/mdslc/codegen/cyphergen"
	"github.com/mdsl-lang/mdslc/codegen/sqlgen"
	"github.com/mdsl-lang/mdslc/ir"
	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/semantic"
)

// Load resolves rootPath's import graph into an ast.Program, recording
// any parse diagnostics on the session and returning a Go error only
// when loading itself fails: an I/O failure (spec.md §6 exit code 2), or
// an import-graph error (ErrImportCycle, ErrAbsoluteImport).
func (s *Session) Load(ctx context.Context, rootPath string) (*ast.Program, error) {
	s.Log.Info().Str("root", rootPath).Msg("loading program")
	prog, err := LoadProgram(ctx, s.SM, s.Diags, rootPath)
	if err != nil {
		s.Log.Error().Err(err).Msg("load failed")
		return nil, err
	}
	s.Log.Info().Int("files", len(prog.Files)).Msg("loaded program")
	return prog, nil
}

// Analyze runs semantic analysis over prog, merging its diagnostics
// into the session and recording the resulting symbol table.
func (s *Session) Analyze(prog *ast.Program) *semantic.Symbols {
	sym, errs := semantic.Analyze(prog, s.Cfg.WarnOverlappingOverrides)
	s.Sym = sym
	s.Diags.Merge(errs)
	erc, wc := s.Diags.Counts()
	s.Log.Info().Int("errors", erc).Int("warnings", wc).Msg("analyzed program")
	return sym
}

// Lower builds the IR from an already-analyzed program. Callers must
// call Analyze first; Lower panics via nil-pointer dereference otherwise,
// the same invariant ir.Lower itself assumes.
func (s *Session) Lower(prog *ast.Program) *ir.Program {
	p := ir.Lower(prog, s.Sym)
	s.Log.Info().Int("families", len(p.Families)).Msg("lowered to ir")
	return p
}

// EmitSQL renders p as SQL under the session's configured dialect.
func (s *Session) EmitSQL(p *ir.Program) string {
	return sqlgen.Generate(p, s.Cfg)
}

// EmitCypher renders p as Cypher under the session's configured label
// prefix.
func (s *Session) EmitCypher(p *ir.Program) string {
	return cyphergen.Generate(p, s.Cfg)
}

// Stage names one step of Run's pipeline, for error attribution.
type Stage string

const (
	StageLoad    Stage = "load"
	StageAnalyze Stage = "analyze"
	StageLower   Stage = "lower"
)

// StageError wraps a pipeline failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("compiler: %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Run executes the full load -> analyze -> lower pipeline and returns
// the resulting IR. A StageError means the batch could not proceed at
// all: an I/O failure loading files, or semantic analysis finding an
// error-severity diagnostic (ir.Lower assumes a program with no
// analysis errors, per its own doc comment, so lowering never runs on
// an invalid program). Callers read s.Diags for the full diagnostic
// list regardless of outcome; a nil error with warnings on s.Diags
// still exits 0 per spec.md §6.
func (s *Session) Run(ctx context.Context, rootPath string) (*ir.Program, error) {
	prog, err := s.Load(ctx, rootPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	s.Analyze(prog)
	if s.Diags.HasErrors() {
		errc, _ := s.Diags.Counts()
		return nil, &StageError{Stage: StageAnalyze, Err: fmt.Errorf("%d error diagnostic(s)", errc)}
	}
	return s.Lower(prog), nil
}
