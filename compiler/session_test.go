package compiler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mdsl-lang/mdslc/config"
)

func newTestSession() *Session {
	return New(config.Default(), zerolog.New(io.Discard))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadProgram_SingleFile(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.mdsl", `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
	}
}
`)
	s := newTestSession()
	prog, err := LoadProgram(context.Background(), s.SM, s.Diags, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(prog.Files))
	}
}

func TestLoadProgram_ImportOrderedBeforeImporter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.mdsl", `
FAMILY "Base" {
	OUTLET "b" {
		IDENTITY { id = 1; title = "B"; }
	}
}
`)
	root := writeFile(t, dir, "root.mdsl", `
IMPORT "base.mdsl";
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 2; title = "A"; }
	}
}
`)
	s := newTestSession()
	prog, err := LoadProgram(context.Background(), s.SM, s.Diags, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(prog.Files))
	}
	if prog.Files[0].Path != filepath.Join(dir, "base.mdsl") {
		t.Fatalf("expected base.mdsl first, got %s", prog.Files[0].Path)
	}
	if prog.Files[1].Path != root {
		t.Fatalf("expected root.mdsl last, got %s", prog.Files[1].Path)
	}
}

func TestLoadProgram_DiamondImportParsedOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.mdsl", `
FAMILY "Shared" {
	OUTLET "s" {
		IDENTITY { id = 1; title = "S"; }
	}
}
`)
	writeFile(t, dir, "left.mdsl", `IMPORT "shared.mdsl";`)
	writeFile(t, dir, "right.mdsl", `IMPORT "shared.mdsl";`)
	root := writeFile(t, dir, "root.mdsl", `
IMPORT "left.mdsl";
IMPORT "right.mdsl";
`)
	s := newTestSession()
	prog, err := LoadProgram(context.Background(), s.SM, s.Diags, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Files) != 4 {
		t.Fatalf("expected 4 distinct files (shared, left, right, root), got %d", len(prog.Files))
	}
	sharedPath := filepath.Join(dir, "shared.mdsl")
	var sharedCount int
	for _, f := range prog.Files {
		if f.Path == sharedPath {
			sharedCount++
		}
	}
	if sharedCount != 1 {
		t.Fatalf("expected shared.mdsl to appear exactly once, got %d", sharedCount)
	}
	if prog.Files[len(prog.Files)-1].Path != root {
		t.Fatalf("expected root.mdsl last, got %s", prog.Files[len(prog.Files)-1].Path)
	}
}

func TestLoadProgram_CycleRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mdsl", `IMPORT "b.mdsl";`)
	root := writeFile(t, dir, "b.mdsl", `IMPORT "a.mdsl";`)
	s := newTestSession()
	_, err := LoadProgram(context.Background(), s.SM, s.Diags, root)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
}

func TestLoadProgram_AbsoluteImportRejected(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.mdsl", `IMPORT "/etc/passwd.mdsl";`)
	s := newTestSession()
	_, err := LoadProgram(context.Background(), s.SM, s.Diags, root)
	if err == nil {
		t.Fatal("expected absolute import path error, got nil")
	}
}

func TestLoadProgram_MissingFileIsIOError(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession()
	_, err := LoadProgram(context.Background(), s.SM, s.Diags, filepath.Join(dir, "missing.mdsl"))
	if err == nil {
		t.Fatal("expected I/O error for missing root file, got nil")
	}
}

func TestSessionRun_Success(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.mdsl", `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
	}
}
`)
	s := newTestSession()
	p, err := s.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil ir.Program")
	}
	if s.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", s.Diags.All())
	}
}

func TestSessionRun_StopsBeforeLowerOnAnalysisErrors(t *testing.T) {
	dir := t.TempDir()
	// Two outlets sharing id=1 is a name-resolution/integrity error the
	// parser accepts but semantic.Analyze rejects, so Run must stop
	// before Lower rather than project an unsound program.
	root := writeFile(t, dir, "root.mdsl", `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
	}
	OUTLET "b" {
		IDENTITY { id = 1; title = "B"; }
	}
}
`)
	s := newTestSession()
	p, err := s.Run(context.Background(), root)
	if err == nil {
		t.Fatal("expected a stage error from duplicate outlet ids")
	}
	if p != nil {
		t.Fatal("expected nil ir.Program on analysis failure")
	}
	se, ok := err.(*StageError)
	if !ok {
		t.Fatalf("expected *StageError, got %T: %v", err, err)
	}
	if se.Stage != StageAnalyze {
		t.Fatalf("expected StageAnalyze, got %s", se.Stage)
	}
	if !s.Diags.HasErrors() {
		t.Fatal("expected diagnostics recorded on the session")
	}
}

func TestSessionRun_LoadFailureIsStageLoad(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession()
	_, err := s.Run(context.Background(), filepath.Join(dir, "missing.mdsl"))
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := err.(*StageError)
	if !ok {
		t.Fatalf("expected *StageError, got %T: %v", err, err)
	}
	if se.Stage != StageLoad {
		t.Fatalf("expected StageLoad, got %s", se.Stage)
	}
}
