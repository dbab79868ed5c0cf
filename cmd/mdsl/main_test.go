package main

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdsl-lang/mdslc/compiler"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

const validSrc = `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
	}
}
`

func TestLexCmd_PrintsTokens(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", validSrc)

	var err error
	out := captureStdout(t, func() {
		err = lexCmd([]string{path})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "FAMILY") && !strings.Contains(out, "Family") {
		t.Fatalf("expected token stream to mention the FAMILY keyword, got:\n%s", out)
	}
}

func TestLexCmd_MissingFileIsIOError(t *testing.T) {
	dir := t.TempDir()
	err := lexCmd([]string{filepath.Join(dir, "missing.mdsl")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if exitCodeFor(err) != exitIO {
		t.Fatalf("expected exitIO, got %d", exitCodeFor(err))
	}
}

func TestParseCmd_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", validSrc)

	var err error
	out := captureStdout(t, func() {
		err = parseCmd([]string{path})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Family") {
		t.Fatalf("expected summary to mention Family, got:\n%s", out)
	}
}

func TestValidateCmd_PassesOnCleanProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", validSrc)

	var err error
	out := captureStdout(t, func() {
		err = validateCmd([]string{path})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "validate PASSED") {
		t.Fatalf("expected PASSED summary, got:\n%s", out)
	}
}

func TestValidateCmd_FailsOnDuplicateOutletID(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 1; title = "B"; } }
}
`)

	var err error
	out := captureStdout(t, func() {
		err = validateCmd([]string{path})
	})
	if err == nil {
		t.Fatal("expected error for duplicate outlet id")
	}
	if exitCodeFor(err) != exitDiagnostic {
		t.Fatalf("expected exitDiagnostic, got %d", exitCodeFor(err))
	}
	if !strings.Contains(out, "validate FAILED") {
		t.Fatalf("expected FAILED summary, got:\n%s", out)
	}
}

func TestSqlCmd_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", validSrc)
	out := filepath.Join(dir, "out.sql")

	if err := sqlCmd([]string{"--output", out, path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE") {
		t.Fatalf("expected SQL DDL in output, got:\n%s", data)
	}
}

func TestCypherCmd_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", validSrc)
	out := filepath.Join(dir, "out.cypher")

	if err := cypherCmd([]string{"--output", out, "--prefix", "mdsl_", path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "mdsl_media_outlet") {
		t.Fatalf("expected prefixed outlet label in output, got:\n%s", data)
	}
}

func TestSqlCmd_StopsBeforeEmitOnAnalysisErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.mdsl", `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 1; title = "B"; } }
}
`)
	out := filepath.Join(dir, "out.sql")

	err := sqlCmd([]string{"--output", out, path})
	if err == nil {
		t.Fatal("expected error for duplicate outlet id")
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatal("expected no output file to be written on analysis failure")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"stage load io", &compiler.StageError{Stage: compiler.StageLoad, Err: errors.New("disk full")}, exitIO},
		{"stage load cycle", &compiler.StageError{Stage: compiler.StageLoad, Err: compiler.ErrImportCycle}, exitDiagnostic},
		{"stage load absolute import", &compiler.StageError{Stage: compiler.StageLoad, Err: compiler.ErrAbsoluteImport}, exitDiagnostic},
		{"stage analyze", &compiler.StageError{Stage: compiler.StageAnalyze, Err: errors.New("2 errors")}, exitDiagnostic},
		{"bare path error", &fs.PathError{Op: "open", Path: "x", Err: errors.New("not found")}, exitIO},
		{"generic error", errors.New("boom"), exitDiagnostic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
