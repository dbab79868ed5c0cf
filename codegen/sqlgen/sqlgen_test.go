package sqlgen

import (
	"strings"
	"testing"

	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/ir"
	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/lang/parser"
	"github.com/mdsl-lang/mdslc/semantic"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

func lowerSource(t *testing.T, src string) *ir.Program {
	t.Helper()
	sm := sourcemap.New()
	fid := sm.LoadString("test.mdsl", src)
	f, perrs := parser.Parse(fid, "test.mdsl", src)
	if len(perrs.All()) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs.All())
	}
	prog := &ast.Program{Files: []*ast.File{f}}
	sym, errs := semantic.Analyze(prog, true)
	if errs.HasErrors() {
		t.Fatalf("unexpected semantic errors: %v", errs.All())
	}
	return ir.Lower(prog, sym)
}

const sampleSrc = `
UNIT "Outlet" {
	id: ID PRIMARY KEY;
	name: TEXT(120);
	status: CATEGORY("active", "closed");
}
CATALOG "C" {
	SOURCE "mabase" { display_name = "Media Analyzer"; }
}
FAMILY "F" {
	OUTLET "daily" {
		IDENTITY { id = 1; title = "Daily News"; }
		CHARACTERISTICS { region = "AT"; }
	}
	DATA FOR 1 {
		YEAR 2020 {
			circulation = { value = 100000; unit = "copies"; source = "mabase"; }
		}
	}
}
`

func TestGenerate_AnsiContainsCoreSchemaAndInserts(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.Default())

	for _, want := range []string{
		"CREATE TABLE media_outlets",
		"CREATE TABLE outlet_characteristics",
		"CREATE TABLE diachronic_relationships",
		"CREATE TABLE sources",
		"CREATE TABLE outlet (",
		"INSERT INTO families (name) VALUES ('F');",
		"INSERT INTO media_outlets",
		"INSERT INTO outlet_identity",
		"INSERT INTO market_data",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected ansi output to contain %q", want)
		}
	}
}

func TestGenerate_UnitCategoryCheckConstraint(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.Default())
	if !strings.Contains(out, "CHECK (status IN ('active', 'closed'))") {
		t.Fatalf("expected CATEGORY field to emit a CHECK constraint, got:\n%s", out)
	}
}

func TestGenerate_CheckConstraintsDisabled(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	cfg := config.NewBuilder().WithSQLCheckConstraints(false).Build()
	out := Generate(p, cfg)
	if strings.Contains(out, "CHECK (status") {
		t.Fatalf("expected no CHECK constraint when disabled, got:\n%s", out)
	}
}

func TestGenerate_PostgresUsesIfNotExists(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.NewBuilder().WithDialect(config.DialectPostgres).Build())
	if !strings.Contains(out, "CREATE TABLE IF NOT EXISTS media_outlets") {
		t.Fatalf("expected postgres dialect to use CREATE TABLE IF NOT EXISTS, got:\n%s", out)
	}
}

func TestGenerate_StringLiteralEscaping(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "O'Brien Gazette"; }
	}
}
`
	p := lowerSource(t, src)
	out := Generate(p, config.Default())
	if !strings.Contains(out, "O''Brien Gazette") {
		t.Fatalf("expected single quote doubling, got:\n%s", out)
	}
}

func TestGenerate_AnmiUsesGraphv3Schema(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.NewBuilder().WithDialect(config.DialectAnmi).Build())

	for _, want := range []string{
		"CREATE SCHEMA IF NOT EXISTS graphv3",
		"graphv3.mo_constant",
		"graphv3.mo_year",
		"graphv3.sources_names",
		"INSERT INTO graphv3.mo_constant",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected anmi output to contain %q", want)
		}
	}
	if strings.Contains(out, "CREATE TABLE media_outlets") {
		t.Fatalf("expected anmi dialect not to emit the generalized core schema")
	}
}

func TestGenerate_RelationshipsEmittedAfterOutlets(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 2; title = "B"; } }
	DIACHRONIC_LINK merger {
		PREDECESSOR = 1;
		SUCCESSOR = 2;
		EVENT_DATE = "2015-01-01";
		RELATIONSHIP_TYPE = "acquisition";
	}
}
`
	p := lowerSource(t, src)
	out := Generate(p, config.Default())
	outletPos := strings.Index(out, "INSERT INTO media_outlets")
	relPos := strings.Index(out, "INSERT INTO diachronic_relationships")
	if outletPos == -1 || relPos == -1 || relPos < outletPos {
		t.Fatalf("expected relationship inserts after outlet inserts, outletPos=%d relPos=%d", outletPos, relPos)
	}
}
