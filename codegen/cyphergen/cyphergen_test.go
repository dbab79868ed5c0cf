package cyphergen

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
FAMILY "F" {
	OUTLET "daily" {
		IDENTITY { id = 1; title = "Daily News"; url = "https://example.test"; }
		CHARACTERISTICS { region = "AT"; }
	}
	OUTLET "weekly" BASED_ON 1 {
		IDENTITY { id = 2; title = "Weekly News"; }
	}
	DIACHRONIC_LINK merger {
		PREDECESSOR = 1;
		SUCCESSOR = 2;
		EVENT_DATE = "2015-01-01";
		RELATIONSHIP_TYPE = "merger";
	}
}
`

func TestGenerate_ConstraintsAndIndexes(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.Default())

	for _, want := range []string{
		"FOR (o:media_outlet) REQUIRE o.id_mo IS UNIQUE",
		"FOR (f:Family) REQUIRE f.name IS UNIQUE",
		"FOR (t:Template) REQUIRE t.name IS UNIQUE",
		"FOR (v:Vocabulary) REQUIRE v.name IS UNIQUE",
		"ON (o.mo_title)",
		"ON (d.year)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestGenerate_OutletNodeUsesLegacyKeyAndTitleProperty(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.Default())
	if !strings.Contains(out, "CREATE (:media_outlet {id_mo: 1, mo_title: 'Daily News'") {
		t.Fatalf("expected outlet node with id_mo/mo_title, got:\n%s", out)
	}
}

func TestGenerate_FamilyAndBasedOnEdges(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.Default())

	for _, want := range []string{
		"[:HAS_OUTLET]",
		"[:BASED_ON]",
		"[:DIACHRONIC_LINK",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestGenerate_PrefixAppliedToLabelsAndRelationships(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	cfg := config.NewBuilder().WithCypherPrefix("mdsl_").Build()
	out := Generate(p, cfg)

	for _, want := range []string{
		"CREATE (:mdsl_Family",
		"CREATE (:mdsl_media_outlet",
		"[:mdsl_HAS_OUTLET]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected prefixed output to contain %q", want)
		}
	}
}

func TestGenerate_StringEscaping(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "O'Brien Gazette"; }
	}
}
`
	p := lowerSource(t, src)
	out := Generate(p, config.Default())
	if !strings.Contains(out, "O\\'Brien Gazette") {
		t.Fatalf("expected backslash-escaped quote, got:\n%s", out)
	}
}

func TestGenerate_NodesPrecedeEdges(t *testing.T) {
	p := lowerSource(t, sampleSrc)
	out := Generate(p, config.Default())
	nodesPos := strings.Index(out, "// NODES")
	edgesPos := strings.Index(out, "// RELATIONSHIPS")
	if nodesPos == -1 || edgesPos == -1 || edgesPos < nodesPos {
		t.Fatalf("expected nodes section before relationships section, nodesPos=%d edgesPos=%d", nodesPos, edgesPos)
	}
}
