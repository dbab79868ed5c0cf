package ir

import (
	"testing"

	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/lang/parser"
	"github.com/mdsl-lang/mdslc/semantic"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

func lowerSource(t *testing.T, src string) *Program {
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
	return Lower(prog, sym)
}

func findOutlet(p *Program, id int64) *Outlet {
	for _, fam := range p.Families {
		for _, o := range fam.Outlets {
			if o.ID == id {
				return o
			}
		}
	}
	return nil
}

func TestLower_TemplateExpansionChildOverridesParent(t *testing.T) {
	src := `
TEMPLATE OUTLET "Newspaper" {
	CHARACTERISTICS { medium = "print"; distribution = { local = true; } }
	METADATA { verified = true; }
}
FAMILY "F" {
	OUTLET "daily" EXTENDS TEMPLATE "Newspaper" {
		IDENTITY { id = 1; title = "Daily"; }
		CHARACTERISTICS { medium = "digital"; }
	}
}
`
	p := lowerSource(t, src)
	o := findOutlet(p, 1)
	if o == nil {
		t.Fatal("outlet 1 not found")
	}
	var medium, verified string
	for _, f := range o.Blocks.Characteristics {
		if f.Name == "medium" {
			medium = RenderValue(f.Value)
		}
	}
	for _, f := range o.Blocks.Metadata {
		if f.Name == "verified" {
			verified = RenderValue(f.Value)
		}
	}
	if medium != "digital" {
		t.Fatalf("expected child's medium to win, got %q", medium)
	}
	if verified != "true" {
		t.Fatalf("expected metadata inherited from template, got %q", verified)
	}
	var distribution string
	for _, f := range o.Blocks.Characteristics {
		if f.Name == "distribution" {
			distribution = RenderValue(f.Value)
		}
	}
	if distribution != "local=true" {
		t.Fatalf("expected nested distribution inherited from template, got %q", distribution)
	}
}

func TestLower_BasedOnProjectionIsStructural(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "base" {
		IDENTITY { id = 1; title = "Base"; }
		CHARACTERISTICS { region = "AT"; }
	}
	OUTLET "derived" BASED_ON 1 {
		IDENTITY { id = 2; title = "Derived"; }
		CHARACTERISTICS { region = "DE"; }
	}
}
`
	p := lowerSource(t, src)
	base := findOutlet(p, 1)
	derived := findOutlet(p, 2)
	if base == nil || derived == nil {
		t.Fatal("expected both outlets")
	}
	var baseRegion, derivedRegion string
	for _, f := range base.Blocks.Characteristics {
		if f.Name == "region" {
			baseRegion = RenderValue(f.Value)
		}
	}
	for _, f := range derived.Blocks.Characteristics {
		if f.Name == "region" {
			derivedRegion = RenderValue(f.Value)
		}
	}
	if baseRegion != "AT" {
		t.Fatalf("base outlet region mutated: got %q", baseRegion)
	}
	if derivedRegion != "DE" {
		t.Fatalf("derived outlet should override region, got %q", derivedRegion)
	}
}

func TestLower_OutletRefOverrideMaterializesSegment(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
		CHARACTERISTICS { status = "active"; }
	}
	OUTLET_REF 1 {
		OVERRIDE FROM "2020-01-01" {
			FOR_PERIOD "2020-01-01" TO "2021-01-01" { CHARACTERISTICS { status = "sold"; } }
		}
	}
}
`
	p := lowerSource(t, src)
	o := findOutlet(p, 1)
	if o == nil {
		t.Fatal("outlet 1 not found")
	}
	if len(o.Overrides) != 1 {
		t.Fatalf("expected 1 override segment, got %d", len(o.Overrides))
	}
	seg := o.Overrides[0]
	if seg.From != "2020-01-01" || seg.To != "2021-01-01" {
		t.Fatalf("unexpected segment window: %+v", seg)
	}
	var status string
	for _, f := range seg.Snapshot.Characteristics {
		if f.Name == "status" {
			status = RenderValue(f.Value)
		}
	}
	if status != "sold" {
		t.Fatalf("expected patched status in snapshot, got %q", status)
	}
}

func TestLower_LifecycleContiguousMerge(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
		LIFECYCLE {
			STATUS "active" FROM "2000-01-01" TO "2010-01-01" { }
			STATUS "active" FROM "2010-01-01" TO CURRENT { }
		}
	}
}
`
	p := lowerSource(t, src)
	o := findOutlet(p, 1)
	if len(o.Blocks.Lifecycle) != 1 {
		t.Fatalf("expected contiguous identical-status intervals to merge into one segment, got %d", len(o.Blocks.Lifecycle))
	}
	seg := o.Blocks.Lifecycle[0]
	if seg.From != "2000-01-01" || seg.To != "" {
		t.Fatalf("unexpected merged segment: %+v", seg)
	}
}

func TestLower_DataBlockNormalizationResolvesSource(t *testing.T) {
	src := `
CATALOG "C" {
	SOURCE "mabase" { display_name = "Media Analyzer"; }
}
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	DATA FOR 1 {
		YEAR 2020 {
			circulation = { value = 100000; unit = "copies"; source = "mabase"; }
		}
	}
}
`
	p := lowerSource(t, src)
	fam := p.Families[0]
	if len(fam.DataBlocks) != 1 {
		t.Fatalf("expected 1 data block, got %d", len(fam.DataBlocks))
	}
	m := fam.DataBlocks[0].Years[0].Metrics[0]
	if m.SourceIndex != 0 {
		t.Fatalf("expected metric source resolved to catalog index 0, got %d", m.SourceIndex)
	}
}

func TestLower_VariableSubstitution(t *testing.T) {
	src := `
LET status = "defunct";
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
		CHARACTERISTICS { status = $status; }
	}
}
`
	p := lowerSource(t, src)
	o := findOutlet(p, 1)
	var status string
	for _, f := range o.Blocks.Characteristics {
		if f.Name == "status" {
			status = RenderValue(f.Value)
		}
	}
	if status != "defunct" {
		t.Fatalf("expected $status substituted to \"defunct\", got %q", status)
	}
}

func TestLower_TablesAndGraphViewsPopulated(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
		LIFECYCLE { STATUS "active" FROM "2000-01-01" TO CURRENT { } }
		CHARACTERISTICS { region = "AT"; }
	}
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
	if len(p.Tables.Outlets) != 2 {
		t.Fatalf("expected 2 outlet rows, got %d", len(p.Tables.Outlets))
	}
	if len(p.Tables.OutletLifecycle) != 1 {
		t.Fatalf("expected 1 lifecycle row, got %d", len(p.Tables.OutletLifecycle))
	}
	if len(p.Tables.DiachronicRelationships) != 1 {
		t.Fatalf("expected 1 diachronic relationship row, got %d", len(p.Tables.DiachronicRelationships))
	}

	var hasOutletEdge, hasLink bool
	for _, e := range p.Graph.Edges {
		if e.Type == "HAS_OUTLET" {
			hasOutletEdge = true
		}
		if e.Type == "DIACHRONIC_LINK" {
			hasLink = true
		}
	}
	if !hasOutletEdge || !hasLink {
		t.Fatalf("expected HAS_OUTLET and DIACHRONIC_LINK edges in graph view")
	}
}

func TestLower_GraphViewKeysAreDeterministic(t *testing.T) {
	src := `
VOCABULARY RelationshipTypes {
	acquisition { 1: "merger" }
}
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
		LIFECYCLE {
			STATUS "active" FROM "2000-01-01" TO "2010-01-01" { }
			STATUS "defunct" FROM "2010-01-01" TO CURRENT { }
		}
		CHARACTERISTICS { region = "AT"; }
		METADATA { source = "manual"; }
	}
	DATA FOR 1 {
		YEAR 2020 { circulation = { value = 1000; unit = "copies"; } }
	}
}
`
	p1 := lowerSource(t, src)
	p2 := lowerSource(t, src)

	if len(p1.Graph.Nodes) != len(p2.Graph.Nodes) {
		t.Fatalf("node count differs between runs: %d vs %d", len(p1.Graph.Nodes), len(p2.Graph.Nodes))
	}
	for i, n := range p1.Graph.Nodes {
		if n.Key != p2.Graph.Nodes[i].Key || n.Label != p2.Graph.Nodes[i].Label {
			t.Fatalf("node %d key differs between runs: %+v vs %+v", i, n, p2.Graph.Nodes[i])
		}
	}

	seen := map[string]bool{}
	for _, n := range p1.Graph.Nodes {
		k := n.Label + ":" + n.Key
		if seen[k] {
			t.Fatalf("duplicate node key within a single run: %s", k)
		}
		seen[k] = true
	}
}
