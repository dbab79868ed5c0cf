package semantic

import (
	"testing"

	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/lang/parser"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

func analyzeSource(t *testing.T, src string) (*Symbols, *diag.Sink) {
	t.Helper()
	sm := sourcemap.New()
	fid := sm.LoadString("test.mdsl", src)
	f, perrs := parser.Parse(fid, "test.mdsl", src)
	if len(perrs.All()) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs.All())
	}
	prog := &ast.Program{Files: []*ast.File{f}}
	return Analyze(prog, true)
}

func hasKind(errs *diag.Sink, kind diag.Kind) bool {
	for _, d := range errs.All() {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func TestSemantic_UndefinedOutletRef(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET_REF 999999 {
		OVERRIDE FROM "2020-01-01" {
			FOR_PERIOD "2020-01-01" TO CURRENT { METADATA { x = "y"; } }
		}
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindUndefinedOutlet) {
		t.Fatalf("expected KindUndefinedOutlet, got %v", errs.All())
	}
}

func TestSemantic_DuplicateOutletID(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 1; title = "B"; } }
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindDuplicateOutletID) {
		t.Fatalf("expected KindDuplicateOutletID, got %v", errs.All())
	}
}

func TestSemantic_UndefinedVariable(t *testing.T) {
	src := `LET x = $missing;`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindUndefinedVariable) {
		t.Fatalf("expected KindUndefinedVariable, got %v", errs.All())
	}
}

func TestSemantic_OverlappingLifecycle(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY { id = 1; title = "A"; }
		LIFECYCLE {
			STATUS "active" FROM "2000-01-01" TO "2010-01-01" { }
			STATUS "active" FROM "2005-01-01" TO "2015-01-01" { }
		}
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindOverlappingLifecycle) {
		t.Fatalf("expected KindOverlappingLifecycle, got %v", errs.All())
	}
}

func TestSemantic_StakeOutOfRange(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 2; title = "B"; } }
	EVENT e1 {
		entities = {
			acquirer = { id = 1; role = "acquirer"; stake_after = 150; }
			target = { id = 2; role = "target"; }
		}
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindStakeOutOfRange) {
		t.Fatalf("expected KindStakeOutOfRange, got %v", errs.All())
	}
}

func TestSemantic_DuplicateVocabKey(t *testing.T) {
	src := `
VOCABULARY RelationshipTypes {
	acquisition { 1: "merger", 1: "buyout" }
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindDuplicateName) {
		t.Fatalf("expected KindDuplicateName, got %v", errs.All())
	}
}

func TestSemantic_VocabKeyAllowedAcrossGroups(t *testing.T) {
	src := `
VOCABULARY RelationshipTypes {
	acquisition { 1: "merger" }
	divestiture { 1: "spinoff" }
}
`
	_, errs := analyzeSource(t, src)
	if hasKind(errs, diag.KindDuplicateName) {
		t.Fatalf("unexpected KindDuplicateName across distinct groups: %v", errs.All())
	}
}

func TestSemantic_InvertedDiachronicEventDate(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 2; title = "B"; } }
	DIACHRONIC_LINK t {
		predecessor = 1;
		successor = 2;
		event_date = "2020-01-01" TO "2019-01-01";
		relationship_type = "merger";
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindInvertedDateRange) {
		t.Fatalf("expected KindInvertedDateRange, got %v", errs.All())
	}
}

func TestSemantic_InvertedSynchronousPeriod(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET "b" { IDENTITY { id = 2; title = "B"; } }
	SYNCHRONOUS_LINK t {
		outlet_1 = { id = 1; role = "x"; };
		outlet_2 = { id = 2; role = "y"; };
		relationship_type = "partnership";
		period = "2020-01-01" TO "2019-01-01";
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindInvertedDateRange) {
		t.Fatalf("expected KindInvertedDateRange, got %v", errs.All())
	}
}

func TestSemantic_InvertedHistoricalTitlePeriod(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" {
		IDENTITY {
			id = 1; title = "A";
			historical_titles = [{ title = "Old Name"; period = "2020-01-01" TO "2019-01-01"; }];
		}
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindInvertedDateRange) {
		t.Fatalf("expected KindInvertedDateRange, got %v", errs.All())
	}
}

func TestSemantic_WarnOverlapToggle(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	OUTLET_REF 1 {
		OVERRIDE FROM "2020-01-01" {
			FOR_PERIOD "2020-01-01" TO "2021-01-01" { CHARACTERISTICS { x = "y"; } }
			FOR_PERIOD "2020-06-01" TO "2021-06-01" { CHARACTERISTICS { x = "z"; } }
		}
	}
}
`
	sm := sourcemap.New()
	fid := sm.LoadString("test.mdsl", src)
	f, perrs := parser.Parse(fid, "test.mdsl", src)
	if len(perrs.All()) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs.All())
	}
	prog := &ast.Program{Files: []*ast.File{f}}

	_, onErrs := Analyze(prog, true)
	if !hasKind(onErrs, diag.KindOverlappingOverridePeriod) {
		t.Fatalf("expected KindOverlappingOverridePeriod with warnOverlap=true, got %v", onErrs.All())
	}

	_, offErrs := Analyze(prog, false)
	if hasKind(offErrs, diag.KindOverlappingOverridePeriod) {
		t.Fatalf("expected no KindOverlappingOverridePeriod with warnOverlap=false, got %v", offErrs.All())
	}
}

func TestSemantic_UndefinedSourceIsError(t *testing.T) {
	src := `
FAMILY "F" {
	OUTLET "a" { IDENTITY { id = 1; title = "A"; } }
	DATA FOR 1 {
		YEAR 2020 {
			circulation = { value = 100000; unit = "copies"; source = "nonexistent"; }
		}
	}
}
`
	_, errs := analyzeSource(t, src)
	if !hasKind(errs, diag.KindUndefinedSource) {
		t.Fatalf("expected KindUndefinedSource, got %v", errs.All())
	}
	if !errs.HasErrors() {
		t.Fatal("expected undefined source to be error severity, not a warning")
	}
}

func TestSemantic_CleanProgramHasNoErrors(t *testing.T) {
	src := `
UNIT Outlet {
	id: ID PRIMARY KEY,
	status: CATEGORY("active", "defunct"),
}
FAMILY "Kronen Zeitung Family" {
	OUTLET "krone.at" {
		IDENTITY { id = 200001; title = "Kronen Zeitung"; }
		LIFECYCLE { STATUS "active" FROM "1959-01-01" TO CURRENT { } }
		CHARACTERISTICS { status = "active"; }
	}
}
`
	sym, errs := analyzeSource(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.All())
	}
	if _, ok := sym.OutletsByID[200001]; !ok {
		t.Fatalf("expected outlet 200001 to be bound")
	}
}
