package parser

import (
	"testing"

	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

func parse(t *testing.T, src string) (*ast.File, int) {
	t.Helper()
	sm := sourcemap.New()
	fid := sm.LoadString("test.mdsl", src)
	f, errs := Parse(fid, "test.mdsl", src)
	return f, len(errs.All())
}

func TestParser_UnitAndVocabulary(t *testing.T) {
	src := `
UNIT Outlet {
	id: ID PRIMARY KEY,
	title: TEXT(200),
	status: CATEGORY("active", "defunct"),
}
VOCABULARY RelationshipTypes {
	acquisition { 1: "merger", 2: "buyout" }
}
`
	f, n := parse(t, src)
	if n != 0 {
		t.Fatalf("unexpected parse errors: %d", n)
	}
	if len(f.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(f.Statements))
	}
	u, ok := f.Statements[0].(*ast.Unit)
	if !ok {
		t.Fatalf("expected *ast.Unit, got %T", f.Statements[0])
	}
	if len(u.Fields) != 3 || !u.Fields[0].PrimaryKey {
		t.Fatalf("unexpected unit fields: %+v", u.Fields)
	}
	voc, ok := f.Statements[1].(*ast.Vocabulary)
	if !ok {
		t.Fatalf("expected *ast.Vocabulary, got %T", f.Statements[1])
	}
	if len(voc.Groups) != 1 || len(voc.Groups[0].Entries) != 2 {
		t.Fatalf("unexpected vocabulary shape: %+v", voc.Groups)
	}
}

func TestParser_FamilyWithOutletAndOverride(t *testing.T) {
	src := `
FAMILY "Kronen Zeitung Family" {
	OUTLET "krone.at" {
		IDENTITY {
			id = 200001;
			title = "Kronen Zeitung";
			historical_titles = [
				{ title = "Neue Kronen Zeitung"; period = "1959-01-01" TO "1970-01-01"; }
			]
		}
		LIFECYCLE {
			STATUS "active" FROM "1959-01-01" TO CURRENT { precision_start = "day"; }
		}
		CHARACTERISTICS {
			language = "de";
			distribution = { print = true; online = true; };
		}
	}
	OUTLET_REF 200001 ["krone.at historical"] {
		OVERRIDE FROM "2020-01-01" {
			FOR_PERIOD "2020-01-01" TO CURRENT {
				CHARACTERISTICS { editorial_stance = "center-right"; }
			}
		}
	}
}
`
	f, n := parse(t, src)
	if n != 0 {
		t.Fatalf("unexpected parse errors: %d", n)
	}
	fam, ok := f.Statements[0].(*ast.Family)
	if !ok {
		t.Fatalf("expected *ast.Family, got %T", f.Statements[0])
	}
	if len(fam.Outlets) != 1 || len(fam.OutletRefs) != 1 {
		t.Fatalf("unexpected family shape: %+v", fam)
	}
	o := fam.Outlets[0]
	if o.Identity == nil || o.Identity.ID != 200001 || o.NumericID != 200001 {
		t.Fatalf("unexpected identity: %+v", o.Identity)
	}
	if len(o.Identity.HistoricalTitles) != 1 {
		t.Fatalf("expected 1 historical title, got %d", len(o.Identity.HistoricalTitles))
	}
	if o.Lifecycle == nil || len(o.Lifecycle.Intervals) != 1 {
		t.Fatalf("unexpected lifecycle: %+v", o.Lifecycle)
	}
	iv := o.Lifecycle.Intervals[0]
	if iv.PrecisionStart != "day" {
		t.Errorf("expected precision_start=day, got %q", iv.PrecisionStart)
	}
	to, ok := iv.To.(*ast.DateLit)
	if !ok || !to.Current {
		t.Fatalf("expected CURRENT end, got %#v", iv.To)
	}

	ref := fam.OutletRefs[0]
	if ref.TargetID != 200001 || !ref.HasTitleHint || ref.TitleHint != "krone.at historical" {
		t.Fatalf("unexpected outlet ref: %+v", ref)
	}
	if len(ref.Overrides) != 1 || len(ref.Overrides[0].Periods) != 1 {
		t.Fatalf("unexpected overrides: %+v", ref.Overrides)
	}
}

func TestParser_EventWithEntitiesAndDateRange(t *testing.T) {
	src := `
EVENT e1 {
	type = "acquisition";
	date = "1971-01-01" TO "1971-12-31";
	entities = {
		acquirer = { id = 300001; role = "acquirer"; stake_before = 0; stake_after = 100; }
		target = { id = 200001; role = "target"; }
	}
	impact = { market_share_change = 12.5; }
}
`
	f, n := parse(t, src)
	if n != 0 {
		t.Fatalf("unexpected parse errors: %d", n)
	}
	ev, ok := f.Statements[0].(*ast.Event)
	if !ok {
		t.Fatalf("expected *ast.Event, got %T", f.Statements[0])
	}
	if _, ok := ev.Date.(*ast.DateRange); !ok {
		t.Fatalf("expected DateRange date, got %#v", ev.Date)
	}
	if len(ev.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(ev.Entities))
	}
	acquirer := ev.Entities[0]
	if acquirer.StakeBefore == nil || *acquirer.StakeBefore != 0 || acquirer.StakeAfter == nil || *acquirer.StakeAfter != 100 {
		t.Fatalf("unexpected acquirer stake: %+v", acquirer)
	}
}

func TestParser_DataBlockYears(t *testing.T) {
	src := `
DATA FOR 200001 {
	AGGREGATION { method = "sum"; }
	YEAR 2020 {
		circulation = { value = 50000; unit = "copies"; source = "ANMI"; }
	}
}
`
	f, n := parse(t, src)
	if n != 0 {
		t.Fatalf("unexpected parse errors: %d", n)
	}
	db, ok := f.Statements[0].(*ast.DataBlock)
	if !ok {
		t.Fatalf("expected *ast.DataBlock, got %T", f.Statements[0])
	}
	if db.OutletID != 200001 || len(db.Years) != 1 {
		t.Fatalf("unexpected data block: %+v", db)
	}
	y := db.Years[0]
	if y.Year != 2020 || len(y.Metrics) != 1 || y.Metrics[0].Value != 50000 {
		t.Fatalf("unexpected year metrics: %+v", y)
	}
}

func TestParser_SyncsPastUnexpectedToken(t *testing.T) {
	src := `
UNIT Outlet { id: ID }
!!! garbage
UNIT Source { id: ID }
`
	f, n := parse(t, src)
	if n == 0 {
		t.Fatalf("expected a parse error for the garbage token")
	}
	if len(f.Statements) != 2 {
		t.Fatalf("expected parser to recover and keep parsing, got %d statements", len(f.Statements))
	}
}
