package semantic

import (
	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
)

// checkReferences is Pass B's first sweep: every name reference anywhere in
// the program must resolve against the symbols Pass A bound.
func (a *Analyzer) checkReferences() {
	for _, f := range a.prog.Files {
		for _, stmt := range f.Statements {
			a.checkStmtReferences(stmt)
		}
	}
}

func (a *Analyzer) checkStmtReferences(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		a.checkValueReferences(s.Value)
	case *ast.Family:
		a.checkFamilyReferences(s)
	case *ast.DataBlock:
		a.checkDataBlockReferences(s)
	case *ast.DiachronicLink:
		a.checkDiachronicLinkReferences(s)
	case *ast.SynchronousLink:
		a.checkSynchronousLinkReferences(s)
	case *ast.Event:
		a.checkEventReferences(s)
	}
}

func (a *Analyzer) checkFamilyReferences(fam *ast.Family) {
	for _, o := range fam.Outlets {
		a.checkOutletReferences(o)
	}
	for _, ref := range fam.OutletRefs {
		a.checkOutletRefReferences(ref)
	}
	for _, db := range fam.DataBlocks {
		a.checkDataBlockReferences(db)
	}
	for _, dl := range fam.DiachronicLinks {
		a.checkDiachronicLinkReferences(dl)
	}
	for _, sl := range fam.SynchronousLinks {
		a.checkSynchronousLinkReferences(sl)
	}
	for _, ev := range fam.Events {
		a.checkEventReferences(ev)
	}
}

func (a *Analyzer) checkOutletReferences(o *ast.Outlet) {
	if o.ExtendsTemplate != "" {
		if _, ok := a.sym.Templates[o.ExtendsTemplate]; !ok {
			a.errs.Errorf(o.Sp, diag.KindUndefinedTemplate, "undefined template %q", o.ExtendsTemplate)
		}
	}
	if o.HasBasedOn {
		if _, ok := a.sym.OutletsByID[o.BasedOn]; !ok {
			a.errs.Errorf(o.Sp, diag.KindUndefinedOutlet, "BASED_ON references undefined outlet %d", o.BasedOn)
		}
	}
	a.checkOutletBlocksReferences(o.OutletBlocks)
}

func (a *Analyzer) checkOutletBlocksReferences(blocks ast.OutletBlocks) {
	if blocks.Characteristics != nil {
		for _, f := range blocks.Characteristics.Fields {
			a.checkValueReferences(f.Value)
			a.checkCategoryField(f)
		}
	}
	if blocks.Metadata != nil {
		for _, f := range blocks.Metadata.Fields {
			a.checkValueReferences(f.Value)
		}
	}
}

// checkCategoryField flags a characteristics field whose value is a string
// that doesn't belong to the category list of a same-named CATEGORY unit
// field declared anywhere in the program. Units describe schemas, not
// bindings, so this is a best-effort, name-based match rather than a
// fully-typed characteristics schema.
func (a *Analyzer) checkCategoryField(f *ast.Field) {
	str, ok := f.Value.(*ast.StringLit)
	if !ok {
		return
	}
	for _, u := range a.sym.Units {
		for _, uf := range u.Fields {
			if uf.Name != f.Name || uf.Type.Kind != ast.FieldCategory {
				continue
			}
			if !contains(uf.Type.Categories, str.Val) {
				a.errs.Errorf(str.Sp, diag.KindCategoryViolation,
					"%q is not a valid value for category field %q", str.Val, f.Name)
			}
			return
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (a *Analyzer) checkOutletRefReferences(ref *ast.OutletRef) {
	if _, ok := a.sym.OutletsByID[ref.TargetID]; !ok {
		a.errs.Errorf(ref.Sp, diag.KindUndefinedOutlet, "OUTLET_REF references undefined outlet %d", ref.TargetID)
	}
	if ref.HasInheritsFrom {
		if _, ok := a.sym.OutletsByID[ref.InheritsFrom]; !ok {
			a.errs.Errorf(ref.Sp, diag.KindUndefinedOutlet, "INHERITS_FROM references undefined outlet %d", ref.InheritsFrom)
		}
	}
	for _, ov := range ref.Overrides {
		for _, fp := range ov.Periods {
			a.checkOutletBlocksReferences(fp.OutletBlocks)
		}
	}
}

func (a *Analyzer) checkDataBlockReferences(db *ast.DataBlock) {
	if _, ok := a.sym.OutletsByID[db.OutletID]; !ok {
		a.errs.Errorf(db.Sp, diag.KindUndefinedOutlet, "DATA FOR references undefined outlet %d", db.OutletID)
	}
	for _, y := range db.Years {
		for _, m := range y.Metrics {
			if m.Source != "" {
				if _, ok := a.sym.Sources[m.Source]; !ok {
					a.errs.Errorf(m.Sp, diag.KindUndefinedSource, "metric %q references unknown source %q", m.Name, m.Source)
				}
			}
		}
	}
}

func (a *Analyzer) checkDiachronicLinkReferences(dl *ast.DiachronicLink) {
	if _, ok := a.sym.OutletsByID[dl.Predecessor]; !ok {
		a.errs.Errorf(dl.Sp, diag.KindUndefinedOutlet, "predecessor references undefined outlet %d", dl.Predecessor)
	}
	if _, ok := a.sym.OutletsByID[dl.Successor]; !ok {
		a.errs.Errorf(dl.Sp, diag.KindUndefinedOutlet, "successor references undefined outlet %d", dl.Successor)
	}
	if dl.HasTriggeredByEvent {
		if _, ok := a.sym.EventsByName[dl.TriggeredByEvent]; !ok {
			a.errs.Errorf(dl.Sp, diag.KindUndefinedEvent, "triggered_by_event references undefined event %q", dl.TriggeredByEvent)
		}
	}
}

func (a *Analyzer) checkSynchronousLinkReferences(sl *ast.SynchronousLink) {
	if _, ok := a.sym.OutletsByID[sl.Outlet1.ID]; !ok {
		a.errs.Errorf(sl.Sp, diag.KindUndefinedOutlet, "outlet_1 references undefined outlet %d", sl.Outlet1.ID)
	}
	if _, ok := a.sym.OutletsByID[sl.Outlet2.ID]; !ok {
		a.errs.Errorf(sl.Sp, diag.KindUndefinedOutlet, "outlet_2 references undefined outlet %d", sl.Outlet2.ID)
	}
	if sl.HasCreatedByEvent {
		if _, ok := a.sym.EventsByName[sl.CreatedByEvent]; !ok {
			a.errs.Errorf(sl.Sp, diag.KindUndefinedEvent, "created_by_event references undefined event %q", sl.CreatedByEvent)
		}
	}
}

func (a *Analyzer) checkEventReferences(ev *ast.Event) {
	for _, p := range ev.Entities {
		if _, ok := a.sym.OutletsByID[p.ID]; !ok {
			a.errs.Errorf(p.Sp, diag.KindUndefinedOutlet, "entity %q references undefined outlet %d", p.Key, p.ID)
		}
		if p.StakeBefore != nil && (*p.StakeBefore < 0 || *p.StakeBefore > 100) {
			a.errs.Errorf(p.Sp, diag.KindStakeOutOfRange, "entity %q stake_before %.2f is out of range [0,100]", p.Key, *p.StakeBefore)
		}
		if p.StakeAfter != nil && (*p.StakeAfter < 0 || *p.StakeAfter > 100) {
			a.errs.Errorf(p.Sp, diag.KindStakeOutOfRange, "entity %q stake_after %.2f is out of range [0,100]", p.Key, *p.StakeAfter)
		}
	}
}

func (a *Analyzer) checkValueReferences(v ast.Value) {
	switch val := v.(type) {
	case *ast.VarRef:
		if _, ok := a.sym.Vars[val.Name]; !ok {
			a.errs.Errorf(val.Sp, diag.KindUndefinedVariable, "undefined variable $%s", val.Name)
		}
	case *ast.ObjectLit:
		for _, f := range val.Fields {
			a.checkValueReferences(f.Value)
		}
	case *ast.ArrayLit:
		for _, e := range val.Elems {
			a.checkValueReferences(e)
		}
	}
}
