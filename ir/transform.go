package ir

import (
	"sort"

	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/semantic"
)

// Lower turns a parsed+analyzed Program into its flat IR, per spec.md
// §4.5's numbered operations. Callers should only lower programs that
// came back from semantic.Analyze with no errors; lowering does not
// re-validate, it projects.
func Lower(prog *ast.Program, sym *semantic.Symbols) *Program {
	l := &lowerer{
		prog:     prog,
		sym:      sym,
		expanded: map[int64]OutletBlocks{},
		visiting: map[int64]bool{},
		irByID:   map[int64]*Outlet{},
	}
	return l.run()
}

type lowerer struct {
	prog *ast.Program
	sym  *semantic.Symbols

	templatesByName map[string]*ast.Template
	sourceIndex     map[string]int

	expanded map[int64]OutletBlocks
	visiting map[int64]bool
	irByID   map[int64]*Outlet
}

func (l *lowerer) run() *Program {
	out := &Program{}

	l.templatesByName = map[string]*ast.Template{}
	for _, f := range l.prog.Files {
		for _, stmt := range f.Statements {
			switch s := stmt.(type) {
			case *ast.Unit:
				out.Units = append(out.Units, s)
			case *ast.Vocabulary:
				out.Vocabularies = append(out.Vocabularies, s)
			case *ast.Catalog:
				out.Catalogs = append(out.Catalogs, s)
			case *ast.Template:
				l.templatesByName[s.Name] = s
			case *ast.Family:
				for _, t := range s.Templates {
					l.templatesByName[t.Name] = t
				}
			}
		}
	}

	l.sourceIndex = map[string]int{}
	idx := 0
	for _, cat := range out.Catalogs {
		for _, src := range cat.Sources {
			if _, ok := l.sourceIndex[src.Name]; !ok {
				l.sourceIndex[src.Name] = idx
				idx++
			}
		}
	}

	// Pass 1: expand every declared outlet (template + BASED_ON), in
	// declaration order, across every family.
	for _, f := range l.prog.Files {
		for _, stmt := range f.Statements {
			fam, ok := stmt.(*ast.Family)
			if !ok {
				continue
			}
			irFam := &Family{Name: fam.Name}
			for _, o := range fam.Outlets {
				irOutlet := &Outlet{
					ID:              o.NumericID,
					DeclaredName:    o.DeclaredName,
					ExtendsTemplate: o.ExtendsTemplate,
					BasedOn:         o.BasedOn,
					HasBasedOn:      o.HasBasedOn,
					Blocks:          l.expandedBlocksFor(o),
				}
				l.irByID[o.NumericID] = irOutlet
				irFam.Outlets = append(irFam.Outlets, irOutlet)
			}
			irFam.DiachronicLinks = fam.DiachronicLinks
			irFam.SynchronousLinks = fam.SynchronousLinks
			irFam.Events = fam.Events
			for _, db := range fam.DataBlocks {
				irFam.DataBlocks = append(irFam.DataBlocks, l.normalizeDataBlock(db))
			}
			out.Families = append(out.Families, irFam)
		}
	}

	// Pass 2: materialize OUTLET_REF overrides onto their target outlet's
	// timeline, now that every outlet's base blocks are known.
	for _, f := range l.prog.Files {
		for _, stmt := range f.Statements {
			fam, ok := stmt.(*ast.Family)
			if !ok {
				continue
			}
			for _, ref := range fam.OutletRefs {
				l.materializeOutletRef(ref)
			}
		}
	}

	out.Tables = buildTablesView(out)
	out.Graph = buildGraphView(out)
	return out
}

// expandedBlocksFor returns outlet o's fully expanded blocks (template
// merge, then BASED_ON projection), memoized by numeric id. A BASED_ON
// cycle degrades to "own blocks only" rather than recursing forever: the
// spec names no cycle invariant for BASED_ON, so this is a defensive
// fallback, not a reported error.
func (l *lowerer) expandedBlocksFor(o *ast.Outlet) OutletBlocks {
	if b, ok := l.expanded[o.NumericID]; ok {
		return b
	}
	if l.visiting[o.NumericID] {
		return resolveOutletBlocks(o.OutletBlocks, l.sym.Vars)
	}
	l.visiting[o.NumericID] = true

	own := resolveOutletBlocks(o.OutletBlocks, l.sym.Vars)
	if o.ExtendsTemplate != "" {
		if tmpl, ok := l.templatesByName[o.ExtendsTemplate]; ok {
			parent := resolveOutletBlocks(tmpl.OutletBlocks, l.sym.Vars)
			own = mergeBlocks(parent, own)
		}
	}
	if o.HasBasedOn {
		if base, ok := l.sym.OutletsByID[o.BasedOn]; ok {
			own = mergeBlocks(l.expandedBlocksFor(base), own)
		}
	}

	delete(l.visiting, o.NumericID)
	l.expanded[o.NumericID] = own
	return own
}

// materializeOutletRef attaches one OUTLET_REF's INHERITS_FROM and
// OVERRIDE FROM/FOR_PERIOD layers to the target outlet's Overrides
// timeline, each resolved against the target's own expanded blocks.
func (l *lowerer) materializeOutletRef(ref *ast.OutletRef) {
	target, ok := l.irByID[ref.TargetID]
	if !ok {
		return
	}

	if ref.HasInheritsFrom {
		if donor, ok := l.sym.OutletsByID[ref.InheritsFrom]; ok {
			donorBlocks := l.expandedBlocksFor(donor)
			target.Overrides = append(target.Overrides, OverrideSegment{
				From:     "",
				To:       dateText(ref.InheritsUntil),
				Snapshot: mergeBlocks(target.Blocks, donorBlocks),
			})
		}
	}

	for _, ov := range ref.Overrides {
		for _, fp := range ov.Periods {
			patch := resolveOutletBlocks(fp.OutletBlocks, l.sym.Vars)
			target.Overrides = append(target.Overrides, OverrideSegment{
				From:     dateText(fp.From),
				To:       dateText(fp.To),
				Snapshot: mergeBlocks(target.Blocks, patch),
			})
		}
	}
}

func (l *lowerer) normalizeDataBlock(db *ast.DataBlock) *NormalizedDataBlock {
	nb := &NormalizedDataBlock{
		OutletID:    db.OutletID,
		Aggregation: sortedFields(db.Aggregation, l.sym.Vars),
	}
	for _, y := range db.Years {
		ny := &NormalizedYear{Year: y.Year}
		for _, m := range y.Metrics {
			idx := -1
			if i, ok := l.sourceIndex[m.Source]; ok {
				idx = i
			}
			ny.Metrics = append(ny.Metrics, &NormalizedMetric{
				Name:        m.Name,
				Value:       m.Value,
				Unit:        m.Unit,
				SourceName:  m.Source,
				SourceIndex: idx,
				Comment:     m.Comment,
			})
		}
		nb.Years = append(nb.Years, ny)
	}
	return nb
}

// sortedFields flattens a map[string]ast.Value bag (Aggregation, Impact,
// Metadata on events) into a deterministic, name-sorted Field slice: the
// parser stores these as maps because their source syntax has no
// positional meaning, but every downstream emission pass needs a fixed
// order to stay deterministic.
func sortedFields(m map[string]ast.Value, vars map[string]ast.Value) []*ast.Field {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]*ast.Field, 0, len(names))
	for _, n := range names {
		out = append(out, &ast.Field{Name: n, Value: resolveValue(m[n], vars)})
	}
	return out
}
