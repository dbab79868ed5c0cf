package semantic

import (
	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
)

// bindNames is Pass A: it walks every file in import-resolved order and
// records every name a reference anywhere in the program could resolve
// against, flagging duplicates as it goes. Variables are program-scoped
// (spec.md is silent on LET's scope; program-wide is the simplest reading
// and matches how a single compiled unit treats its whole import graph).
func (a *Analyzer) bindNames() {
	for _, f := range a.prog.Files {
		for _, stmt := range f.Statements {
			switch s := stmt.(type) {
			case *ast.Let:
				if _, ok := a.sym.Vars[s.Name]; ok {
					a.duplicate(diag.KindShadowedVariable, s.Name, s.Sp)
				}
				a.sym.Vars[s.Name] = s.Value
			case *ast.Unit:
				if _, ok := a.sym.Units[s.Name]; ok {
					a.duplicate(diag.KindDuplicateName, s.Name, s.Sp)
				}
				a.sym.Units[s.Name] = s
			case *ast.Vocabulary:
				if _, ok := a.sym.Vocabularies[s.Name]; ok {
					a.duplicate(diag.KindDuplicateName, s.Name, s.Sp)
				}
				a.sym.Vocabularies[s.Name] = s
				a.checkVocabKeys(s)
			case *ast.Catalog:
				if _, ok := a.sym.Catalogs[s.Name]; ok {
					a.duplicate(diag.KindDuplicateName, s.Name, s.Sp)
				}
				a.sym.Catalogs[s.Name] = s
				for _, src := range s.Sources {
					if _, ok := a.sym.Sources[src.Name]; ok {
						a.duplicate(diag.KindDuplicateName, src.Name, src.Sp)
					}
					a.sym.Sources[src.Name] = src
				}
			case *ast.Template:
				if _, ok := a.sym.Templates[s.Name]; ok {
					a.duplicate(diag.KindDuplicateName, s.Name, s.Sp)
				}
				a.sym.Templates[s.Name] = s
			case *ast.Family:
				a.bindFamily(s)
			case *ast.DataBlock:
				// Top-level DATA blocks reference an outlet id resolved in
				// Pass B; nothing to bind here.
			case *ast.DiachronicLink, *ast.SynchronousLink, *ast.Event:
				a.bindEventOrLink(stmt)
			}
		}
	}
}

func (a *Analyzer) bindFamily(fam *ast.Family) {
	for _, t := range fam.Templates {
		if _, ok := a.sym.Templates[t.Name]; ok {
			a.duplicate(diag.KindDuplicateName, t.Name, t.Sp)
		}
		a.sym.Templates[t.Name] = t
	}
	for _, o := range fam.Outlets {
		if o.Identity == nil || !o.Identity.HasID {
			a.errs.Errorf(o.Sp, diag.KindFieldTypeUnknown, "outlet in family %q has no identity.id", fam.Name)
			continue
		}
		if _, ok := a.sym.OutletsByID[o.NumericID]; ok {
			a.duplicate(diag.KindDuplicateOutletID, fam.Name, o.Sp)
		}
		a.sym.OutletsByID[o.NumericID] = o
	}
	for _, ev := range fam.Events {
		a.bindEvent(ev)
	}

	linkNames := map[string]bool{}
	for _, dl := range fam.DiachronicLinks {
		if linkNames[dl.Name.Text] {
			a.duplicate(diag.KindDuplicateName, dl.Name.Text, dl.Sp)
		}
		linkNames[dl.Name.Text] = true
	}
	for _, sl := range fam.SynchronousLinks {
		if linkNames[sl.Name.Text] {
			a.duplicate(diag.KindDuplicateName, sl.Name.Text, sl.Sp)
		}
		linkNames[sl.Name.Text] = true
	}
}

// checkVocabKeys flags keys repeated within the same group of a vocabulary.
// Spec.md §3 scopes uniqueness to the group, not the vocabulary as a whole,
// so the same key may legally appear in two different groups.
func (a *Analyzer) checkVocabKeys(v *ast.Vocabulary) {
	for _, g := range v.Groups {
		seen := map[string]bool{}
		for _, e := range g.Entries {
			if seen[e.Key] {
				a.duplicate(diag.KindDuplicateName, e.Key, e.Sp)
				continue
			}
			seen[e.Key] = true
		}
	}
}

func (a *Analyzer) bindEventOrLink(stmt ast.Stmt) {
	if ev, ok := stmt.(*ast.Event); ok {
		a.bindEvent(ev)
	}
}

func (a *Analyzer) bindEvent(ev *ast.Event) {
	if _, ok := a.sym.EventsByName[ev.Name]; ok {
		a.duplicate(diag.KindDuplicateName, ev.Name, ev.Sp)
	}
	a.sym.EventsByName[ev.Name] = ev
}

// checkImportCycles walks the import graph built from each File's Path and
// Import.Path, flagging any cycle. Paths are matched verbatim, as they've
// already been resolved to canonical form by the loader that built Program.
func (a *Analyzer) checkImportCycles() {
	byPath := map[string]*ast.File{}
	for _, f := range a.prog.Files {
		byPath[f.Path] = f
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[string]int{}

	var visit func(f *ast.File) bool
	visit = func(f *ast.File) bool {
		state[f.Path] = visiting
		for _, imp := range f.Imports {
			target, ok := byPath[imp.Path]
			if !ok {
				continue
			}
			switch state[target.Path] {
			case visiting:
				a.errs.Errorf(imp.Sp, diag.KindImportCycle, "import cycle involving %q", imp.Path)
				return true
			case unvisited:
				if visit(target) {
					return true
				}
			}
		}
		state[f.Path] = done
		return false
	}

	for _, f := range a.prog.Files {
		if state[f.Path] == unvisited {
			visit(f)
		}
	}
}
