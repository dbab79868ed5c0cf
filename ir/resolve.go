package ir

import "github.com/mdsl-lang/mdslc/lang/ast"

// resolveValue substitutes every $var reference in v with its bound
// literal, recursing into object and array literals. Values already
// resolved (parsed from an earlier LET) pass straight through.
func resolveValue(v ast.Value, vars map[string]ast.Value) ast.Value {
	switch val := v.(type) {
	case nil:
		return nil
	case *ast.VarRef:
		if bound, ok := vars[val.Name]; ok {
			return resolveValue(bound, vars)
		}
		return val
	case *ast.ObjectLit:
		fields := make([]*ast.Field, len(val.Fields))
		for i, f := range val.Fields {
			fields[i] = &ast.Field{Name: f.Name, NameSpan: f.NameSpan, Value: resolveValue(f.Value, vars)}
		}
		return &ast.ObjectLit{Spanned: val.Spanned, Fields: fields}
	case *ast.ArrayLit:
		elems := make([]ast.Value, len(val.Elems))
		for i, e := range val.Elems {
			elems[i] = resolveValue(e, vars)
		}
		return &ast.ArrayLit{Spanned: val.Spanned, Elems: elems}
	default:
		return v
	}
}

func resolveFields(fields []*ast.Field, vars map[string]ast.Value) []*ast.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]*ast.Field, len(fields))
	for i, f := range fields {
		out[i] = &ast.Field{Name: f.Name, NameSpan: f.NameSpan, Value: resolveValue(f.Value, vars)}
	}
	return out
}

// dateText extracts the plain "YYYY-MM-DD" text of a date value, or "" for
// CURRENT/nil (both mean "open-ended" downstream). A single date with no
// "TO" parses as a bare *ast.StringLit rather than a *ast.DateLit (only
// ranges and CURRENT build one), so that case falls back to the literal's
// text instead of being dropped.
func dateText(v ast.Value) string {
	switch d := v.(type) {
	case nil:
		return ""
	case *ast.DateLit:
		if d.Current {
			return ""
		}
		return d.Text
	case *ast.StringLit:
		return d.Val
	default:
		return ""
	}
}

// resolveIdentity flattens an ast.IdentityBlock (possibly nil) into *Identity.
func resolveIdentity(ib *ast.IdentityBlock, vars map[string]ast.Value) *Identity {
	if ib == nil {
		return nil
	}
	titles := make([]NormalizedTitle, 0, len(ib.HistoricalTitles))
	for _, ht := range ib.HistoricalTitles {
		nt := NormalizedTitle{Title: ht.Title}
		if ht.Period != nil {
			nt.From = dateText(ht.Period.From)
			nt.To = dateText(ht.Period.To)
		}
		titles = append(titles, nt)
	}
	return &Identity{
		ID:               ib.ID,
		HasID:            ib.HasID,
		Title:            ib.Title,
		URL:              ib.URL,
		HistoricalTitles: titles,
	}
}

// resolveLifecycle flattens an ast.LifecycleBlock's intervals into a
// canonical segment sequence, merging contiguous (touching, same status)
// intervals per spec.md §4.5.5.
func resolveLifecycle(lb *ast.LifecycleBlock, vars map[string]ast.Value) []LifecycleSegment {
	if lb == nil || len(lb.Intervals) == 0 {
		return nil
	}
	segs := make([]LifecycleSegment, 0, len(lb.Intervals))
	for _, iv := range lb.Intervals {
		segs = append(segs, LifecycleSegment{
			Status:         iv.Status,
			From:           dateText(iv.From),
			To:             dateText(iv.To),
			PrecisionStart: iv.PrecisionStart,
			PrecisionEnd:   iv.PrecisionEnd,
			Attrs:          resolveFields(iv.Extra, vars),
		})
	}
	out := segs[:1]
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if last.Status == s.Status && last.To != "" && last.To == s.From {
			last.To = s.To
			last.Attrs = mergeFieldList(last.Attrs, s.Attrs)
			continue
		}
		out = append(out, s)
	}
	return out
}

// resolveOutletBlocks lowers one ast.OutletBlocks (as declared on a
// Template, Outlet, or ForPeriod) into its fully resolved ir.OutletBlocks,
// substituting variables but without any template/BASED_ON inheritance
// merge — that happens in mergeBlocks.
func resolveOutletBlocks(ob ast.OutletBlocks, vars map[string]ast.Value) OutletBlocks {
	var chars, meta []*ast.Field
	if ob.Characteristics != nil {
		chars = resolveFields(ob.Characteristics.Fields, vars)
	}
	if ob.Metadata != nil {
		meta = resolveFields(ob.Metadata.Fields, vars)
	}
	return OutletBlocks{
		Identity:        resolveIdentity(ob.Identity, vars),
		Lifecycle:       resolveLifecycle(ob.Lifecycle, vars),
		Characteristics: chars,
		Metadata:        meta,
	}
}

// mergeFieldList implements "child overrides parent" for a key->value
// bag: parent's order is preserved, child's values win on key collision
// (recursing into nested objects), and child-only keys are appended.
func mergeFieldList(parent, child []*ast.Field) []*ast.Field {
	if len(parent) == 0 {
		return append([]*ast.Field(nil), child...)
	}
	if len(child) == 0 {
		return append([]*ast.Field(nil), parent...)
	}
	out := make([]*ast.Field, len(parent))
	copy(out, parent)
	for _, cf := range child {
		merged := false
		for i, pf := range out {
			if pf.Name != cf.Name {
				continue
			}
			pObj, pOK := pf.Value.(*ast.ObjectLit)
			cObj, cOK := cf.Value.(*ast.ObjectLit)
			if pOK && cOK {
				out[i] = &ast.Field{Name: cf.Name, NameSpan: cf.NameSpan, Value: mergeObjectLit(pObj, cObj)}
			} else {
				out[i] = cf
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, cf)
		}
	}
	return out
}

func mergeObjectLit(parent, child *ast.ObjectLit) *ast.ObjectLit {
	return &ast.ObjectLit{Spanned: child.Spanned, Fields: mergeFieldList(parent.Fields, child.Fields)}
}

// mergeIdentity applies "child overrides parent" field-by-field; a nil
// child identity means full inheritance, a present one inherits only the
// fields it leaves unset.
func mergeIdentity(parent, child *Identity) *Identity {
	if child == nil {
		if parent == nil {
			return nil
		}
		cp := *parent
		return &cp
	}
	if parent == nil {
		cp := *child
		return &cp
	}
	merged := *child
	if !merged.HasID {
		merged.ID, merged.HasID = parent.ID, parent.HasID
	}
	if merged.Title == "" {
		merged.Title = parent.Title
	}
	if merged.URL == "" {
		merged.URL = parent.URL
	}
	if len(merged.HistoricalTitles) == 0 {
		merged.HistoricalTitles = parent.HistoricalTitles
	}
	return &merged
}

// mergeBlocks is the "child overrides parent" merge of spec.md §4.5.2-3,
// shared by template expansion, BASED_ON projection and override
// materialization. It always builds new top-level slices/structs so the
// two resulting OutletBlocks never share mutable state.
func mergeBlocks(parent, child OutletBlocks) OutletBlocks {
	merged := OutletBlocks{
		Identity:        mergeIdentity(parent.Identity, child.Identity),
		Characteristics: mergeFieldList(parent.Characteristics, child.Characteristics),
		Metadata:        mergeFieldList(parent.Metadata, child.Metadata),
	}
	if len(child.Lifecycle) > 0 {
		merged.Lifecycle = append([]LifecycleSegment(nil), child.Lifecycle...)
	} else {
		merged.Lifecycle = append([]LifecycleSegment(nil), parent.Lifecycle...)
	}
	return merged
}
