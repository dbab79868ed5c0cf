package semantic

import (
	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
)

// checkTemporalInvariants is Pass B's second sweep: lifecycle interval
// ordering/overlap, and override-period overlap within a single
// OUTLET_REF's timeline.
func (a *Analyzer) checkTemporalInvariants() {
	for _, f := range a.prog.Files {
		for _, stmt := range f.Statements {
			fam, ok := stmt.(*ast.Family)
			if !ok {
				continue
			}
			for _, o := range fam.Outlets {
				a.checkLifecycle(o.Lifecycle)
				a.checkHistoricalTitles(o.Identity)
			}
			for _, ref := range fam.OutletRefs {
				a.checkOverridePeriods(ref)
			}
			for _, dl := range fam.DiachronicLinks {
				a.checkDateRangeValue(dl.EventDate, "diachronic link %q event_date", dl.Name.Text)
			}
			for _, sl := range fam.SynchronousLinks {
				a.checkDateRangeValue(sl.Period, "synchronous link %q period", sl.Name.Text)
			}
		}
	}
}

// checkDateRangeValue flags from > to on a Value that may hold a DateRange.
// event_date and period accept a bare DateLit too, which has no range to
// invert.
func (a *Analyzer) checkDateRangeValue(v ast.Value, format string, name string) {
	dr, ok := v.(*ast.DateRange)
	if !ok {
		return
	}
	if !isOpenEnd(dr.To) && dateText(dr.From) > dateText(dr.To) {
		a.errs.Errorf(dr.Sp, diag.KindInvertedDateRange, format+" ends before it starts", name)
	}
}

func (a *Analyzer) checkHistoricalTitles(id *ast.IdentityBlock) {
	if id == nil {
		return
	}
	for _, ht := range id.HistoricalTitles {
		if ht.Period == nil {
			continue
		}
		if !isOpenEnd(ht.Period.To) && dateText(ht.Period.From) > dateText(ht.Period.To) {
			a.errs.Errorf(ht.Period.Sp, diag.KindInvertedDateRange, "historical title %q period ends before it starts", ht.Title)
		}
	}
}

func dateText(v ast.Value) string {
	if d, ok := v.(*ast.DateLit); ok {
		return d.Text
	}
	return ""
}

func isOpenEnd(v ast.Value) bool {
	if v == nil {
		return true
	}
	d, ok := v.(*ast.DateLit)
	return ok && d.Current
}

// overlaps reports whether [from1,to1) and [from2,to2) share any instant,
// treating an open or CURRENT end as unbounded.
func overlaps(from1, to1, from2, to2 ast.Value) bool {
	s1, s2 := dateText(from1), dateText(from2)
	open1, open2 := isOpenEnd(to1), isOpenEnd(to2)
	e1, e2 := dateText(to1), dateText(to2)
	cond1 := open2 || s1 < e2
	cond2 := open1 || s2 < e1
	return cond1 && cond2
}

func (a *Analyzer) checkLifecycle(lb *ast.LifecycleBlock) {
	if lb == nil {
		return
	}
	for _, iv := range lb.Intervals {
		if !isOpenEnd(iv.To) && dateText(iv.From) > dateText(iv.To) {
			a.errs.Errorf(iv.Sp, diag.KindInvertedDateRange, "lifecycle interval %q ends before it starts", iv.Status)
		}
	}
	for i := 0; i < len(lb.Intervals); i++ {
		for j := i + 1; j < len(lb.Intervals); j++ {
			x, y := lb.Intervals[i], lb.Intervals[j]
			if overlaps(x.From, x.To, y.From, y.To) {
				a.errs.Errorf(y.Sp, diag.KindOverlappingLifecycle,
					"lifecycle interval %q overlaps interval %q", y.Status, x.Status)
			}
		}
	}
}

func (a *Analyzer) checkOverridePeriods(ref *ast.OutletRef) {
	if !a.warnOverlap {
		return
	}
	var periods []*ast.ForPeriod
	for _, ov := range ref.Overrides {
		periods = append(periods, ov.Periods...)
	}
	for i := 0; i < len(periods); i++ {
		for j := i + 1; j < len(periods); j++ {
			x, y := periods[i], periods[j]
			if overlaps(x.From, x.To, y.From, y.To) {
				a.errs.Warnf(y.Sp, diag.KindOverlappingOverridePeriod,
					"FOR_PERIOD override overlaps another override on the same outlet_ref")
			}
		}
	}
}

// checkIntegrity is Pass B's third sweep: cross-record consistency that
// doesn't fit the name-resolution or temporal shape.
func (a *Analyzer) checkIntegrity() {
	for _, f := range a.prog.Files {
		for _, stmt := range f.Statements {
			switch s := stmt.(type) {
			case *ast.Family:
				for _, db := range s.DataBlocks {
					a.checkDuplicateMetrics(db)
				}
			case *ast.DataBlock:
				a.checkDuplicateMetrics(s)
			}
		}
	}
}

func (a *Analyzer) checkDuplicateMetrics(db *ast.DataBlock) {
	for _, y := range db.Years {
		seen := map[string]bool{}
		for _, m := range y.Metrics {
			if seen[m.Name] {
				a.errs.Errorf(m.Sp, diag.KindDuplicateMetric, "duplicate metric %q in year %d", m.Name, y.Year)
			}
			seen[m.Name] = true
		}
	}
}
