package schedule

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// EditParams carries the context an edit needs beyond the form itself.
type EditParams struct {
	// Now anchors the auto-policy horizon when the edit regenerates
	// occurrences.
	Now time.Time
	// Limits bounds regeneration loops; zero value means defaults.
	Limits Limits
	// NewSeriesID is used when the edit spawns a fresh series (a single
	// occurrence converted to a recurring one) or when the edited series
	// has no usable id. When empty, an id derived from the target is used.
	NewSeriesID string
}

// EditResult is the outcome of applying an edit.
type EditResult struct {
	// Occurrences is the full occurrence list after the edit.
	Occurrences []Occurrence
	// Upserts holds every record that is new or was modified.
	Upserts []Occurrence
	// Removed lists ids present in the input but absent from the output.
	Removed []string
	// Truncated is set when regeneration hit Limits.MaxOccurrences.
	Truncated bool
}

// ApplyEdit computes the replacement occurrence set for editing target
// with the given form and scope. The input list is never mutated.
//
//   - ScopeSingle converts only the target: to a one-off with the edited
//     values, or to a brand-new series when the form enables recurrence.
//   - ScopeFuture splits the series at the target. Earlier members keep
//     everything but their Total; the target and later members are
//     regenerated from the form. When the form disables recurrence, only
//     the target survives, as a one-off at its original date — later
//     members are dropped outright, matching the historical behavior.
//   - ScopeAll either collapses the series to one-offs (recurrence
//     disabled), patches the non-schedule fields of every member in place
//     (schedule unchanged), or discards and fully regenerates the series
//     (schedule changed).
//
// A target without a recurrence descriptor is a plain single-record
// update under any scope.
func ApplyEdit(all []Occurrence, target Occurrence, form Form, scope EditScope, p EditParams) EditResult {
	p.Limits = p.Limits.normalized()
	if target.Recurring == nil {
		scope = ScopeSingle
	}

	switch scope {
	case ScopeFuture:
		return editFuture(all, target, form, p)
	case ScopeAll:
		return editAll(all, target, form, p)
	default:
		return editSingle(all, target, form, p)
	}
}

func editSingle(all []Occurrence, target Occurrence, form Form, p EditParams) EditResult {
	if !form.Recurring {
		up := target.Clone()
		form.Apply(&up)
		up.Date = form.StartDate
		up.Recurring = nil
		return rebuild(all, map[string]Occurrence{target.ID: up}, nil, nil, false)
	}

	// The target becomes the first occurrence of a fresh series; the rest
	// of its old series, if any, is untouched.
	sid := p.freshSeriesID(target)
	gen := generateForm(form, p.Now, p.Limits)
	series := buildSeries(target, form, sid, gen.Dates, 1)
	series[0].ID = target.ID // conversion in place, not delete-and-create
	series[0].Attachments = target.Clone().Attachments
	series[0].Done = target.Done
	series[0].Skipped = target.Skipped

	replaced := map[string]Occurrence{target.ID: series[0]}
	return rebuild(all, replaced, series[1:], nil, gen.Truncated)
}

func editFuture(all []Occurrence, target Occurrence, form Form, p EditParams) EditResult {
	members := CollectSeriesMembers(all, target)
	if len(members) == 0 {
		return editSingle(all, target, form, p)
	}

	cut := target.Recurring.Index
	var past, future []Occurrence
	for _, m := range members {
		if m.Recurring.Index < cut {
			past = append(past, m)
		} else {
			future = append(future, m)
		}
	}

	if !form.Recurring {
		// Recurrence is being switched off: the target survives as a
		// one-off at its original date, later members are dropped.
		up := target.Clone()
		form.Apply(&up)
		up.Recurring = nil

		replaced := map[string]Occurrence{target.ID: up}
		var removed []string
		for _, m := range future {
			if m.ID != target.ID {
				removed = append(removed, m.ID)
			}
		}
		patchTotals(past, len(past), replaced)
		return rebuild(all, replaced, nil, removed, false)
	}

	sid := p.seriesID(target)
	gen := generateForm(form, p.Now, p.Limits)
	fresh := buildSeries(target, form, sid, gen.Dates, cut)
	if len(fresh) > 0 {
		fresh[0].ID = target.ID
		fresh[0].Attachments = target.Clone().Attachments
		fresh[0].Done = target.Done
		fresh[0].Skipped = target.Skipped
	}
	newTotal := len(past) + len(fresh)
	for i := range fresh {
		fresh[i].Recurring.Total = newTotal
	}

	replaced := make(map[string]Occurrence)
	patchTotals(past, newTotal, replaced)

	var appended []Occurrence
	keptIDs := make(map[string]bool, len(fresh))
	for _, f := range fresh {
		keptIDs[f.ID] = true
		if containsID(all, f.ID) {
			replaced[f.ID] = f
		} else {
			appended = append(appended, f)
		}
	}
	var removed []string
	for _, m := range future {
		if !keptIDs[m.ID] {
			removed = append(removed, m.ID)
		}
	}
	return rebuild(all, replaced, appended, removed, gen.Truncated)
}

func editAll(all []Occurrence, target Occurrence, form Form, p EditParams) EditResult {
	members := CollectSeriesMembers(all, target)
	if len(members) == 0 {
		return editSingle(all, target, form, p)
	}

	replaced := make(map[string]Occurrence)

	if !form.Recurring {
		// Collapse the series: every member turns into an independent
		// one-off keeping its own date.
		for _, m := range members {
			up := m.Clone()
			form.Apply(&up)
			up.Recurring = nil
			replaced[m.ID] = up
		}
		return rebuild(all, replaced, nil, nil, false)
	}

	if !scheduleChanged(target, form) {
		// Non-schedule edit: patch values uniformly, keep each member's
		// own date, index and recurrence bookkeeping.
		for _, m := range members {
			up := m.Clone()
			form.Apply(&up)
			replaced[m.ID] = up
		}
		return rebuild(all, replaced, nil, nil, false)
	}

	// Schedule changed: discard all members and regenerate from the form
	// under the same series id.
	sid := p.seriesID(target)
	gen := generateForm(form, p.Now, p.Limits)
	fresh := buildSeries(target, form, sid, gen.Dates, 1)

	var appended []Occurrence
	keptIDs := make(map[string]bool, len(fresh))
	for _, f := range fresh {
		keptIDs[f.ID] = true
		if containsID(all, f.ID) {
			replaced[f.ID] = f
		} else {
			appended = append(appended, f)
		}
	}
	var removed []string
	for _, m := range members {
		if !keptIDs[m.ID] {
			removed = append(removed, m.ID)
		}
	}
	return rebuild(all, replaced, appended, removed, gen.Truncated)
}

// scheduleChanged reports whether the form's schedule differs from the
// target's current one: start date, interval, unit, end policy, end date
// or count.
func scheduleChanged(target Occurrence, form Form) bool {
	r := target.Recurring
	if !SameDay(target.Date, form.StartDate) {
		return true
	}
	interval := form.Interval
	if interval < 1 {
		interval = 1
	}
	if interval != r.Interval || form.Unit != r.Unit || form.EndPolicy != r.EndPolicy {
		return true
	}
	switch form.EndPolicy {
	case EndDate:
		a, aok := r.EndDate.Get()
		b, bok := form.EndDate.Get()
		if aok != bok {
			return true
		}
		if aok && !SameDay(a, b) {
			return true
		}
	case EndCount:
		if form.Count != r.Total {
			return true
		}
	}
	return false
}

// buildSeries materializes occurrence records for the given dates, based
// on the target as template with the form's values applied. Indexes start
// at firstIndex; ids follow the "<seriesId>_<index>" convention. Records
// come out fresh: not done, not skipped, no attachments.
func buildSeries(target Occurrence, form Form, sid string, dates []time.Time, firstIndex int) []Occurrence {
	interval := form.Interval
	if interval < 1 {
		interval = 1
	}
	endDate := form.EndDate
	if form.EndPolicy != EndDate {
		// drop a stale end date outside the date policy
		endDate = mo.None[time.Time]()
	}

	out := make([]Occurrence, 0, len(dates))
	for i, d := range dates {
		o := target.Clone()
		form.Apply(&o)
		o.Date = d
		o.Done = false
		o.Skipped = false
		o.Attachments = nil
		idx := firstIndex + i
		o.ID = fmt.Sprintf("%s_%d", sid, idx)
		o.Recurring = &Recurrence{
			SeriesID:  sid,
			Interval:  interval,
			Unit:      form.Unit,
			Index:     idx,
			Total:     len(dates),
			EndPolicy: form.EndPolicy,
			EndDate:   endDate,
		}
		out = append(out, o)
	}
	return out
}

func patchTotals(members []Occurrence, total int, replaced map[string]Occurrence) {
	for _, m := range members {
		up := m.Clone()
		up.Recurring.Total = total
		replaced[m.ID] = up
	}
}

// rebuild assembles the output list: replaced records swap in place,
// removed ids drop out, appended records go at the end.
func rebuild(all []Occurrence, replaced map[string]Occurrence, appended []Occurrence, removed []string, truncated bool) EditResult {
	res := EditResult{Removed: removed, Truncated: truncated}
	drop := make(map[string]bool, len(removed))
	for _, id := range removed {
		drop[id] = true
	}
	out := make([]Occurrence, 0, len(all)+len(appended))
	for _, o := range all {
		if drop[o.ID] {
			continue
		}
		if up, ok := replaced[o.ID]; ok {
			out = append(out, up)
			res.Upserts = append(res.Upserts, up)
			continue
		}
		out = append(out, o)
	}
	out = append(out, appended...)
	res.Upserts = append(res.Upserts, appended...)
	res.Occurrences = out
	return res
}

func containsID(all []Occurrence, id string) bool {
	for _, o := range all {
		if o.ID == id {
			return true
		}
	}
	return false
}

// seriesID preserves the target's series id for a regeneration, minting
// one only when the target never had a usable id.
func (p EditParams) seriesID(target Occurrence) string {
	if target.Recurring != nil && target.Recurring.SeriesID != "" {
		return target.Recurring.SeriesID
	}
	return p.freshSeriesID(target)
}

// freshSeriesID is the id for a brand-new series spawned by an edit.
func (p EditParams) freshSeriesID(target Occurrence) string {
	if p.NewSeriesID != "" {
		return p.NewSeriesID
	}
	return "series_" + target.ID
}
