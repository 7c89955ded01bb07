package schedule

import (
	"fmt"
	"sort"
	"time"
)

// ExtendResult is the outcome of one rolling-extension pass.
type ExtendResult struct {
	// Occurrences is the full occurrence list after extension; untouched
	// records pass through unchanged.
	Occurrences []Occurrence
	// Upserts holds every record that is new or was patched, for callers
	// that persist incrementally.
	Upserts []Occurrence
	// Added is the number of newly appended occurrences.
	Added int
	// Changed reports whether the pass modified anything at all.
	Changed bool
	// Truncated is set when any series hit Limits.GuardLimit before
	// reaching the horizon.
	Truncated bool
}

// ExtendAutoSeries appends occurrences to every auto-policy series that
// does not yet reach horizon, and patches the Total of all members of the
// extended series. The input is never mutated; the pass is idempotent, so
// running it again against its own output with the same horizon changes
// nothing.
//
// New dates are computed by re-stepping from the series' first
// occurrence, not from its last, which keeps month-end alignment stable
// over years of repeated extension instead of drifting on each pass.
//
// Auto occurrences without a SeriesID cannot be grouped and pass through
// untouched; fingerprint recovery for those belongs to the edit path.
func ExtendAutoSeries(all []Occurrence, horizon time.Time, limits Limits) ExtendResult {
	limits = limits.normalized()

	groups := make(map[string][]Occurrence)
	for _, o := range all {
		if o.Recurring == nil || o.Recurring.EndPolicy != EndAuto || o.Recurring.SeriesID == "" {
			continue
		}
		groups[o.Recurring.SeriesID] = append(groups[o.Recurring.SeriesID], o)
	}

	res := ExtendResult{}
	patched := make(map[string]Occurrence) // id -> updated record
	var appended []Occurrence

	seriesIDs := make([]string, 0, len(groups))
	for sid := range groups {
		seriesIDs = append(seriesIDs, sid)
	}
	sort.Strings(seriesIDs)

	for _, sid := range seriesIDs {
		members := groups[sid]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Recurring.Index < members[j].Recurring.Index
		})
		first := members[0]
		last := members[len(members)-1]
		if !last.Date.Before(horizon) {
			continue // already covered out to the horizon
		}

		interval := last.Recurring.Interval
		unit := last.Recurring.Unit
		lastIndex := last.Recurring.Index

		var fresh []Occurrence
		for step := lastIndex; ; step++ {
			d := OccurrenceDate(first.Date, step, interval, unit)
			if d.After(horizon) {
				break
			}
			if len(fresh) == limits.GuardLimit {
				res.Truncated = true
				break
			}
			clone := last.Clone()
			clone.Date = d
			clone.Done = false
			clone.Skipped = false
			clone.Attachments = nil
			clone.Recurring.Index = step + 1
			clone.ID = fmt.Sprintf("%s_%d", sid, step+1)
			fresh = append(fresh, clone)
		}
		if len(fresh) == 0 {
			continue
		}

		newTotal := lastIndex + len(fresh)
		for _, m := range members {
			up := m.Clone()
			up.Recurring.Total = newTotal
			patched[m.ID] = up
		}
		for i := range fresh {
			fresh[i].Recurring.Total = newTotal
		}
		appended = append(appended, fresh...)
		res.Added += len(fresh)
	}

	out := make([]Occurrence, 0, len(all)+len(appended))
	for _, o := range all {
		if up, ok := patched[o.ID]; ok {
			out = append(out, up)
			res.Upserts = append(res.Upserts, up)
			continue
		}
		out = append(out, o)
	}
	out = append(out, appended...)
	res.Upserts = append(res.Upserts, appended...)
	res.Occurrences = out
	res.Changed = res.Added > 0
	return res
}
