package schedule

import (
	"sort"
	"strconv"
	"strings"
)

// Fingerprint derives a content-based series key from an occurrence:
// title, category, asset, interval and unit. It is only defined for
// occurrences carrying a recurrence descriptor; for everything else it
// returns the empty string, meaning "not part of any series".
//
// The fingerprint is a degraded-mode recovery key for legacy data whose
// SeriesID is missing or inconsistent. Two genuinely distinct series with
// identical descriptive fields and schedule would collide; SeriesID stays
// authoritative whenever it is present.
func Fingerprint(o Occurrence) string {
	if o.Recurring == nil {
		return ""
	}
	return strings.Join([]string{
		o.Title,
		o.Category,
		o.Asset,
		strconv.Itoa(o.Recurring.Interval),
		string(o.Recurring.Unit),
	}, "|")
}

// SameSeries reports whether a and b belong to the same logical series:
// both recurring, and either their series ids match (when both carry one)
// or their fingerprints match.
func SameSeries(a, b Occurrence) bool {
	if a.Recurring == nil || b.Recurring == nil {
		return false
	}
	if a.Recurring.SeriesID != "" && a.Recurring.SeriesID == b.Recurring.SeriesID {
		return true
	}
	return Fingerprint(a) == Fingerprint(b)
}

// CollectSeriesMembers returns every occurrence in all that belongs to
// target's series, sorted by date ascending with index as the tie-break.
// Resolution order:
//
//  1. records sharing target's SeriesID, when it has one;
//  2. if that yields nothing, records sharing target's fingerprint;
//  3. a reconciliation pass merging in fingerprint-matching records whose
//     calendar day coincides with a day already in the result, which
//     catches series fragments that drifted apart under the same identity.
//
// A target without a recurrence descriptor yields nil.
func CollectSeriesMembers(all []Occurrence, target Occurrence) []Occurrence {
	if target.Recurring == nil {
		return nil
	}

	fp := Fingerprint(target)
	var members []Occurrence
	seen := make(map[string]bool)

	if sid := target.Recurring.SeriesID; sid != "" {
		for _, o := range all {
			if o.Recurring != nil && o.Recurring.SeriesID == sid {
				members = append(members, o)
				seen[o.ID] = true
			}
		}
	}
	if len(members) == 0 {
		for _, o := range all {
			if Fingerprint(o) == fp {
				members = append(members, o)
				seen[o.ID] = true
			}
		}
	}

	days := make(map[string]bool, len(members))
	for _, m := range members {
		days[m.Date.Format("2006-01-02")] = true
	}
	for _, o := range all {
		if seen[o.ID] || Fingerprint(o) != fp {
			continue
		}
		if days[o.Date.Format("2006-01-02")] {
			members = append(members, o)
			seen[o.ID] = true
		}
	}

	sort.SliceStable(members, func(i, j int) bool {
		if !members[i].Date.Equal(members[j].Date) {
			return members[i].Date.Before(members[j].Date)
		}
		return members[i].Recurring.Index < members[j].Recurring.Index
	})
	return members
}
