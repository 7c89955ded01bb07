package schedule

// DedupeSeries collapses accidental duplicate occurrences that share
// reference's fingerprint and calendar date, keeping exactly one per
// date. A duplicate whose series id matches the reference's wins over one
// that doesn't; ties go to the record appearing later in the input, on
// the assumption that later means more recently written. Records outside
// the fingerprint, or unique within it, pass through unchanged.
//
// This is a corrective pass for merges and syncs that can reintroduce
// the same dates from two divergent series fragments. It returns the
// surviving list in input order plus the ids that were dropped.
func DedupeSeries(all []Occurrence, reference Occurrence) (kept []Occurrence, dropped []string) {
	fp := Fingerprint(reference)
	if fp == "" {
		return append([]Occurrence(nil), all...), nil
	}
	refSID := reference.Recurring.SeriesID

	// Pick the winner for each calendar day within the fingerprint.
	winner := make(map[string]int) // day -> index in all
	for i, o := range all {
		if Fingerprint(o) != fp {
			continue
		}
		day := o.Date.Format("2006-01-02")
		prev, ok := winner[day]
		if !ok || score(o, refSID) >= score(all[prev], refSID) {
			winner[day] = i
		}
	}

	kept = make([]Occurrence, 0, len(all))
	for i, o := range all {
		if Fingerprint(o) == fp && winner[o.Date.Format("2006-01-02")] != i {
			dropped = append(dropped, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	return kept, dropped
}

func score(o Occurrence, refSID string) int {
	if refSID != "" && o.Recurring.SeriesID == refSID {
		return 2
	}
	return 0
}
