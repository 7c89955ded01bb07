package schedule

import (
	"time"

	"github.com/samber/mo"
)

// GenerateResult is the outcome of a date-generation request.
type GenerateResult struct {
	Dates []time.Time
	// Truncated is set when generation stopped at Limits.MaxOccurrences
	// rather than at the schedule's own end condition. Callers should
	// treat it as a soft warning about degenerate input, not an error.
	Truncated bool
}

// GenerateDates expands a schedule into its occurrence dates, bounded by
// the end policy:
//
//   - EndCount: exactly count dates (capped by limits).
//   - EndDate: dates while they do not exceed endDate; an end date before
//     start is clamped to start.
//   - EndAuto: like EndDate with AutoHorizon(now) as the end.
//
// The function is total: interval and count are clamped to a minimum of 1,
// and a well-formed request never yields an empty schedule — if even the
// first occurrence exceeds the end date, that single occurrence is still
// emitted.
func GenerateDates(start time.Time, interval int, unit Unit, policy EndPolicy,
	endDate mo.Option[time.Time], count int, now time.Time, limits Limits) GenerateResult {

	limits = limits.normalized()
	if interval < 1 {
		interval = 1
	}

	if policy == EndCount {
		if count < 1 {
			count = 1
		}
		n := count
		truncated := false
		if n > limits.MaxOccurrences {
			n = limits.MaxOccurrences
			truncated = true
		}
		dates := make([]time.Time, 0, n)
		for i := 0; i < n; i++ {
			dates = append(dates, OccurrenceDate(start, i, interval, unit))
		}
		return GenerateResult{Dates: dates, Truncated: truncated}
	}

	end := AutoHorizon(now)
	if policy == EndDate {
		end = endDate.OrElse(start)
	}
	if end.Before(start) {
		end = start
	}

	var res GenerateResult
	for i := 0; ; i++ {
		d := OccurrenceDate(start, i, interval, unit)
		if d.After(end) && i > 0 {
			break
		}
		if len(res.Dates) == limits.MaxOccurrences {
			res.Truncated = true
			break
		}
		res.Dates = append(res.Dates, d)
	}
	return res
}

// generateForm expands a recurring form into its occurrence dates.
func generateForm(f Form, now time.Time, limits Limits) GenerateResult {
	return GenerateDates(f.StartDate, f.Interval, f.Unit, f.EndPolicy, f.EndDate, f.Count, now, limits)
}
