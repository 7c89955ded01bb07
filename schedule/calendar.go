package schedule

import "time"

// OccurrenceDate computes the date stepIndex*interval units after anchor,
// preserving anchor's time-of-day and location. Month and year steps use
// integer month arithmetic with a month-end clamp, so a series anchored on
// Jan 31 lands on Feb 28/29 rather than overflowing into March. The
// standard AddDate normalization would overflow, which is why it is only
// used for day and week steps.
func OccurrenceDate(anchor time.Time, stepIndex, interval int, unit Unit) time.Time {
	if interval < 1 {
		interval = 1
	}
	steps := stepIndex * interval

	switch unit {
	case UnitDay:
		return anchor.AddDate(0, 0, steps)
	case UnitWeek:
		return anchor.AddDate(0, 0, 7*steps)
	case UnitYear:
		return addMonthsClamped(anchor, 12*steps)
	default: // UnitMonth, also the fallback for an unknown unit
		return addMonthsClamped(anchor, steps)
	}
}

func addMonthsClamped(anchor time.Time, months int) time.Time {
	total := anchor.Year()*12 + int(anchor.Month()) - 1 + months
	year := total / 12
	month := time.Month(total%12 + 1)
	day := anchor.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(),
		anchor.Location())
}

// daysIn returns the number of days in the given month; day 0 of the
// following month normalizes to its last day.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AutoHorizon returns the rolling horizon for auto-policy series: the
// last instant of the calendar year after now's. It is recomputed on
// every call, which is what keeps auto series a moving target that needs
// periodic re-extension.
func AutoHorizon(now time.Time) time.Time {
	return time.Date(now.Year()+1, time.December, 31, 23, 59, 59, 999_000_000, now.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
