package schedule

// Limits bounds every occurrence-generating loop in the engine. The caps
// are runaway protection against degenerate input, not business rules;
// hitting one truncates generation and flags the result instead of
// erroring.
type Limits struct {
	// MaxOccurrences caps how many dates a single generation request may
	// produce.
	MaxOccurrences int
	// GuardLimit caps how many occurrences one rolling-extension pass may
	// append to a single series.
	GuardLimit int
}

// DefaultLimits provides sensible defaults for production use.
func DefaultLimits() Limits {
	return Limits{
		MaxOccurrences: 800,
		GuardLimit:     800,
	}
}

// normalized returns l with zero or negative caps replaced by defaults,
// so a zero-value Limits is always usable.
func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.MaxOccurrences < 1 {
		l.MaxOccurrences = d.MaxOccurrences
	}
	if l.GuardLimit < 1 {
		l.GuardLimit = d.GuardLimit
	}
	return l
}
