package schedule

import (
	"time"

	"github.com/samber/mo"
)

// Unit is the calendar step unit of a recurrence schedule.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Valid reports whether u is one of the supported step units.
func (u Unit) Valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

// EndPolicy determines when a series stops generating new occurrences.
type EndPolicy string

const (
	// EndAuto extends the series indefinitely, capped at the rolling
	// end-of-next-year horizon recomputed on every sync.
	EndAuto EndPolicy = "auto"
	// EndCount ends the series after a fixed number of occurrences.
	EndCount EndPolicy = "count"
	// EndDate ends the series at an explicit date.
	EndDate EndPolicy = "date"
)

// Valid reports whether p is one of the supported end policies.
func (p EndPolicy) Valid() bool {
	switch p {
	case EndAuto, EndCount, EndDate:
		return true
	}
	return false
}

// EditScope is the breadth of a series edit.
type EditScope string

const (
	// ScopeSingle edits only the targeted occurrence.
	ScopeSingle EditScope = "single"
	// ScopeFuture edits the targeted occurrence and all later members,
	// splitting the series at the target.
	ScopeFuture EditScope = "future"
	// ScopeAll edits every member of the series.
	ScopeAll EditScope = "all"
)

// Recurrence describes an occurrence's membership in a repeating series.
type Recurrence struct {
	// SeriesID groups occurrences of the same series. May be empty on
	// legacy data, in which case content fingerprinting is the recovery
	// path (see CollectSeriesMembers).
	SeriesID string `json:"seriesId,omitempty"`
	// Interval is the positive step count between occurrences.
	Interval int `json:"interval"`
	// Unit is the calendar unit the interval is counted in.
	Unit Unit `json:"unit"`
	// Index is the 1-based position of this occurrence within its series.
	Index int `json:"index"`
	// Total is the series' currently-known occurrence count. It is
	// patched on every member whenever the series grows or shrinks.
	Total int `json:"total"`
	// EndPolicy determines how the series ends.
	EndPolicy EndPolicy `json:"endPolicy"`
	// EndDate is populated only when EndPolicy is EndDate.
	EndDate mo.Option[time.Time] `json:"endDate"`
}

// Occurrence is one concrete dated instance of an obligation, recurring
// or not.
type Occurrence struct {
	// ID is unique across all occurrences. Series-generated items use
	// the "<seriesId>_<index>" convention, but any unique token works.
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Asset    string `json:"asset,omitempty"`
	// Date is the obligation's due date at a fixed local midnight.
	Date time.Time `json:"date"`
	// Amount is the budgeted amount; None means the estimate is missing.
	Amount mo.Option[float64] `json:"amount"`
	Notes  string             `json:"notes,omitempty"`

	Done    bool `json:"done"`
	Skipped bool `json:"skipped"`

	Mandatory bool `json:"mandatory,omitempty"`
	Essential bool `json:"essential,omitempty"`
	AutoPay   bool `json:"autoPay,omitempty"`

	// Attachments holds opaque document references. The engine never
	// interprets them; it only clears them on freshly generated clones.
	Attachments []string `json:"attachments,omitempty"`

	// Recurring is nil for one-off occurrences.
	Recurring *Recurrence `json:"recurring,omitempty"`
}

// IsRecurring reports whether o belongs to a series.
func (o Occurrence) IsRecurring() bool { return o.Recurring != nil }

// Clone returns a deep copy of o, so mutating the copy never aliases
// the original's recurrence descriptor or attachment list.
func (o Occurrence) Clone() Occurrence {
	c := o
	if o.Recurring != nil {
		r := *o.Recurring
		c.Recurring = &r
	}
	if o.Attachments != nil {
		c.Attachments = append([]string(nil), o.Attachments...)
	}
	return c
}

// MarkSkipped flags o as skipped. Skipping implies completion and a
// zeroed amount.
func (o *Occurrence) MarkSkipped() {
	o.Skipped = true
	o.Done = true
	o.Amount = mo.Some(0.0)
}

// Form carries the user-supplied parameters for a new or edited
// occurrence, as produced by the UI collaborator.
type Form struct {
	Title    string
	Category string
	Asset    string
	Amount   mo.Option[float64]
	Notes    string

	Mandatory bool
	Essential bool
	AutoPay   bool

	// StartDate is the (first) due date.
	StartDate time.Time

	// Recurring enables the schedule fields below.
	Recurring bool
	Interval  int
	Unit      Unit
	EndPolicy EndPolicy
	EndDate   mo.Option[time.Time]
	Count     int
}

// Apply copies the non-schedule field values of f onto o. Date,
// identity and recurrence bookkeeping stay with the caller.
func (f Form) Apply(o *Occurrence) {
	o.Title = f.Title
	o.Category = f.Category
	o.Asset = f.Asset
	o.Amount = f.Amount
	o.Notes = f.Notes
	o.Mandatory = f.Mandatory
	o.Essential = f.Essential
	o.AutoPay = f.AutoPay
}
