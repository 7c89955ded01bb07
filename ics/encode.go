// Package ics renders an occurrence list as an iCalendar VTODO feed so
// deadline data can be consumed by calendar clients. One-off occurrences
// become plain VTODOs; each series is emitted once, as a master VTODO on
// its first occurrence carrying the series' RRULE.
package ics

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/max64180/lifetrack/schedule"
)

const productID = "-//lifetrack//lifetrack 1.0//EN"

// Calendar builds the VCALENDAR component for the given occurrences.
func Calendar(occurrences []schedule.Occurrence) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	// Series masters: lowest-index member per series id.
	masters := make(map[string]schedule.Occurrence)
	var seriesIDs []string
	for _, o := range occurrences {
		if o.Recurring == nil || o.Recurring.SeriesID == "" {
			continue
		}
		sid := o.Recurring.SeriesID
		m, ok := masters[sid]
		if !ok {
			seriesIDs = append(seriesIDs, sid)
		}
		if !ok || o.Recurring.Index < m.Recurring.Index {
			masters[sid] = o
		}
	}
	sort.Strings(seriesIDs)

	for _, o := range occurrences {
		if o.Recurring != nil && o.Recurring.SeriesID != "" {
			continue
		}
		cal.Children = append(cal.Children, todoComponent(o, ""))
	}
	for _, sid := range seriesIDs {
		m := masters[sid]
		rule, err := seriesRule(m)
		if err != nil {
			return nil, fmt.Errorf("failed to build RRULE for series %s: %w", sid, err)
		}
		cal.Children = append(cal.Children, todoComponent(m, rule))
	}
	return cal, nil
}

// Encode writes the occurrences to w in iCalendar format.
func Encode(occurrences []schedule.Occurrence, w io.Writer) error {
	cal, err := Calendar(occurrences)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func todoComponent(o schedule.Occurrence, rule string) *ical.Component {
	todo := ical.NewComponent(ical.CompToDo)
	uid := o.ID
	if o.Recurring != nil && o.Recurring.SeriesID != "" {
		uid = o.Recurring.SeriesID
	}
	todo.Props.SetText(ical.PropUID, uid)
	todo.Props.SetText(ical.PropSummary, o.Title)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, o.Date)
	todo.Props.SetDateTime(ical.PropDue, o.Date)
	if o.Category != "" {
		todo.Props.SetText(ical.PropCategories, o.Category)
	}
	if o.Notes != "" {
		todo.Props.SetText(ical.PropDescription, o.Notes)
	}
	switch {
	case o.Skipped:
		todo.Props.SetText(ical.PropStatus, "CANCELLED")
	case o.Done:
		todo.Props.SetText(ical.PropStatus, "COMPLETED")
	default:
		todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")
	}
	if amount, ok := o.Amount.Get(); ok {
		todo.Props.SetText("X-LIFETRACK-AMOUNT", strconv.FormatFloat(amount, 'f', -1, 64))
	}
	if rule != "" {
		todo.Props.SetText(ical.PropRecurrenceRule, rule)
	}
	return todo
}

// seriesRule translates a series' fixed-interval schedule into an RRULE
// string. Month steps clamp to the month end in the engine while RRULE
// BYMONTHDAY would skip short months, so the rule is an interoperability
// approximation, not the engine's source of truth.
func seriesRule(master schedule.Occurrence) (string, error) {
	r := master.Recurring
	opt := rrule.ROption{Interval: r.Interval}
	switch r.Unit {
	case schedule.UnitDay:
		opt.Freq = rrule.DAILY
	case schedule.UnitWeek:
		opt.Freq = rrule.WEEKLY
	case schedule.UnitMonth:
		opt.Freq = rrule.MONTHLY
	case schedule.UnitYear:
		opt.Freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("unsupported unit %q", r.Unit)
	}
	switch r.EndPolicy {
	case schedule.EndCount:
		opt.Count = r.Total
	case schedule.EndDate:
		if until, ok := r.EndDate.Get(); ok {
			opt.Until = until
		}
	}
	// Validate through the rrule parser before emitting.
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}
