// Package tracker ties the scheduling engine to a storage backend: it
// runs the load/extend/persist sync cycle, creates series from forms,
// applies scoped edits, and handles deletion.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/max64180/lifetrack/ics"
	"github.com/max64180/lifetrack/schedule"
	"github.com/max64180/lifetrack/storage"
)

// Config holds configuration options for the tracker
type Config struct {
	// Limits bounds every occurrence-generating loop; zero value means
	// schedule.DefaultLimits.
	Limits schedule.Limits
	// Clock supplies "now" for the rolling horizon; nil means time.Now.
	// Tests inject a fixed clock here.
	Clock func() time.Time
}

// DefaultConfig provides sensible defaults for production use
func DefaultConfig() Config {
	return Config{
		Limits: schedule.DefaultLimits(),
		Clock:  time.Now,
	}
}

// Tracker orchestrates the scheduling engine against a storage backend.
type Tracker struct {
	store  storage.Storage
	logger *slog.Logger
	limits schedule.Limits
	now    func() time.Time
}

// New creates a tracker on top of the given storage. A nil logger falls
// back to slog.Default().
func New(store storage.Storage, logger *slog.Logger, cfg Config) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Tracker{
		store:  store,
		logger: logger,
		limits: cfg.Limits,
		now:    cfg.Clock,
	}
}

// NewSeriesID mints an opaque series identifier.
func NewSeriesID() string {
	return "series_" + uuid.NewString()
}

// SyncResult reports what one sync cycle did.
type SyncResult struct {
	Added   int
	Changed bool
}

// Sync runs the rolling-extension pass: load everything, extend every
// under-covered auto series out to the end-of-next-year horizon, and
// persist the records that changed. Safe to run on every application
// load; once coverage is sufficient it is a no-op.
func (t *Tracker) Sync(ctx context.Context) (SyncResult, error) {
	all, err := t.store.LoadAll(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to load occurrences: %w", err)
	}

	horizon := schedule.AutoHorizon(t.now())
	res := schedule.ExtendAutoSeries(all, horizon, t.limits)
	if res.Truncated {
		t.logger.Warn("rolling extension hit guard limit",
			"horizon", horizon)
	}
	if !res.Changed {
		return SyncResult{}, nil
	}

	if err := t.store.SaveBatch(ctx, res.Upserts); err != nil {
		return SyncResult{}, fmt.Errorf("failed to persist extension: %w", err)
	}
	t.logger.Info("extended auto series",
		"added", res.Added,
		"horizon", horizon)
	return SyncResult{Added: res.Added, Changed: true}, nil
}

// CreateSeries expands a form into occurrence records and persists them.
// A non-recurring form produces a single one-off occurrence.
func (t *Tracker) CreateSeries(ctx context.Context, form schedule.Form) ([]schedule.Occurrence, error) {
	created := t.materialize(form)
	if err := t.store.SaveBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to persist new occurrences: %w", err)
	}
	t.logger.Info("created occurrences",
		"count", len(created),
		"recurring", form.Recurring)
	return created, nil
}

func (t *Tracker) materialize(form schedule.Form) []schedule.Occurrence {
	if !form.Recurring {
		o := schedule.Occurrence{ID: uuid.NewString(), Date: form.StartDate}
		form.Apply(&o)
		return []schedule.Occurrence{o}
	}

	sid := NewSeriesID()
	gen := schedule.GenerateDates(form.StartDate, form.Interval, form.Unit,
		form.EndPolicy, form.EndDate, form.Count, t.now(), t.limits)
	if gen.Truncated {
		t.logger.Warn("series generation hit cap",
			"series_id", sid,
			"generated", len(gen.Dates))
	}

	interval := form.Interval
	if interval < 1 {
		interval = 1
	}
	endDate := form.EndDate
	if form.EndPolicy != schedule.EndDate {
		endDate = mo.None[time.Time]()
	}

	out := make([]schedule.Occurrence, 0, len(gen.Dates))
	for i, d := range gen.Dates {
		o := schedule.Occurrence{
			ID:   fmt.Sprintf("%s_%d", sid, i+1),
			Date: d,
			Recurring: &schedule.Recurrence{
				SeriesID:  sid,
				Interval:  interval,
				Unit:      form.Unit,
				Index:     i + 1,
				Total:     len(gen.Dates),
				EndPolicy: form.EndPolicy,
				EndDate:   endDate,
			},
		}
		form.Apply(&o)
		out = append(out, o)
	}
	return out
}

// Edit applies a scoped series edit and persists the outcome.
func (t *Tracker) Edit(ctx context.Context, target schedule.Occurrence, form schedule.Form, scope schedule.EditScope) ([]schedule.Occurrence, error) {
	all, err := t.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occurrences: %w", err)
	}

	res := schedule.ApplyEdit(all, target, form, scope, schedule.EditParams{
		Now:         t.now(),
		Limits:      t.limits,
		NewSeriesID: NewSeriesID(),
	})
	if res.Truncated {
		t.logger.Warn("edit regeneration hit cap",
			"target", target.ID,
			"scope", scope)
	}

	if len(res.Removed) > 0 {
		if err := t.store.DeleteBatch(ctx, res.Removed); err != nil {
			return nil, fmt.Errorf("failed to delete replaced occurrences: %w", err)
		}
	}
	if len(res.Upserts) > 0 {
		if err := t.store.SaveBatch(ctx, res.Upserts); err != nil {
			return nil, fmt.Errorf("failed to persist edit: %w", err)
		}
	}
	t.logger.Info("applied edit",
		"target", target.ID,
		"scope", scope,
		"upserts", len(res.Upserts),
		"removed", len(res.Removed))
	return res.Occurrences, nil
}

// Skip marks one occurrence as skipped, which implies completion and a
// zeroed amount. No series-wide effect.
func (t *Tracker) Skip(ctx context.Context, o schedule.Occurrence) (schedule.Occurrence, error) {
	up := o.Clone()
	up.MarkSkipped()
	if err := t.store.SaveBatch(ctx, []schedule.Occurrence{up}); err != nil {
		return schedule.Occurrence{}, fmt.Errorf("failed to persist skip: %w", err)
	}
	return up, nil
}

// Complete marks one occurrence done or not done. No series-wide effect.
func (t *Tracker) Complete(ctx context.Context, o schedule.Occurrence, done bool) (schedule.Occurrence, error) {
	up := o.Clone()
	up.Done = done
	if !done {
		up.Skipped = false
	}
	if err := t.store.SaveBatch(ctx, []schedule.Occurrence{up}); err != nil {
		return schedule.Occurrence{}, fmt.Errorf("failed to persist completion: %w", err)
	}
	return up, nil
}

// Postpone moves one occurrence to a new date. No series-wide effect.
func (t *Tracker) Postpone(ctx context.Context, o schedule.Occurrence, date time.Time) (schedule.Occurrence, error) {
	up := o.Clone()
	up.Date = date
	if err := t.store.SaveBatch(ctx, []schedule.Occurrence{up}); err != nil {
		return schedule.Occurrence{}, fmt.Errorf("failed to persist postpone: %w", err)
	}
	return up, nil
}

// Delete removes a single occurrence.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.store.DeleteBatch(ctx, []string{id}); err != nil {
		return fmt.Errorf("failed to delete occurrence: %w", err)
	}
	return nil
}

// DeleteFuture removes the target and every later member of its series,
// truncating the series to end at the last surviving occurrence: the end
// policy becomes "date" at the cutoff and the survivors' totals shrink
// accordingly.
func (t *Tracker) DeleteFuture(ctx context.Context, target schedule.Occurrence) error {
	if target.Recurring == nil {
		return t.Delete(ctx, target.ID)
	}

	all, err := t.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load occurrences: %w", err)
	}
	members := schedule.CollectSeriesMembers(all, target)
	if len(members) == 0 {
		return t.Delete(ctx, target.ID)
	}

	var removed []string
	var survivors []schedule.Occurrence
	for _, m := range members {
		if m.Recurring.Index >= target.Recurring.Index {
			removed = append(removed, m.ID)
		} else {
			survivors = append(survivors, m)
		}
	}

	if len(removed) > 0 {
		if err := t.store.DeleteBatch(ctx, removed); err != nil {
			return fmt.Errorf("failed to delete future occurrences: %w", err)
		}
	}
	if len(survivors) > 0 {
		cutoff := survivors[len(survivors)-1].Date
		patched := make([]schedule.Occurrence, 0, len(survivors))
		for _, m := range survivors {
			up := m.Clone()
			up.Recurring.Total = len(survivors)
			up.Recurring.EndPolicy = schedule.EndDate
			up.Recurring.EndDate = mo.Some(cutoff)
			patched = append(patched, up)
		}
		if err := t.store.SaveBatch(ctx, patched); err != nil {
			return fmt.Errorf("failed to truncate series: %w", err)
		}
	}
	t.logger.Info("deleted future occurrences",
		"target", target.ID,
		"removed", len(removed),
		"surviving", len(survivors))
	return nil
}

// Dedupe collapses duplicate occurrences sharing reference's fingerprint
// and date, deleting the losers from storage.
func (t *Tracker) Dedupe(ctx context.Context, reference schedule.Occurrence) ([]schedule.Occurrence, error) {
	all, err := t.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occurrences: %w", err)
	}
	kept, dropped := schedule.DedupeSeries(all, reference)
	if len(dropped) > 0 {
		if err := t.store.DeleteBatch(ctx, dropped); err != nil {
			return nil, fmt.Errorf("failed to delete duplicates: %w", err)
		}
		t.logger.Info("collapsed duplicate occurrences",
			"reference", reference.ID,
			"dropped", len(dropped))
	}
	return kept, nil
}

// Export writes the full occurrence list to w as an iCalendar feed.
func (t *Tracker) Export(ctx context.Context, w io.Writer) error {
	all, err := t.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load occurrences: %w", err)
	}
	if err := ics.Encode(all, w); err != nil {
		return fmt.Errorf("failed to export calendar: %w", err)
	}
	return nil
}
