package tracker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/max64180/lifetrack/schedule"
	"github.com/max64180/lifetrack/storage"
	"github.com/max64180/lifetrack/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestTracker(store storage.Storage, now time.Time) *Tracker {
	cfg := DefaultConfig()
	cfg.Clock = func() time.Time { return now }
	return New(store, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), cfg)
}

func rentForm(start time.Time) schedule.Form {
	return schedule.Form{
		Title:     "Rent",
		Category:  "Housing",
		Asset:     "Checking",
		Amount:    mo.Some(1200.0),
		Recurring: true,
		StartDate: start,
		Interval:  1,
		Unit:      schedule.UnitMonth,
		EndPolicy: schedule.EndAuto,
	}
}

func TestCreateSeries_AutoGeneratesToHorizon(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))

	created, err := tr.CreateSeries(context.Background(), rentForm(date(2026, time.January, 31)))
	require.NoError(t, err)

	// Jan 2026 through Dec 2027.
	require.Len(t, created, 24)
	assert.Equal(t, date(2026, time.February, 28), created[1].Date)
	assert.Equal(t, 24, created[0].Recurring.Total)
	assert.Equal(t, created[0].Recurring.SeriesID+"_1", created[0].ID)
	assert.Equal(t, 24, store.Len())
}

func TestCreateSeries_OneOff(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))

	form := schedule.Form{Title: "Car inspection", StartDate: date(2026, time.June, 1)}
	created, err := tr.CreateSeries(context.Background(), form)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Nil(t, created[0].Recurring)
	assert.NotEmpty(t, created[0].ID)
}

func TestSync_ExtendsWhenYearRollsOver(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))

	_, err := tr.CreateSeries(context.Background(), rentForm(date(2026, time.January, 31)))
	require.NoError(t, err)

	// Same year: coverage is already sufficient.
	res, err := tr.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Zero(t, res.Added)

	// A year later the horizon moved to end of 2028.
	later := newTestTracker(store, date(2027, time.January, 10))
	res, err = later.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 12, res.Added)
	assert.Equal(t, 36, store.Len())

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	for _, o := range all {
		assert.Equal(t, 36, o.Recurring.Total)
	}

	// Running it again is a no-op.
	res, err = later.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestSync_LoadErrorPropagates(t *testing.T) {
	ms := &storage.MockStorage{}
	ms.On("LoadAll", mock.Anything).Return(nil, storage.ErrStorageUnavailable)
	tr := newTestTracker(ms, date(2026, time.January, 10))

	_, err := tr.Sync(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	ms.AssertExpectations(t)
}

func TestEdit_FutureScopePersistsSplit(t *testing.T) {
	store := memory.New()
	now := date(2026, time.January, 10)
	tr := newTestTracker(store, now)

	form := rentForm(date(2026, time.January, 15))
	form.EndPolicy = schedule.EndCount
	form.Count = 4
	created, err := tr.CreateSeries(context.Background(), form)
	require.NoError(t, err)
	require.Len(t, created, 4)

	edit := form
	edit.Title = "Rent (new landlord)"
	edit.StartDate = date(2026, time.February, 20)
	edit.Count = 3

	after, err := tr.Edit(context.Background(), created[1], edit, schedule.ScopeFuture)
	require.NoError(t, err)
	require.Len(t, after, 4)
	assert.Equal(t, 4, store.Len())

	first, err := store.Get(created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", first.Title)
	assert.Equal(t, 4, first.Recurring.Total)

	moved, err := store.Get(created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent (new landlord)", moved.Title)
	assert.Equal(t, date(2026, time.February, 20), moved.Date)
}

func TestDeleteFuture_TruncatesSeries(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))

	form := rentForm(date(2026, time.January, 15))
	form.EndPolicy = schedule.EndCount
	form.Count = 4
	created, err := tr.CreateSeries(context.Background(), form)
	require.NoError(t, err)

	require.NoError(t, tr.DeleteFuture(context.Background(), created[2]))

	assert.Equal(t, 2, store.Len())
	survivor, err := store.Get(created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, survivor.Recurring.Total)
	assert.Equal(t, schedule.EndDate, survivor.Recurring.EndPolicy)
	end, ok := survivor.Recurring.EndDate.Get()
	require.True(t, ok)
	assert.Equal(t, created[1].Date, end)
}

func TestSkipAndComplete(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))

	created, err := tr.CreateSeries(context.Background(),
		schedule.Form{Title: "Gym", StartDate: date(2026, time.March, 1), Amount: mo.Some(45.0)})
	require.NoError(t, err)

	skipped, err := tr.Skip(context.Background(), created[0])
	require.NoError(t, err)
	assert.True(t, skipped.Done)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, mo.Some(0.0), skipped.Amount, "skipping zeroes the amount")

	undone, err := tr.Complete(context.Background(), skipped, false)
	require.NoError(t, err)
	assert.False(t, undone.Done)
	assert.False(t, undone.Skipped)
}

func TestPostpone(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))

	created, err := tr.CreateSeries(context.Background(),
		schedule.Form{Title: "Dentist", StartDate: date(2026, time.March, 1)})
	require.NoError(t, err)

	moved, err := tr.Postpone(context.Background(), created[0], date(2026, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 15), moved.Date)

	stored, err := store.Get(created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 15), stored.Date)
}

func TestDedupe_RemovesDuplicatesFromStorage(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))
	ctx := context.Background()

	rec := &schedule.Recurrence{SeriesID: "s1", Interval: 1, Unit: schedule.UnitMonth, Index: 1, Total: 1, EndPolicy: schedule.EndCount}
	a := schedule.Occurrence{ID: "a", Title: "Rent", Category: "Housing", Date: date(2026, time.January, 15), Recurring: rec}
	dupRec := *rec
	dupRec.SeriesID = "s2"
	b := schedule.Occurrence{ID: "b", Title: "Rent", Category: "Housing", Date: date(2026, time.January, 15), Recurring: &dupRec}
	require.NoError(t, store.SaveBatch(ctx, []schedule.Occurrence{a, b}))

	kept, err := tr.Dedupe(ctx, a)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].ID)
	assert.Equal(t, 1, store.Len())
}

func TestExport_WritesCalendar(t *testing.T) {
	store := memory.New()
	tr := newTestTracker(store, date(2026, time.January, 10))
	ctx := context.Background()

	form := rentForm(date(2026, time.January, 31))
	form.EndPolicy = schedule.EndCount
	form.Count = 3
	_, err := tr.CreateSeries(ctx, form)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.Export(ctx, &buf))

	out := buf.String()
	assert.True(t, strings.Contains(out, "BEGIN:VCALENDAR"))
	assert.True(t, strings.Contains(out, "BEGIN:VTODO"))
	assert.True(t, strings.Contains(out, "SUMMARY:Rent"))
}

func TestEdit_SaveErrorWrapped(t *testing.T) {
	ms := &storage.MockStorage{}
	target := schedule.Occurrence{ID: "solo", Title: "Gym", Date: date(2026, time.March, 1)}
	ms.On("LoadAll", mock.Anything).Return([]schedule.Occurrence{target}, nil)
	saveErr := errors.New("disk full")
	ms.On("SaveBatch", mock.Anything, mock.Anything).Return(saveErr)

	tr := newTestTracker(ms, date(2026, time.January, 10))
	_, err := tr.Edit(context.Background(), target,
		schedule.Form{Title: "Gym", StartDate: date(2026, time.March, 2)}, schedule.ScopeSingle)
	assert.ErrorIs(t, err, saveErr)
}
