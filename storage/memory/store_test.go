package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max64180/lifetrack/schedule"
	"github.com/max64180/lifetrack/storage"
)

func occ(id string, d time.Time) schedule.Occurrence {
	return schedule.Occurrence{ID: id, Title: "Bill", Date: d}
}

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestStore_SaveLoadDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveBatch(ctx, []schedule.Occurrence{occ("b", day(2)), occ("a", day(1))}))
	assert.Equal(t, 2, s.Len())

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID, "sorted by date")

	require.NoError(t, s.DeleteBatch(ctx, []string{"a", "missing"}))
	assert.Equal(t, 1, s.Len())

	_, err = s.Get("a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SaveBatchUpserts(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := occ("x", day(1))
	require.NoError(t, s.SaveBatch(ctx, []schedule.Occurrence{first}))

	updated := first
	updated.Title = "Bill (updated)"
	require.NoError(t, s.SaveBatch(ctx, []schedule.Occurrence{updated}))

	got, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "Bill (updated)", got.Title)
	assert.Equal(t, 1, s.Len())
}

func TestStore_RejectsMissingID(t *testing.T) {
	s := New()
	err := s.SaveBatch(context.Background(), []schedule.Occurrence{{Title: "no id"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.Equal(t, 0, s.Len(), "a batch is rejected as a whole")
}

func TestStore_LoadAllReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	o := occ("x", day(1))
	o.Recurring = &schedule.Recurrence{SeriesID: "s1", Interval: 1, Unit: schedule.UnitMonth, Index: 1, Total: 1, EndPolicy: schedule.EndCount}
	require.NoError(t, s.SaveBatch(ctx, []schedule.Occurrence{o}))

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	all[0].Recurring.Total = 99

	again, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Recurring.Total, "callers must not alias internal state")
}
