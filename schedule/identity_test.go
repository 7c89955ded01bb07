package schedule

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to build one member of a monthly test series.
func member(sid string, idx, total int, d time.Time) Occurrence {
	return Occurrence{
		ID:       sid + "_" + string(rune('0'+idx)),
		Title:    "Rent",
		Category: "Housing",
		Asset:    "Checking",
		Date:     d,
		Amount:   mo.Some(1200.0),
		Recurring: &Recurrence{
			SeriesID:  sid,
			Interval:  1,
			Unit:      UnitMonth,
			Index:     idx,
			Total:     total,
			EndPolicy: EndCount,
		},
	}
}

// monthlySeries builds a dense n-member monthly series anchored at start.
func monthlySeries(sid string, start time.Time, n int) []Occurrence {
	out := make([]Occurrence, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, member(sid, i+1, n, OccurrenceDate(start, i, 1, UnitMonth)))
	}
	return out
}

func TestFingerprint(t *testing.T) {
	o := member("s1", 1, 4, date(2026, time.January, 15))
	assert.Equal(t, "Rent|Housing|Checking|1|month", Fingerprint(o))

	oneOff := Occurrence{ID: "x", Title: "Rent"}
	assert.Empty(t, Fingerprint(oneOff), "one-off occurrences have no fingerprint")
}

func TestSameSeries(t *testing.T) {
	a := member("s1", 1, 2, date(2026, time.January, 15))
	b := member("s1", 2, 2, date(2026, time.February, 15))
	assert.True(t, SameSeries(a, b))

	// Different ids but identical content: fingerprint recovery path.
	c := member("s2", 1, 2, date(2026, time.March, 15))
	assert.True(t, SameSeries(a, c))

	c.Title = "Electricity"
	assert.False(t, SameSeries(a, c))

	assert.False(t, SameSeries(a, Occurrence{ID: "x"}))
}

func TestCollectSeriesMembers_BySeriesID(t *testing.T) {
	s1 := monthlySeries("s1", date(2026, time.January, 15), 3)
	other := member("s9", 1, 1, date(2026, time.January, 20))
	other.Title = "Water"
	all := append([]Occurrence{other}, s1...)

	got := CollectSeriesMembers(all, s1[1])
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, i+1, m.Recurring.Index, "sorted by date, dense indexes")
	}
}

func TestCollectSeriesMembers_FingerprintFallback(t *testing.T) {
	// Legacy data: identical content, inconsistent series ids.
	a := member("", 1, 3, date(2026, time.January, 15))
	a.ID = "legacy_1"
	b := member("old_7", 2, 3, date(2026, time.February, 15))
	c := member("", 3, 3, date(2026, time.March, 15))
	c.ID = "legacy_3"
	all := []Occurrence{b, c, a}

	got := CollectSeriesMembers(all, a)
	require.Len(t, got, 3)
	assert.Equal(t, "legacy_1", got[0].ID)
	assert.Equal(t, "legacy_3", got[2].ID)
}

func TestCollectSeriesMembers_ReconciliationMergesSameDayFragments(t *testing.T) {
	s1 := monthlySeries("s1", date(2026, time.January, 15), 2)
	// A divergent fragment under another id, duplicating the Feb date.
	dup := member("s2", 2, 2, date(2026, time.February, 15))
	dup.ID = "dup_1"
	all := append(s1, dup)

	got := CollectSeriesMembers(all, s1[0])
	require.Len(t, got, 3, "same-day fragment with matching fingerprint merges in")
}

func TestCollectSeriesMembers_NonRecurringTarget(t *testing.T) {
	all := monthlySeries("s1", date(2026, time.January, 15), 2)
	got := CollectSeriesMembers(all, Occurrence{ID: "plain"})
	assert.Empty(t, got)
}

func TestCollectSeriesMembers_SortedByDateThenIndex(t *testing.T) {
	a := member("s1", 2, 2, date(2026, time.February, 15))
	b := member("s1", 1, 2, date(2026, time.January, 15))
	dup := member("s1", 3, 3, date(2026, time.February, 15))
	all := []Occurrence{dup, a, b}

	got := CollectSeriesMembers(all, b)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Recurring.Index)
	assert.Equal(t, 2, got[1].Recurring.Index)
	assert.Equal(t, 3, got[2].Recurring.Index)
}
