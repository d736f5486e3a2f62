package reflection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// seedDaily saves a daily with one done and one open operation, one recorded
// evidence item, and the given day score.
func seedDaily(t *testing.T, store *Store, d time.Time, score int) {
	t.Helper()
	r := Generate(DailyPeriod(d), []*goal.Goal{okrGoal()})
	r.Plans[0].Operations[0].Done = true
	r.Plans[0].Operations = append(r.Plans[0].Operations, record.Checkbox{Text: "After lunch -> walk"})
	r.Evidence[0].Done = true
	r.Ratings.DayScore = score
	require.NoError(t, store.Save(r))
}

func TestDeriveWeeklyBelowMinimumIsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	// 2026 ISO week 11 runs Mon Mar 9 to Sun Mar 15.
	seedDaily(t, store, day(2026, 3, 9), 7)
	seedDaily(t, store, day(2026, 3, 10), 8)

	_, _, err := Derive(store, WeeklyPeriod(2026, 11))
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestDeriveWeeklyAggregates(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	seedDaily(t, store, day(2026, 3, 9), 7)
	seedDaily(t, store, day(2026, 3, 10), 8)
	seedDaily(t, store, day(2026, 3, 12), 0)

	agg, errs, err := Derive(store, WeeklyPeriod(2026, 11))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, agg.Days, 3)

	// One of two operations done each day.
	assert.InDelta(t, 50.0, agg.AvgOperations, 0.001)
	assert.Equal(t, 3, agg.TotalEvidence)
	// Day score averages only over days that rated.
	assert.InDelta(t, 7.5, agg.AvgDayScore, 0.001)
}

func TestDeriveRejectsDailyPeriod(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	_, _, err := Derive(store, DailyPeriod(day(2026, 3, 9)))
	require.Error(t, err)
}

func TestAggregateSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	seedDaily(t, store, day(2026, 3, 9), 7)
	seedDaily(t, store, day(2026, 3, 10), 8)
	seedDaily(t, store, day(2026, 3, 12), 6)

	agg, _, err := Derive(store, WeeklyPeriod(2026, 11))
	require.NoError(t, err)
	require.NoError(t, store.SaveAggregate(agg))

	loaded, err := store.LoadAggregate(WeeklyPeriod(2026, 11))
	require.NoError(t, err)
	assert.Len(t, loaded.Days, 3)
	assert.Equal(t, agg.TotalEvidence, loaded.TotalEvidence)
	assert.InDelta(t, agg.AvgOperations, loaded.AvgOperations, 0.05)
	assert.Equal(t, agg.Days[0].Date, loaded.Days[0].Date)

	_, err = store.LoadAggregate(WeeklyPeriod(2026, 12))
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestDeriveCollectsParseErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	seedDaily(t, store, day(2026, 3, 2), 7)
	seedDaily(t, store, day(2026, 3, 3), 7)
	seedDaily(t, store, day(2026, 3, 4), 7)
	// A corrupt daily inside the same week.
	require.NoError(t, store.WriteRaw(DailyPeriod(day(2026, 3, 5)), "# Daily Reflection: 2026-03-05\n\nno plan here\n"))

	agg, errs, err := Derive(store, WeeklyPeriod(2026, 10))
	require.NoError(t, err)
	assert.Len(t, agg.Days, 3)
	require.Len(t, errs, 1)
	var pe *record.ParseError
	assert.ErrorAs(t, errs[0], &pe)
}
