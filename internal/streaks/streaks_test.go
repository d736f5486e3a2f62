package streaks

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
	"github.com/goalkit/goalkit/internal/reflection"
)

const habit = "IF it is 6am THEN put on running shoes"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedDay writes a daily reflection with the habit checked or not.
func seedDay(t *testing.T, store *reflection.Store, d time.Time, done bool) {
	t.Helper()
	r := &reflection.Reflection{
		Period: reflection.DailyPeriod(d),
		Plans: []reflection.GoalPlan{{
			GoalID: "goal_2026_01_05_run_marathon",
			Status: goal.StatusActive,
			Operations: []record.Checkbox{
				{Text: habit, Done: done},
			},
		}},
	}
	require.NoError(t, store.Save(r))
}

func TestComputeCurrentAndMaxStreaks(t *testing.T) {
	t.Parallel()

	store := reflection.NewStore(t.TempDir())
	asOf := day(2026, 3, 10)
	// Five done days, a gap on Mar 6, then three done days up to asOf.
	for i := 1; i <= 5; i++ {
		seedDay(t, store, day(2026, 3, i), true)
	}
	seedDay(t, store, day(2026, 3, 6), false)
	// Mar 7 has no reflection at all.
	for i := 8; i <= 10; i++ {
		seedDay(t, store, day(2026, 3, i), true)
	}

	res := NewTracker(store, 30).Compute(habit, asOf)
	assert.Equal(t, 3, res.Current, "gap must reset the current streak")
	assert.Equal(t, 5, res.Max, "max streak lives before the gap")
}

func TestComputeMissingDayBreaksLikeIncomplete(t *testing.T) {
	t.Parallel()

	store := reflection.NewStore(t.TempDir())
	asOf := day(2026, 3, 10)
	seedDay(t, store, day(2026, 3, 8), true)
	// Mar 9 missing.
	seedDay(t, store, day(2026, 3, 10), true)

	res := NewTracker(store, 10).Compute(habit, asOf)
	assert.Equal(t, 1, res.Current)
	assert.Equal(t, 1, res.Max)
}

func TestComputeRates(t *testing.T) {
	t.Parallel()

	store := reflection.NewStore(t.TempDir())
	asOf := day(2026, 3, 10)
	// Done on 7 of the last 14 days.
	for i := 0; i < 14; i++ {
		seedDay(t, store, asOf.AddDate(0, 0, -i), i%2 == 0)
	}

	res := NewTracker(store, 14).Compute(habit, asOf)
	assert.InDelta(t, 50.0, res.RateAll, 0.001)
	// Last 7 days: offsets 0..6, done on 0, 2, 4, 6.
	assert.InDelta(t, 4.0*100/7, res.Rate7d, 0.001)
	require.NotEmpty(t, res.ByWeekday)
	// Each weekday appears twice in the window, once done and once not.
	for _, rate := range res.ByWeekday {
		assert.InDelta(t, 50.0, rate, 0.001)
	}
}

func TestHabitMatchingFallsBackToKeywordOverlap(t *testing.T) {
	t.Parallel()

	store := reflection.NewStore(t.TempDir())
	asOf := day(2026, 3, 10)
	r := &reflection.Reflection{
		Period: reflection.DailyPeriod(asOf),
		Plans: []reflection.GoalPlan{{
			GoalID: "goal_2026_01_05_run_marathon",
			Status: goal.StatusActive,
			Operations: []record.Checkbox{
				// Hand-edited wording, same habit.
				{Text: "put on the running shoes right at 6am", Done: true},
			},
		}},
	}
	require.NoError(t, store.Save(r))

	res := NewTracker(store, 7).Compute(habit, asOf)
	assert.Equal(t, 1, res.Current)

	unrelated := NewTracker(store, 7).Compute("After dinner -> write journal entry", asOf)
	assert.Zero(t, unrelated.Current)
}

func TestBuildReportCollectsAllGoalHabits(t *testing.T) {
	t.Parallel()

	store := reflection.NewStore(t.TempDir())
	asOf := day(2026, 3, 10)
	seedDay(t, store, asOf, true)

	g := &goal.Goal{
		ID:     "goal_2026_01_05_run_marathon",
		Title:  "Run a marathon",
		Status: goal.StatusActive,
		Tactics: goal.Tactics{
			Method:    goal.MethodOKR,
			Objective: "Finish the spring marathon",
		},
		IfThen: []goal.IfThen{
			{Trigger: "it is 6am", Action: "put on running shoes"},
		},
		TinyHabits: []goal.TinyHabit{
			{Anchor: "morning coffee", Action: "stretch 5 minutes"},
		},
	}

	report := BuildReport(NewTracker(store, 7), []*goal.Goal{g}, asOf)
	require.Len(t, report.Habits, 2)
	assert.Equal(t, g.ID, report.Habits[0].GoalID)

	top := report.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, habit, top[0].Name)
	assert.Equal(t, 1, top[0].Current)

	md := string(RenderMarkdown(report))
	assert.Contains(t, md, "Habit Streaks: 2026-03-10")
	assert.Contains(t, md, "Needs attention")
}

func TestTruncateCutsOnRuneBoundaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short name", truncate("short name", 60))

	// Cyrillic habit names are two bytes per rune, so a byte-indexed cut
	// would split a character in half.
	name := "ЕСЛИ наступило утро ТО надеть кроссовки и выйти на пробежку сразу"
	got := truncate(name, 60)
	assert.True(t, utf8.ValidString(got), "truncated name %q is not valid UTF-8", got)
	assert.True(t, strings.HasSuffix(got, "..."), got)
	assert.LessOrEqual(t, len(got), 63)
}
