package reflection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkit/goalkit/internal/goal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func okrGoal() *goal.Goal {
	return &goal.Goal{
		ID:       "goal_2026_01_05_run_marathon",
		Title:    "Run a marathon",
		Status:   goal.StatusActive,
		Identity: "I am a runner",
		Evidence: []goal.Evidence{
			{Date: day(2026, 1, 5), Description: "ran 10k without stopping"},
		},
		Tactics: goal.Tactics{
			Method:    goal.MethodOKR,
			Objective: "Finish the spring marathon",
			KeyResults: []goal.KeyResult{
				{Description: "run 30km per week", Progress: 40},
			},
		},
		IfThen: []goal.IfThen{
			{Trigger: "it is 6am", Action: "put on running shoes"},
		},
	}
}

func smartGoal() *goal.Goal {
	return &goal.Goal{
		ID:     "goal_2026_02_01_read_12_books",
		Title:  "Read 12 books",
		Status: goal.StatusActive,
		Tactics: goal.Tactics{
			Method:    goal.MethodSMART,
			SMARTGoal: "Read 12 books by December 31",
			Progress:  25,
		},
		TinyHabits: []goal.TinyHabit{
			{Anchor: "lunch", Action: "read 10 pages"},
		},
	}
}

func TestPeriodRelPathLayout(t *testing.T) {
	t.Parallel()

	cases := []struct {
		period Period
		want   string
	}{
		{DailyPeriod(day(2026, 3, 7)), "daily/2026/03/2026-03-07.md"},
		{WeeklyPeriod(2026, 5), "weekly/2026/week_05_2026.md"},
		{MonthlyPeriod(2026, time.March), "monthly/2026/2026-03.md"},
		{QuarterlyPeriod(2026, 2), "quarterly/2026/Q2_2026.md"},
		{YearlyPeriod(2026), "yearly/2026.md"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.period.RelPath(), "period %s", tc.period.Key())
	}
}

func TestWeeklyRangeStartsOnMonday(t *testing.T) {
	t.Parallel()

	from, to := WeeklyPeriod(2026, 2).Range()
	assert.Equal(t, time.Monday, from.Weekday())
	assert.Equal(t, day(2026, 1, 5), from)
	assert.Equal(t, day(2026, 1, 11), to)
}

func TestGenerateSnapshotsGoals(t *testing.T) {
	t.Parallel()

	r := Generate(DailyPeriod(day(2026, 3, 7)), []*goal.Goal{okrGoal(), smartGoal()})
	require.Len(t, r.Plans, 2)

	okr := r.Plans[0]
	assert.Equal(t, "goal_2026_01_05_run_marathon", okr.GoalID)
	assert.Equal(t, "Finish the spring marathon", okr.Objective)
	require.Len(t, okr.Operations, 1)
	assert.False(t, okr.Operations[0].Done)
	require.Len(t, okr.Tactics, 1)
	assert.Equal(t, "run 30km per week", okr.Tactics[0].Description)
	assert.Equal(t, 40, okr.Tactics[0].Value)

	smart := r.Plans[1]
	require.Len(t, smart.Tactics, 1)
	assert.Equal(t, SMARTTargetLabel, smart.Tactics[0].Description)
	assert.Equal(t, 25, smart.Tactics[0].Value)

	// Evidence from goals is offered unchecked.
	require.Len(t, r.Evidence, 1)
	assert.False(t, r.Evidence[0].Done)
}

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()

	r := Generate(DailyPeriod(day(2026, 3, 7)), []*goal.Goal{okrGoal(), smartGoal()})
	r.Plans[0].Operations[0].Done = true
	r.Plans[0].Tactics[0].Value = 55
	r.Plans[0].Tactics[0].Done = true
	r.Evidence[0].Done = true
	r.Obstacles = []string{"meetings ran long"}
	r.Helped = []string{"morning routine held"}
	r.Ratings = Ratings{DayScore: 7, Energy: 6}
	r.Insights = "Mornings work better than evenings."
	r.Tomorrow = "Block 7-8am for the long run."

	first := Render(r)
	parsed, err := Parse("test.md", r.Period, string(first))
	require.NoError(t, err)
	second := Render(parsed)
	assert.Equal(t, string(first), string(second), "round trip must be stable")

	require.Len(t, parsed.Plans, 2)
	assert.True(t, parsed.Plans[0].Operations[0].Done)
	assert.Equal(t, 55, parsed.Plans[0].Tactics[0].Value)
	assert.True(t, parsed.Plans[0].Tactics[0].Done)
	assert.Equal(t, []string{"meetings ran long"}, parsed.Obstacles)
	assert.Equal(t, 7, parsed.Ratings.DayScore)
	assert.Equal(t, 6, parsed.Ratings.Energy)
	assert.Zero(t, parsed.Ratings.Motivation, "unset rating must stay unset")
	assert.Equal(t, "Mornings work better than evenings.", parsed.Insights)
	assert.Empty(t, parsed.Commentary, "placeholder must not round trip as commentary")
}

func TestParseRequiresPlanSection(t *testing.T) {
	t.Parallel()

	_, err := Parse("broken.md", DailyPeriod(day(2026, 3, 7)), "# Daily Reflection: 2026-03-07\n\n## RATINGS\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLAN")
}

func TestHasCompletionSignals(t *testing.T) {
	t.Parallel()

	r := Generate(DailyPeriod(day(2026, 3, 7)), []*goal.Goal{okrGoal()})
	// Generated templates carry the current value as the baseline, which is
	// a signal only once something is checked or recorded anew.
	r.Plans[0].Tactics[0].Value = 0
	assert.False(t, r.HasCompletionSignals())

	r.Plans[0].Operations[0].Done = true
	assert.True(t, r.HasCompletionSignals())
}

func TestStoreRoundTripAndRawRewrite(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	p := DailyPeriod(day(2026, 3, 7))
	r := Generate(p, []*goal.Goal{okrGoal()})
	require.NoError(t, store.Save(r))
	assert.True(t, store.Exists(p))

	loaded, err := store.Load(p)
	require.NoError(t, err)
	assert.Len(t, loaded.Plans, 1)

	raw, err := store.ReadRaw(p)
	require.NoError(t, err)
	assert.Contains(t, raw, CommentaryPlaceholder)
	require.NoError(t, store.WriteRaw(p, raw))
}

func TestListRangeSkipsMissingDays(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	for _, d := range []int{1, 3, 4} {
		r := Generate(DailyPeriod(day(2026, 3, d)), []*goal.Goal{okrGoal()})
		require.NoError(t, store.Save(r))
	}

	var got []string
	for r, err := range store.ListRange(day(2026, 3, 1), day(2026, 3, 5)) {
		require.NoError(t, err)
		got = append(got, r.Period.Key())
	}
	assert.Equal(t, []string{"2026-03-01", "2026-03-03", "2026-03-04"}, got)
}
