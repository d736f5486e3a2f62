package goal

import (
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func okrGoal() *Goal {
	return &Goal{
		ID:       "goal_2026_01_05_run_marathon",
		Title:    "Run a marathon",
		Status:   StatusActive,
		Created:  date(2026, 1, 5),
		Updated:  date(2026, 1, 5),
		Identity: "I am a runner",
		Evidence: []Evidence{
			{Date: date(2026, 1, 5), Description: "ran 10k without stopping"},
		},
		Tactics: Tactics{
			Method:    MethodOKR,
			Objective: "Finish the spring marathon",
			KeyResults: []KeyResult{
				{Description: "run 30km per week", Progress: 40},
				{Description: "finish a half marathon", Progress: 10},
			},
		},
		IfThen: []IfThen{
			{Trigger: "it is 6am", Action: "put on running shoes"},
		},
		TinyHabits: []TinyHabit{
			{Anchor: "morning coffee", Action: "stretch 5 minutes"},
		},
	}
}

func TestNewIDSlugsTitle(t *testing.T) {
	t.Parallel()

	got := NewID(date(2026, 1, 5), "Run a Marathon!")
	if got != "goal_2026_01_05_run_a_marathon" {
		t.Fatalf("NewID = %q", got)
	}
	if got := NewID(date(2026, 1, 5), "!!!"); got != "goal_2026_01_05_goal" {
		t.Fatalf("NewID with empty slug = %q", got)
	}
}

func TestValidateRejectsMixedTactics(t *testing.T) {
	t.Parallel()

	g := okrGoal()
	g.Tactics.SMARTGoal = "also a smart goal"
	if err := g.Validate(); err == nil {
		t.Fatal("OKR goal with SMART fields validated")
	}

	g = okrGoal()
	g.Tactics = Tactics{Method: MethodSMART, SMARTGoal: "finish", Progress: 20}
	if err := g.Validate(); err != nil {
		t.Fatalf("SMART goal failed validation: %v", err)
	}
}

func TestValidateRejectsDecreasingHistory(t *testing.T) {
	t.Parallel()

	g := okrGoal()
	g.History = []ChangeEntry{
		{Timestamp: date(2026, 1, 10), Type: ChangeProgress, Description: "later"},
		{Timestamp: date(2026, 1, 8), Type: ChangeProgress, Description: "earlier"},
	}
	if err := g.Validate(); err == nil {
		t.Fatal("decreasing history timestamps validated")
	}
}

func TestAppendHistoryClampsTimestampsAndMirrorsForcedChanges(t *testing.T) {
	t.Parallel()

	g := okrGoal()
	if err := g.AppendHistory(ChangeEntry{
		Timestamp: date(2026, 1, 10), Type: ChangeProgress, Description: "first",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// An earlier timestamp must be clamped, never reordered.
	if err := g.AppendHistory(ChangeEntry{
		Timestamp: date(2026, 1, 8), Type: ChangeForced,
		Description: "plan changed", Event: "caught the flu",
	}); err != nil {
		t.Fatalf("append forced: %v", err)
	}

	if len(g.History) != 2 {
		t.Fatalf("history length = %d", len(g.History))
	}
	if g.History[1].Timestamp.Before(g.History[0].Timestamp) {
		t.Fatal("timestamps decreased")
	}
	if len(g.CriticalEvents) != 1 || g.CriticalEvents[0].Description != "caught the flu" {
		t.Fatalf("critical events = %+v", g.CriticalEvents)
	}
	if !g.Updated.Equal(g.History[1].Timestamp) {
		t.Fatalf("Updated = %v, want %v", g.Updated, g.History[1].Timestamp)
	}
}

func TestAppendHistoryValidatesVariantFields(t *testing.T) {
	t.Parallel()

	g := okrGoal()
	if err := g.AppendHistory(ChangeEntry{
		Timestamp: date(2026, 1, 10), Type: ChangeForced, Description: "no event",
	}); err == nil {
		t.Fatal("forced change without event accepted")
	}
	if err := g.AppendHistory(ChangeEntry{
		Timestamp: date(2026, 1, 10), Type: ChangeProgress,
		Description: "progress", Event: "stray event",
	}); err == nil {
		t.Fatal("progress change carrying an event accepted")
	}
	if len(g.History) != 0 {
		t.Fatalf("rejected entries appended: %d", len(g.History))
	}
}

func TestHabitsFlattensOperations(t *testing.T) {
	t.Parallel()

	habits := okrGoal().Habits()
	if len(habits) != 2 {
		t.Fatalf("habits = %v", habits)
	}
	if !strings.HasPrefix(habits[0], "IF ") || !strings.HasPrefix(habits[1], "After ") {
		t.Fatalf("habit keys = %v", habits)
	}
}
