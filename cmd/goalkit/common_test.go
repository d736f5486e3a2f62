package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/goalkit/goalkit/internal/db"
	"github.com/goalkit/goalkit/internal/runlog"
)

// scaffoldProject initializes a project in a temp dir and points the global
// root at it for the duration of the test.
func scaffoldProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	cmd := initCmd()
	cmd.SetArgs([]string{root})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	viper.Set("root", root)
	t.Cleanup(func() { viper.Set("root", "") })
	return root
}

func openRunlog(t *testing.T, root string) *runlog.Store {
	t.Helper()
	stateDB, err := db.Open(filepath.Join(root, ".goalkit", "state.db"))
	if err != nil {
		t.Fatalf("open state db: %v", err)
	}
	t.Cleanup(func() { _ = stateDB.Close() })
	return runlog.NewStore(stateDB)
}

func TestRunStepRecordsNotesAsEvents(t *testing.T) {
	root := scaffoldProject(t)

	err := runStep(context.Background(), "update", func(ctx context.Context, p *project, note noteFunc) (string, error) {
		note(runlog.LevelWarn, "goal skipped during update: bad frontmatter")
		note(runlog.LevelInfo, "2 goals reconciled")
		return "updated 2 goals", nil
	})
	if err != nil {
		t.Fatalf("runStep: %v", err)
	}

	runs := openRunlog(t, root)
	list, err := runs.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(list) != 1 || list[0].Status != runlog.StatusCompleted {
		t.Fatalf("runs = %+v", list)
	}
	events, err := runs.Events(context.Background(), list[0].ID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Level != runlog.LevelWarn || events[0].Message != "goal skipped during update: bad frontmatter" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Level != runlog.LevelInfo {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestValidateRecordsViolationEvents(t *testing.T) {
	root := scaffoldProject(t)

	// A daily dropped directly under daily/ instead of its year/month dir.
	stray := filepath.Join(root, "user_data", "reflections", "daily", "2026-03-07.md")
	content := "# Daily Reflection: 2026-03-07\n\n## PLAN\n\n## EVIDENCE\n\n## INSIGHTS\n"
	if err := os.WriteFile(stray, []byte(content), 0o644); err != nil {
		t.Fatalf("write stray daily: %v", err)
	}

	cmd := validateCmd()
	cmd.SetArgs([]string{"--fix"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate --fix: %v", err)
	}

	runs := openRunlog(t, root)
	list, err := runs.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(list) != 1 || list[0].Command != "validate" {
		t.Fatalf("runs = %+v", list)
	}
	events, err := runs.Events(context.Background(), list[0].ID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	var warns, fixes int
	for _, e := range events {
		switch {
		case e.Level == runlog.LevelWarn && strings.Contains(e.Message, "misplaced_file"):
			warns++
		case e.Level == runlog.LevelInfo && strings.Contains(e.Message, "fixed misplaced_file"):
			fixes++
		}
	}
	if warns != 1 || fixes != 1 {
		t.Fatalf("warns = %d, fixes = %d, events = %+v", warns, fixes, events)
	}
}
