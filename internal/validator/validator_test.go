package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/reflection"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newStores(t *testing.T) (*goal.Store, *reflection.Store) {
	t.Helper()
	return goal.NewStore(t.TempDir()), reflection.NewStore(t.TempDir())
}

func seedGoal(t *testing.T, goals *goal.Store) *goal.Goal {
	t.Helper()
	g := &goal.Goal{
		ID:      "goal_2026_01_05_run_marathon",
		Title:   "Run a marathon",
		Status:  goal.StatusActive,
		Created: day(2026, 1, 5),
		Tactics: goal.Tactics{Method: goal.MethodOKR, Objective: "Finish the race"},
	}
	if err := goals.Save(g); err != nil {
		t.Fatalf("save goal: %v", err)
	}
	return g
}

func countCategory(violations []Violation, c Category) int {
	n := 0
	for _, v := range violations {
		if v.Category == c {
			n++
		}
	}
	return n
}

func TestScanCleanTree(t *testing.T) {
	t.Parallel()

	goals, reflections := newStores(t)
	g := seedGoal(t, goals)
	r := reflection.Generate(reflection.DailyPeriod(day(2026, 3, 7)), []*goal.Goal{g})
	if err := reflections.Save(r); err != nil {
		t.Fatalf("save reflection: %v", err)
	}

	violations, err := New(goals, reflections).Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("clean tree reported violations: %+v", violations)
	}
}

func TestScanFlagsMalformedGoalFilename(t *testing.T) {
	t.Parallel()

	goals, reflections := newStores(t)
	path := filepath.Join(goals.Dir(), "My Goal.md")
	content := "# Goal: My Goal\n\n**Status:** active\n\n## STRATEGY\n\n## TACTICS\n\n## OPERATIONS\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	violations, err := New(goals, reflections).Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if countCategory(violations, MalformedFilename) != 1 {
		t.Fatalf("violations = %+v", violations)
	}
}

func TestScanAndFixMissingSections(t *testing.T) {
	t.Parallel()

	goals, reflections := newStores(t)
	path := filepath.Join(goals.Dir(), "goal_2026_01_05_bare.md")
	content := "# Goal: Bare\n\n**Status:** active\n\n## STRATEGY\n\n**Identity:** someone\n"
	if err := os.MkdirAll(goals.Dir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v := New(goals, reflections)
	violations, err := v.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if countCategory(violations, MissingSection) != 2 {
		t.Fatalf("violations = %+v", violations)
	}

	outcome, err := v.Fix(violations)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if len(outcome.Fixed) != 2 {
		t.Fatalf("fixed = %+v, unfixed = %+v", outcome.Fixed, outcome.Unfixed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "**Identity:** someone") {
		t.Fatal("fix destroyed existing content")
	}

	// Second pass finds nothing to repair.
	again, err := v.Scan()
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if countCategory(again, MissingSection) != 0 {
		t.Fatalf("sections still missing after fix: %+v", again)
	}
}

func TestScanAndFixMisplacedDaily(t *testing.T) {
	t.Parallel()

	goals, reflections := newStores(t)
	g := seedGoal(t, goals)

	// A daily dropped directly under daily/ instead of its year/month dir.
	r := reflection.Generate(reflection.DailyPeriod(day(2026, 3, 7)), []*goal.Goal{g})
	stray := filepath.Join(reflections.Dir(), "daily", "2026-03-07.md")
	if err := os.MkdirAll(filepath.Dir(stray), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(stray, reflection.Render(r), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v := New(goals, reflections)
	violations, err := v.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if countCategory(violations, MisplacedFile) != 1 {
		t.Fatalf("violations = %+v", violations)
	}

	outcome, err := v.Fix(violations)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if len(outcome.Fixed) != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}
	canonical := reflections.Path(reflection.DailyPeriod(day(2026, 3, 7)))
	if _, err := os.Stat(canonical); err != nil {
		t.Fatalf("canonical file missing after fix: %v", err)
	}
	if _, err := os.Stat(stray); !os.IsNotExist(err) {
		t.Fatal("stray file still present after move")
	}

	again, err := v.Scan()
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("violations after fix: %+v", again)
	}
}

func TestScanAndFixWrongPartitionDaily(t *testing.T) {
	t.Parallel()

	goals, reflections := newStores(t)
	g := seedGoal(t, goals)

	// A well-formed daily filed under the wrong month partition. Its content
	// is fine, so only the placement should be flagged.
	r := reflection.Generate(reflection.DailyPeriod(day(2026, 3, 7)), []*goal.Goal{g})
	stray := filepath.Join(reflections.Dir(), "daily", "2026", "02", "2026-03-07.md")
	if err := os.MkdirAll(filepath.Dir(stray), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(stray, reflection.Render(r), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v := New(goals, reflections)
	violations, err := v.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if countCategory(violations, MisplacedFile) != 1 || len(violations) != 1 {
		t.Fatalf("violations = %+v", violations)
	}

	outcome, err := v.Fix(violations)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if len(outcome.Fixed) != 1 || len(outcome.Unfixed) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}

	again, err := v.Scan()
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("violations after fix: %+v", again)
	}
}

func TestScanFlagsOrphanedGoalReference(t *testing.T) {
	t.Parallel()

	goals, reflections := newStores(t)
	r := &reflection.Reflection{
		Period: reflection.DailyPeriod(day(2026, 3, 7)),
		Plans: []reflection.GoalPlan{{
			GoalID: "goal_2026_01_01_gone",
			Status: goal.StatusActive,
		}},
	}
	if err := reflections.Save(r); err != nil {
		t.Fatalf("save: %v", err)
	}

	violations, err := New(goals, reflections).Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if countCategory(violations, OrphanedReference) != 1 {
		t.Fatalf("violations = %+v", violations)
	}
	for _, v := range violations {
		if v.Category == OrphanedReference && v.Fixable() {
			t.Fatal("orphaned references must not be auto-fixable")
		}
	}
}

func TestReportRendering(t *testing.T) {
	t.Parallel()

	report := &Report{
		GeneratedAt: day(2026, 3, 7),
		Violations: []Violation{
			{Path: "a.md", Category: MissingSection, Severity: Critical, Message: "missing TACTICS"},
			{Path: "b.md", Category: MalformedFilename, Severity: Warning, Message: "bad name"},
		},
		Outcome: &FixOutcome{
			Fixed: []Violation{{Path: "a.md", InsertSection: "## TACTICS"}},
		},
	}

	md := report.RenderMarkdown()
	for _, want := range []string{"# Validation Report: 2026-03-07", "## CRITICAL", "## WARNING", "## FIXES APPLIED", "missing TACTICS"} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}

	dir := t.TempDir()
	path, err := WriteReport(dir, report)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	want := filepath.Join(dir, "validation", "2026-03-07_validation_report.md")
	if path != want {
		t.Fatalf("report path = %q, want %q", path, want)
	}
}
