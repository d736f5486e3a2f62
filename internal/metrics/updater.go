// Package metrics applies completion signals from a daily reflection back to
// the goals it was generated from.
package metrics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/reflection"
)

// UpdateReport aggregates the outcome of one updater run. Record-level
// failures are collected here instead of aborting the batch.
type UpdateReport struct {
	GoalsTouched    int
	MetricsUpdated  int
	SkippedNoChange int
	EvidenceAdded   int
	Errors          []error
}

// Summary renders the one-line outcome the scheduler log captures.
func (r *UpdateReport) Summary() string {
	return fmt.Sprintf("goals touched: %d, metrics updated: %d, unchanged: %d, evidence added: %d, errors: %d",
		r.GoalsTouched, r.MetricsUpdated, r.SkippedNoChange, r.EvidenceAdded, len(r.Errors))
}

// Updater reconciles reflection-recorded values against the live goals.
type Updater struct {
	goals       *goal.Store
	reflections *reflection.Store
	now         func() time.Time
}

// NewUpdater creates an updater over the two stores.
func NewUpdater(goals *goal.Store, reflections *reflection.Store) *Updater {
	return &Updater{goals: goals, reflections: reflections, now: time.Now}
}

// Update processes the daily reflection for date. A missing reflection
// propagates record.ErrNotFound; a reflection without completion signals is a
// no-op report, not an error. Re-running with an unchanged reflection updates
// nothing: stored progress already matches the recorded values.
func (u *Updater) Update(date time.Time) (*UpdateReport, error) {
	r, err := u.reflections.Load(reflection.DailyPeriod(date))
	if err != nil {
		return nil, err
	}

	report := &UpdateReport{}
	if !r.HasCompletionSignals() {
		log.Info().Str("date", r.Period.Key()).Msg("reflection has no completion signals")
		return report, nil
	}

	for _, plan := range r.Plans {
		// Weak reference: the goal may have been paused or cancelled since
		// generation; its history still accepts PROGRESS entries.
		g, err := u.goals.Load(plan.GoalID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("plan for %s: %w", plan.GoalID, err))
			continue
		}
		touched := u.applyPlan(g, plan, r, report)
		if u.applyEvidence(g, r, date) {
			touched = true
			report.EvidenceAdded++
		}
		if !touched {
			continue
		}
		if err := u.goals.Save(g); err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		report.GoalsTouched++
	}
	return report, nil
}

func (u *Updater) applyPlan(g *goal.Goal, plan reflection.GoalPlan, r *reflection.Reflection, report *UpdateReport) bool {
	touched := false
	for _, kr := range plan.Tactics {
		recorded := clamp(kr.Value)
		stored, apply, ok := resolveTarget(g, kr.Description)
		if !ok {
			log.Debug().Str("goal", g.ID).Str("target", kr.Description).Msg("no matching tactical target")
			continue
		}
		if recorded == stored {
			report.SkippedNoChange++
			continue
		}
		apply(recorded)
		entry := goal.ChangeEntry{
			Timestamp: u.now().UTC(),
			Type:      goal.ChangeProgress,
			Description: fmt.Sprintf("%s: %d%% -> %d%% (reflection %s)",
				kr.Description, stored, recorded, r.Period.Key()),
		}
		if err := g.AppendHistory(entry); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("goal %s: %w", g.ID, err))
			continue
		}
		report.MetricsUpdated++
		touched = true
	}
	return touched
}

// resolveTarget maps a reflection target description onto the goal's stored
// progress: the single SMART progress, or the key result with the same
// description.
func resolveTarget(g *goal.Goal, description string) (stored int, apply func(int), ok bool) {
	if g.Tactics.Method == goal.MethodSMART {
		if description != reflection.SMARTTargetLabel {
			return 0, nil, false
		}
		return g.Tactics.Progress, func(v int) { g.Tactics.Progress = v }, true
	}
	for i := range g.Tactics.KeyResults {
		if g.Tactics.KeyResults[i].Description == description {
			kr := &g.Tactics.KeyResults[i]
			return kr.Progress, func(v int) { kr.Progress = v }, true
		}
	}
	return 0, nil, false
}

// applyEvidence mirrors checked identity-evidence items into the goal's
// evidence list, keyed by (date, description) so re-runs append nothing.
func (u *Updater) applyEvidence(g *goal.Goal, r *reflection.Reflection, date time.Time) bool {
	known := make(map[string]bool, len(g.Evidence))
	owned := make(map[string]bool, len(g.Evidence))
	for _, ev := range g.Evidence {
		known[ev.Date.Format(goal.DateFormat)+"\x00"+ev.Description] = true
		owned[ev.Description] = true
	}
	added := false
	for _, cb := range r.Evidence {
		if !cb.Done || !owned[cb.Text] {
			continue
		}
		key := date.Format(goal.DateFormat) + "\x00" + cb.Text
		if known[key] {
			continue
		}
		g.Evidence = append(g.Evidence, goal.Evidence{Date: midnight(date), Description: cb.Text})
		known[key] = true
		added = true
	}
	return added
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
