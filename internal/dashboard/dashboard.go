// Package dashboard renders daily and weekly progress dashboards from the
// goal and reflection stores.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
	"github.com/goalkit/goalkit/internal/reflection"
	"github.com/goalkit/goalkit/internal/streaks"
)

// GoalRow summarizes one goal for display.
type GoalRow struct {
	ID       string
	Title    string
	Status   goal.Status
	Method   goal.Method
	Progress int
	Evidence int
}

// DayData is everything the daily dashboard shows.
type DayData struct {
	Date       time.Time
	Goals      []GoalRow
	HasDaily   bool
	Operations int // percent done
	Tactics    int
	Evidence   int
	DayScore   int
	TopStreaks []streaks.HabitStreak
	Errors     []string
}

// Builder assembles dashboard data from the stores.
type Builder struct {
	goals       *goal.Store
	reflections *reflection.Store
	tracker     *streaks.Tracker
}

// NewBuilder wires a builder over the stores.
func NewBuilder(goals *goal.Store, reflections *reflection.Store, tracker *streaks.Tracker) *Builder {
	return &Builder{goals: goals, reflections: reflections, tracker: tracker}
}

// BuildDay collects the daily dashboard for the given date. Record-level
// failures are carried in Errors rather than aborting the build.
func (b *Builder) BuildDay(date time.Time) (*DayData, error) {
	data := &DayData{Date: date}

	for g, err := range b.goals.List("") {
		if err != nil {
			data.Errors = append(data.Errors, err.Error())
			continue
		}
		data.Goals = append(data.Goals, goalRow(g))
	}
	sort.Slice(data.Goals, func(i, j int) bool { return data.Goals[i].ID < data.Goals[j].ID })

	r, err := b.reflections.Load(reflection.DailyPeriod(date))
	switch {
	case err == nil:
		data.HasDaily = true
		stat := reflection.DayStats(r)
		data.Operations = stat.OperationsPercent
		data.Tactics = stat.TacticsPercent
		data.Evidence = stat.EvidenceCount
		data.DayScore = stat.DayScore
	case errors.Is(err, record.ErrNotFound):
		// no reflection yet today, dashboard still renders
	default:
		data.Errors = append(data.Errors, err.Error())
	}

	if b.tracker != nil {
		var goalPtrs []*goal.Goal
		for g, err := range b.goals.List(goal.StatusActive) {
			if err == nil {
				goalPtrs = append(goalPtrs, g)
			}
		}
		report := streaks.BuildReport(b.tracker, goalPtrs, date)
		data.TopStreaks = report.Top(5)
	}
	return data, nil
}

func goalRow(g *goal.Goal) GoalRow {
	row := GoalRow{
		ID:       g.ID,
		Title:    g.Title,
		Status:   g.Status,
		Method:   g.Tactics.Method,
		Evidence: len(g.Evidence),
	}
	if g.Tactics.Method == goal.MethodSMART {
		row.Progress = g.Tactics.Progress
	} else if n := len(g.Tactics.KeyResults); n > 0 {
		total := 0
		for _, kr := range g.Tactics.KeyResults {
			total += kr.Progress
		}
		row.Progress = total / n
	}
	return row
}

// WeekData compares the requested week with the previous one.
type WeekData struct {
	Period   reflection.Period
	Current  *reflection.Aggregate
	Previous *reflection.Aggregate // nil when the previous week has too few days
	Insights []string
}

// BuildWeek derives the weekly aggregates and comparison insights. It
// propagates record.ErrNotFound when the requested week itself has too few
// tracked days.
func (b *Builder) BuildWeek(date time.Time) (*WeekData, error) {
	year, week := date.ISOWeek()
	period := reflection.WeeklyPeriod(year, week)
	cur, recErrs, err := reflection.Derive(b.reflections, period)
	if err != nil {
		return nil, err
	}
	data := &WeekData{Period: period, Current: cur}
	for _, e := range recErrs {
		data.Insights = append(data.Insights, "record error: "+e.Error())
	}

	prevYear, prevWeek := date.AddDate(0, 0, -7).ISOWeek()
	prev, _, err := reflection.Derive(b.reflections, reflection.WeeklyPeriod(prevYear, prevWeek))
	if err == nil {
		data.Previous = prev
	} else if !errors.Is(err, record.ErrNotFound) {
		return nil, err
	}

	data.Insights = append(weekInsights(cur, data.Previous), data.Insights...)
	return data, nil
}

func weekInsights(cur, prev *reflection.Aggregate) []string {
	var out []string
	if cur.AvgOperations >= 80 {
		out = append(out, fmt.Sprintf("Strong execution: %.0f%% of planned operations completed.", cur.AvgOperations))
	} else if cur.AvgOperations < 50 {
		out = append(out, fmt.Sprintf("Operations completion at %.0f%%. Consider planning fewer, smaller steps.", cur.AvgOperations))
	}
	if len(cur.Days) < 7 {
		out = append(out, fmt.Sprintf("Only %d of 7 days tracked. Gaps hide real progress.", len(cur.Days)))
	}
	if prev != nil {
		diff := cur.AvgOperations - prev.AvgOperations
		switch {
		case diff > 5:
			out = append(out, fmt.Sprintf("Operations up %.0f points over last week.", diff))
		case diff < -5:
			out = append(out, fmt.Sprintf("Operations down %.0f points from last week.", -diff))
		}
		if cur.TotalEvidence > prev.TotalEvidence {
			out = append(out, fmt.Sprintf("Evidence collection grew from %d to %d entries.", prev.TotalEvidence, cur.TotalEvidence))
		}
	}
	if len(out) == 0 {
		out = append(out, "Steady week. Keep the cadence.")
	}
	return out
}
