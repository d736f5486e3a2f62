// Package reflection implements periodic reflection records: the daily base
// unit plus weekly, monthly, quarterly, and yearly aggregates derived from it.
package reflection

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// PeriodType names the reflection cadence.
type PeriodType string

const (
	Daily     PeriodType = "day"
	Weekly    PeriodType = "week"
	Monthly   PeriodType = "month"
	Quarterly PeriodType = "quarter"
	Yearly    PeriodType = "year"
)

// ValidPeriodType reports whether t is a known cadence.
func ValidPeriodType(t PeriodType) bool {
	switch t {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Period identifies exactly one reflection record: a (period-type, key) pair.
type Period struct {
	Type    PeriodType
	Date    time.Time // daily
	Year    int
	Week    int        // weekly, ISO week
	Month   time.Month // monthly
	Quarter int        // quarterly
}

// DailyPeriod keys a daily reflection by calendar date.
func DailyPeriod(date time.Time) Period {
	return Period{Type: Daily, Date: date, Year: date.Year(), Month: date.Month()}
}

// WeeklyPeriod keys a weekly aggregate by ISO year and week.
func WeeklyPeriod(year, week int) Period {
	return Period{Type: Weekly, Year: year, Week: week}
}

// MonthlyPeriod keys a monthly aggregate.
func MonthlyPeriod(year int, month time.Month) Period {
	return Period{Type: Monthly, Year: year, Month: month}
}

// QuarterlyPeriod keys a quarterly aggregate.
func QuarterlyPeriod(year, quarter int) Period {
	return Period{Type: Quarterly, Year: year, Quarter: quarter}
}

// YearlyPeriod keys a yearly aggregate.
func YearlyPeriod(year int) Period {
	return Period{Type: Yearly, Year: year}
}

// Key returns the human-readable period identifier used in headings.
func (p Period) Key() string {
	switch p.Type {
	case Daily:
		return p.Date.Format(goal.DateFormat)
	case Weekly:
		return fmt.Sprintf("week %d of %d", p.Week, p.Year)
	case Monthly:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	case Quarterly:
		return fmt.Sprintf("Q%d %d", p.Quarter, p.Year)
	case Yearly:
		return fmt.Sprintf("%d", p.Year)
	}
	return ""
}

// RelPath returns the record path relative to the reflections directory.
// The layout is fixed; any reimplementation must preserve it bit for bit.
func (p Period) RelPath() string {
	switch p.Type {
	case Daily:
		return filepath.Join("daily", p.Date.Format("2006"), p.Date.Format("01"),
			p.Date.Format(goal.DateFormat)+".md")
	case Weekly:
		return filepath.Join("weekly", fmt.Sprintf("%04d", p.Year),
			fmt.Sprintf("week_%02d_%04d.md", p.Week, p.Year))
	case Monthly:
		return filepath.Join("monthly", fmt.Sprintf("%04d", p.Year),
			fmt.Sprintf("%04d-%02d.md", p.Year, p.Month))
	case Quarterly:
		return filepath.Join("quarterly", fmt.Sprintf("%04d", p.Year),
			fmt.Sprintf("Q%d_%04d.md", p.Quarter, p.Year))
	case Yearly:
		return filepath.Join("yearly", fmt.Sprintf("%04d.md", p.Year))
	}
	return ""
}

// Range returns the inclusive day range the period covers.
func (p Period) Range() (time.Time, time.Time) {
	switch p.Type {
	case Daily:
		d := midnight(p.Date)
		return d, d
	case Weekly:
		start := isoWeekStart(p.Year, p.Week)
		return start, start.AddDate(0, 0, 6)
	case Monthly:
		start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	case Quarterly:
		start := time.Date(p.Year, time.Month((p.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, -1)
	case Yearly:
		start := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, -1)
	}
	return time.Time{}, time.Time{}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekStart returns the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// PlannedKR is a tactical key-result target copied into the reflection at
// generation time. Value is what the user records for the period; the metrics
// updater reconciles it against the live goal later.
type PlannedKR struct {
	Description string
	Value       int
	Done        bool
}

// GoalPlan is the immutable snapshot of one goal taken when the reflection
// was generated. GoalID is a weak reference: the goal may be cancelled later
// without invalidating this historical record.
type GoalPlan struct {
	GoalID     string
	Status     goal.Status
	Objective  string
	Operations []record.Checkbox
	Tactics    []PlannedKR
}

// Ratings is the bounded self-rating vector (1-10, 0 means unset).
type Ratings struct {
	DayScore   int
	Energy     int
	Motivation int
	Focus      int
}

// Reflection is one record per calendar period.
type Reflection struct {
	Period     Period
	Plans      []GoalPlan
	Evidence   []record.Checkbox
	Obstacles  []string
	Helped     []string
	Ratings    Ratings
	Insights   string
	Tomorrow   string
	Commentary string
}

// DoneOperations returns all completed operational actions with their
// originating goal ids.
func (r *Reflection) DoneOperations() map[string][]string {
	out := make(map[string][]string)
	for _, p := range r.Plans {
		for _, op := range p.Operations {
			if op.Done {
				out[p.GoalID] = append(out[p.GoalID], op.Text)
			}
		}
	}
	return out
}

// HasCompletionSignals reports whether anything in the reflection is marked
// done or carries a recorded key-result value. A reflection without signals
// is a no-op for the metrics updater.
func (r *Reflection) HasCompletionSignals() bool {
	for _, p := range r.Plans {
		for _, op := range p.Operations {
			if op.Done {
				return true
			}
		}
		for _, kr := range p.Tactics {
			if kr.Done || kr.Value > 0 {
				return true
			}
		}
	}
	for _, ev := range r.Evidence {
		if ev.Done {
			return true
		}
	}
	return false
}
