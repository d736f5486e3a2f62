package streaks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goalkit/goalkit/internal/goal"
)

// HabitStreak pairs a habit with its computed streaks.
type HabitStreak struct {
	Name   string `json:"name"`
	GoalID string `json:"goal"`
	StreakResult
}

// Report is the streak snapshot for every habit of the active goals. The
// JSON form feeds the dashboards; the markdown form is the human report.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	AsOf        string        `json:"as_of"`
	Habits      []HabitStreak `json:"habits"`
}

// BuildReport computes streaks for every habit declared by the given goals.
func BuildReport(t *Tracker, goals []*goal.Goal, asOf time.Time) *Report {
	report := &Report{GeneratedAt: time.Now().UTC(), AsOf: asOf.Format(goal.DateFormat)}
	for _, g := range goals {
		for _, habit := range g.Habits() {
			report.Habits = append(report.Habits, HabitStreak{
				Name:         habit,
				GoalID:       g.ID,
				StreakResult: *t.Compute(habit, asOf),
			})
		}
	}
	return report
}

// JSON encodes the report for dashboard consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Top returns the n habits with the longest current streaks.
func (r *Report) Top(n int) []HabitStreak {
	top := make([]HabitStreak, len(r.Habits))
	copy(top, r.Habits)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Current > top[j].Current })
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// RenderMarkdown writes the human-readable streak report.
func RenderMarkdown(r *Report) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Habit Streaks: %s\n\n", r.AsOf)

	b.WriteString("## Most stable habits\n\n")
	for i, h := range r.Top(5) {
		fmt.Fprintf(&b, "%d. %s - streak %d days (7d: %.0f%%)\n", i+1, truncate(h.Name, 60), h.Current, h.Rate7d)
	}

	b.WriteString("\n## Needs attention\n\n")
	attention := 0
	for _, h := range r.Habits {
		if h.Current == 0 && h.Rate30d < 60 {
			fmt.Fprintf(&b, "- %s - streak 0 days (30d: %.0f%%)\n", truncate(h.Name, 60), h.Rate30d)
			attention++
		}
	}
	if attention == 0 {
		b.WriteString("All habits are in good shape.\n")
	}

	b.WriteString("\n## Weekday patterns\n\n")
	byDay := map[time.Weekday][]float64{}
	for _, h := range r.Habits {
		for wd, rate := range h.ByWeekday {
			byDay[wd] = append(byDay[wd], rate)
		}
	}
	if best, worst, ok := bestWorstWeekday(byDay); ok {
		fmt.Fprintf(&b, "- Best weekday: %s (%.0f%% completion)\n", best.day, best.rate)
		fmt.Fprintf(&b, "- Worst weekday: %s (%.0f%% completion)\n", worst.day, worst.rate)
	} else {
		b.WriteString("Not enough history yet.\n")
	}
	return []byte(b.String())
}

type weekdayRate struct {
	day  time.Weekday
	rate float64
}

func bestWorstWeekday(byDay map[time.Weekday][]float64) (best, worst weekdayRate, ok bool) {
	var rates []weekdayRate
	for wd, values := range byDay {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		rates = append(rates, weekdayRate{day: wd, rate: sum / float64(len(values))})
	}
	if len(rates) == 0 {
		return weekdayRate{}, weekdayRate{}, false
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].rate != rates[j].rate {
			return rates[i].rate > rates[j].rate
		}
		return rates[i].day < rates[j].day
	})
	return rates[0], rates[len(rates)-1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back up to a rune boundary so multibyte text is never cut mid-rune.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
