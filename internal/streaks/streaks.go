// Package streaks derives consecutive-day habit completion runs from the
// daily reflection sequence.
package streaks

import (
	"regexp"
	"strings"
	"time"

	"github.com/goalkit/goalkit/internal/reflection"
)

// StreakResult describes one habit's completion record as of a date.
type StreakResult struct {
	Current   int                      `json:"current"`
	Max       int                      `json:"max"`
	ByWeekday map[time.Weekday]float64 `json:"by_weekday"`
	Rate7d    float64                  `json:"rate_7d"`
	Rate30d   float64                  `json:"rate_30d"`
	RateAll   float64                  `json:"rate_all"`
}

// Tracker scans reflections for habit completion. The window bounds how far
// back history is considered.
type Tracker struct {
	store      *reflection.Store
	windowDays int
}

// NewTracker creates a tracker over the reflection store.
func NewTracker(store *reflection.Store, windowDays int) *Tracker {
	return &Tracker{store: store, windowDays: windowDays}
}

// Compute walks the reflection sequence backward from asOf. A day counts
// toward the current streak iff a reflection exists for it and the habit is
// marked complete; a missing reflection breaks the streak exactly like an
// incomplete one.
func (t *Tracker) Compute(habitKey string, asOf time.Time) *StreakResult {
	history := t.completionHistory(habitKey, asOf)

	res := &StreakResult{ByWeekday: map[time.Weekday]float64{}}

	// Current streak: backward from asOf to the first broken day.
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].completed {
			break
		}
		res.Current++
	}

	// Max streak: single forward pass over the full window.
	run := 0
	for _, day := range history {
		if day.completed {
			run++
			if run > res.Max {
				res.Max = run
			}
		} else {
			run = 0
		}
	}

	res.Rate7d = completionRate(tail(history, 7))
	res.Rate30d = completionRate(tail(history, 30))
	res.RateAll = completionRate(history)

	byDay := map[time.Weekday][2]int{}
	for _, day := range history {
		counts := byDay[day.date.Weekday()]
		counts[1]++
		if day.completed {
			counts[0]++
		}
		byDay[day.date.Weekday()] = counts
	}
	for wd, counts := range byDay {
		if counts[1] > 0 {
			res.ByWeekday[wd] = float64(counts[0]) * 100 / float64(counts[1])
		}
	}
	return res
}

type dayCompletion struct {
	date      time.Time
	completed bool
}

// completionHistory builds the oldest-first window ending at asOf. Days with
// no reflection, or reflections that fail to parse, count as incomplete.
func (t *Tracker) completionHistory(habitKey string, asOf time.Time) []dayCompletion {
	history := make([]dayCompletion, 0, t.windowDays)
	for i := t.windowDays - 1; i >= 0; i-- {
		date := asOf.AddDate(0, 0, -i)
		completed := false
		r, err := t.store.Load(reflection.DailyPeriod(date))
		if err == nil {
			completed = habitDone(r, habitKey)
		}
		history = append(history, dayCompletion{date: date, completed: completed})
	}
	return history
}

var wordRe = regexp.MustCompile(`\w+`)

// habitDone reports whether the named habit's action is checked in the
// reflection. Generated plans carry habit text verbatim, so an exact match
// is tried first; hand-edited lines fall back to keyword overlap, requiring
// at least half of the habit's words.
func habitDone(r *reflection.Reflection, habitKey string) bool {
	keyLower := strings.ToLower(strings.TrimSpace(habitKey))
	keyWords := wordSet(keyLower)
	for _, p := range r.Plans {
		for _, op := range p.Operations {
			if !op.Done {
				continue
			}
			opLower := strings.ToLower(strings.TrimSpace(op.Text))
			if opLower == keyLower {
				return true
			}
			if len(keyWords) > 0 && overlap(keyWords, wordSet(opLower))*2 >= len(keyWords) {
				return true
			}
		}
	}
	return false
}

func wordSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range wordRe.FindAllString(s, -1) {
		out[w] = true
	}
	return out
}

func overlap(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func completionRate(history []dayCompletion) float64 {
	if len(history) == 0 {
		return 0
	}
	done := 0
	for _, d := range history {
		if d.completed {
			done++
		}
	}
	return float64(done) * 100 / float64(len(history))
}

func tail(history []dayCompletion, n int) []dayCompletion {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
