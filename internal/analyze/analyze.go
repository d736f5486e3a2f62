// Package analyze generates the commentary block of a daily reflection and
// detects critical events hidden in the user's own words.
package analyze

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
	"github.com/goalkit/goalkit/internal/reflection"
)

// DetectedEvent is one external or voluntary change found in the
// reflection's free text.
type DetectedEvent struct {
	GoalID string
	Type   goal.ChangeType
	Phrase string // the sentence the keyword was found in
}

// Result reports what one analysis pass did.
type Result struct {
	Date            time.Time
	Commentary      string
	Events          []DetectedEvent
	HistoryAppended int
	Rewritten       bool // commentary replaced an earlier analysis
}

// Summary is the one-line operator report.
func (r *Result) Summary() string {
	return fmt.Sprintf("analyzed %s: %d events detected, %d history entries added",
		r.Date.Format(goal.DateFormat), len(r.Events), r.HistoryAppended)
}

// Analyzer runs commentary generation over daily reflections.
type Analyzer struct {
	goals       *goal.Store
	reflections *reflection.Store
	now         func() time.Time
}

// NewAnalyzer wires an analyzer over the stores.
func NewAnalyzer(goals *goal.Store, reflections *reflection.Store) *Analyzer {
	return &Analyzer{goals: goals, reflections: reflections, now: time.Now}
}

// Keyword tables for event detection. Matching is case-insensitive and runs
// over obstacles and insights only, where the user narrates what happened.
var forcedKeywords = []string{
	"injury", "injured", "sick", "illness", "hospital", "emergency",
	"deadline moved", "cancelled on me", "lost my", "broke", "forced to",
	"out of my control", "laid off",
}

var voluntaryKeywords = []string{
	"decided to", "switching to", "no longer want", "changing approach",
	"pivot", "giving up on", "chose to drop",
}

// Analyze loads the daily reflection for date, writes the AI COMMENTARY
// section in place, and propagates detected forced or voluntary changes into
// the history of every goal the reflection plans for. Re-running over an
// already analyzed day rewrites the commentary but never duplicates history
// entries.
func (a *Analyzer) Analyze(date time.Time) (*Result, error) {
	period := reflection.DailyPeriod(date)
	r, err := a.reflections.Load(period)
	if err != nil {
		return nil, err
	}

	res := &Result{Date: date, Rewritten: r.Commentary != ""}
	res.Events = a.detectEvents(r)
	res.Commentary = buildCommentary(r, res.Events)

	appended, err := a.propagateEvents(period, res.Events)
	if err != nil {
		return nil, err
	}
	res.HistoryAppended = appended

	if err := a.writeCommentary(period, res.Commentary); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *Analyzer) detectEvents(r *reflection.Reflection) []DetectedEvent {
	var sentences []string
	sentences = append(sentences, r.Obstacles...)
	sentences = append(sentences, splitSentences(r.Insights)...)

	var out []DetectedEvent
	for _, s := range sentences {
		lower := strings.ToLower(s)
		typ := goal.ChangeType("")
		for _, kw := range forcedKeywords {
			if strings.Contains(lower, kw) {
				typ = goal.ChangeForced
				break
			}
		}
		if typ == "" {
			for _, kw := range voluntaryKeywords {
				if strings.Contains(lower, kw) {
					typ = goal.ChangeVoluntary
					break
				}
			}
		}
		if typ == "" {
			continue
		}
		for _, p := range r.Plans {
			out = append(out, DetectedEvent{GoalID: p.GoalID, Type: typ, Phrase: strings.TrimSpace(s)})
		}
	}
	return out
}

// propagateEvents appends detected changes to goal histories, keyed so a
// re-run finds the entry already present and skips it.
func (a *Analyzer) propagateEvents(period reflection.Period, events []DetectedEvent) (int, error) {
	appended := 0
	for _, ev := range events {
		desc := fmt.Sprintf("detected in reflection %s: %s", period.Key(), truncate(ev.Phrase, 120))
		g, err := a.goals.Load(ev.GoalID)
		if err != nil {
			log.Warn().Err(err).Str("goal", ev.GoalID).Msg("skipping event for unloadable goal")
			continue
		}
		if hasHistoryEntry(g, ev.Type, desc) {
			continue
		}
		entry := goal.ChangeEntry{
			Timestamp:   a.now(),
			Type:        ev.Type,
			Description: desc,
		}
		if ev.Type == goal.ChangeForced {
			entry.Event = truncate(ev.Phrase, 120)
		}
		if err := a.goals.AppendHistory(ev.GoalID, entry); err != nil {
			return appended, fmt.Errorf("append history to %s: %w", ev.GoalID, err)
		}
		appended++
	}
	return appended, nil
}

func hasHistoryEntry(g *goal.Goal, typ goal.ChangeType, desc string) bool {
	for _, h := range g.History {
		if h.Type == typ && h.Description == desc {
			return true
		}
	}
	return false
}

// writeCommentary rewrites only the AI COMMENTARY section, preserving every
// other byte of the user's reflection.
func (a *Analyzer) writeCommentary(period reflection.Period, commentary string) error {
	raw, err := a.reflections.ReadRaw(period)
	if err != nil {
		return err
	}
	updated := record.ReplaceSection(raw, reflection.SectionCommentary, commentary)
	if updated == raw {
		return nil
	}
	return a.reflections.WriteRaw(period, updated)
}

func buildCommentary(r *reflection.Reflection, events []DetectedEvent) string {
	stat := reflection.DayStats(r)
	var b strings.Builder

	b.WriteString("### Analysis\n\n")
	fmt.Fprintf(&b, "- Operations completed: %d%%\n", stat.OperationsPercent)
	fmt.Fprintf(&b, "- Tactics progress recorded: %d%%\n", stat.TacticsPercent)
	fmt.Fprintf(&b, "- Evidence collected: %d\n", stat.EvidenceCount)
	if stat.DayScore > 0 {
		fmt.Fprintf(&b, "- Day score: %d/10\n", stat.DayScore)
	}

	b.WriteString("\n### Recommendations\n\n")
	recs := recommendations(r, stat)
	for _, rec := range recs {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	if len(events) > 0 {
		b.WriteString("\n### Adaptations\n\n")
		seen := map[string]bool{}
		for _, ev := range events {
			line := fmt.Sprintf("%s signal: %q", ev.Type, truncate(ev.Phrase, 120))
			if seen[line] {
				continue
			}
			seen[line] = true
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func recommendations(r *reflection.Reflection, stat reflection.DayStat) []string {
	var out []string
	switch {
	case stat.OperationsPercent >= 80:
		out = append(out, "Execution is strong. Consider raising the bar on one habit.")
	case stat.OperationsPercent < 50 && stat.OperationsPercent > 0:
		out = append(out, "Under half the planned operations were done. Plan fewer, smaller steps tomorrow.")
	case stat.OperationsPercent == 0:
		out = append(out, "No operations completed. Pick one tiny habit and anchor it to an existing routine.")
	}
	if stat.EvidenceCount == 0 {
		out = append(out, "No evidence recorded. Write down at least one observable result per day.")
	}
	if len(r.Obstacles) > 0 && len(r.Helped) == 0 {
		out = append(out, "Obstacles noted without helpers. Name what worked so it can be repeated.")
	}
	if r.Tomorrow == "" {
		out = append(out, "Tomorrow's focus is empty. End each reflection with one concrete next step.")
	}
	if len(out) == 0 {
		out = append(out, "Keep the current cadence.")
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if line == "" {
			continue
		}
		for _, s := range strings.FieldsFunc(line, func(r rune) bool { return r == '.' || r == '!' || r == '?' }) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	n -= 3
	// Back up to a rune boundary so multibyte text is never cut mid-rune.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
