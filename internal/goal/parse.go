package goal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goalkit/goalkit/internal/record"
)

// Section headings of the canonical goal document.
const (
	SectionStrategy       = "## STRATEGY"
	SectionTactics        = "## TACTICS"
	SectionOperations     = "## OPERATIONS"
	SectionCriticalEvents = "## CRITICAL EVENTS"
	SectionHistory        = "## CHANGE HISTORY"
)

// RequiredSections are the blocks every goal document must carry, even when
// sparse. Their absence makes the file unreadable (and auto-repairable).
var RequiredSections = []string{SectionStrategy, SectionTactics, SectionOperations}

var (
	titleRe     = regexp.MustCompile(`(?m)^# Goal:\s*(.+)$`)
	keyResultRe = regexp.MustCompile(`^\[(\d+)%\]\s*(.+)$`)
	ifThenRe    = regexp.MustCompile(`^IF\s+(.+?)\s+THEN\s+(.+)$`)
	tinyHabitRe = regexp.MustCompile(`^After\s+(.+?)\s+(?:->|→)\s+(.+)$`)
	datedItemRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}):\s*(.+)$`)
	historyRe   = regexp.MustCompile(`^- (\S+) \[([A-Z_]+)\]\s*(.*)$`)
	eventSubRe  = regexp.MustCompile(`^\s+- Event:\s*(.+)$`)
)

// Parse decodes a goal document. Missing required sections yield a
// *record.ParseError; anything else is defaulted best-effort so partially
// filled templates still load.
func Parse(path, id, content string) (*Goal, error) {
	var missing []string
	for _, s := range RequiredSections {
		if _, ok := record.Section(content, s); !ok {
			missing = append(missing, strings.TrimPrefix(s, "## "))
		}
	}
	if len(missing) > 0 {
		return nil, &record.ParseError{
			Path:   path,
			Reason: "missing required sections: " + strings.Join(missing, ", "),
		}
	}

	g := &Goal{ID: id, Status: StatusActive}
	if m := titleRe.FindStringSubmatch(content); m != nil {
		g.Title = strings.TrimSpace(m[1])
	} else {
		g.Title = id
	}
	if v, ok := record.Field(content, "Status"); ok && ValidStatus(Status(v)) {
		g.Status = Status(v)
	}
	if v, ok := record.Field(content, "Created"); ok {
		g.Created, _ = time.Parse(DateFormat, v)
	}
	if v, ok := record.Field(content, "Updated"); ok {
		g.Updated, _ = time.Parse(DateFormat, v)
	}

	strategy, _ := record.Section(content, SectionStrategy)
	if v, ok := record.Field(strategy, "Identity"); ok {
		g.Identity = v
	}
	g.Evidence = parseDatedItems(record.FieldBullets(strategy, "Evidence"))

	parseTactics(content, g)
	parseOperations(content, g)

	if events, ok := record.Section(content, SectionCriticalEvents); ok {
		g.CriticalEvents = parseDatedItems(record.Bullets(events))
	}
	if history, ok := record.Section(content, SectionHistory); ok {
		g.History = parseHistory(history)
	}
	return g, nil
}

func parseTactics(content string, g *Goal) {
	tactics, _ := record.Section(content, SectionTactics)
	method, _ := record.Field(tactics, "Method")

	if obj, ok := record.Section(tactics, "### Objective"); ok {
		g.Tactics.Objective = strings.TrimSpace(obj)
	}
	if krs, ok := record.Section(tactics, "### Key Results"); ok {
		for _, item := range record.Bullets(krs) {
			kr := KeyResult{Description: item}
			if m := keyResultRe.FindStringSubmatch(item); m != nil {
				kr.Progress, _ = strconv.Atoi(m[1])
				kr.Description = strings.TrimSpace(m[2])
			}
			g.Tactics.KeyResults = append(g.Tactics.KeyResults, kr)
		}
	}
	if smart, ok := record.Section(tactics, "### SMART Goal"); ok {
		body := smart
		if v, fOK := record.Field(smart, "Progress"); fOK {
			g.Tactics.Progress = parsePercent(v)
			body = strings.Split(body, "**Progress:**")[0]
		}
		g.Tactics.SMARTGoal = strings.TrimSpace(body)
	}

	switch {
	case method == string(MethodSMART) || (method == "" && g.Tactics.SMARTGoal != ""):
		g.Tactics.Method = MethodSMART
		g.Tactics.Objective = ""
		g.Tactics.KeyResults = nil
	default:
		g.Tactics.Method = MethodOKR
		g.Tactics.SMARTGoal = ""
		g.Tactics.Progress = 0
	}
}

func parseOperations(content string, g *Goal) {
	ops, _ := record.Section(content, SectionOperations)
	if ifThen, ok := record.Section(ops, "### If-Then"); ok {
		for _, item := range record.Bullets(ifThen) {
			if m := ifThenRe.FindStringSubmatch(item); m != nil {
				g.IfThen = append(g.IfThen, IfThen{Trigger: m[1], Action: m[2]})
			}
		}
	}
	if tiny, ok := record.Section(ops, "### Tiny Habits"); ok {
		for _, item := range record.Bullets(tiny) {
			if m := tinyHabitRe.FindStringSubmatch(item); m != nil {
				g.TinyHabits = append(g.TinyHabits, TinyHabit{Anchor: m[1], Action: m[2]})
			}
		}
	}
}

func parseDatedItems(items []string) []Evidence {
	var out []Evidence
	for _, item := range items {
		ev := Evidence{Description: item}
		if m := datedItemRe.FindStringSubmatch(item); m != nil {
			ev.Date, _ = time.Parse(DateFormat, m[1])
			ev.Description = strings.TrimSpace(m[2])
		}
		out = append(out, ev)
	}
	return out
}

func parseHistory(body string) []ChangeEntry {
	var out []ChangeEntry
	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines); i++ {
		m := historyRe.FindStringSubmatch(strings.TrimRight(lines[i], " "))
		if m == nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, m[1])
		if err != nil {
			continue
		}
		entry := ChangeEntry{Timestamp: ts, Type: ChangeType(m[2]), Description: strings.TrimSpace(m[3])}
		if i+1 < len(lines) {
			if em := eventSubRe.FindStringSubmatch(lines[i+1]); em != nil {
				entry.Event = strings.TrimSpace(em[1])
				i++
			}
		}
		out = append(out, entry)
	}
	return out
}

func parsePercent(v string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "%"))
	return n
}
