package goal

import (
	"fmt"
	"strings"
	"time"
)

// Render serializes a goal into its canonical document form. Parse(Render(g))
// reproduces g, so repeated load/save cycles are stable.
func Render(g *Goal) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Goal: %s\n\n", g.Title)
	fmt.Fprintf(&b, "**Status:** %s\n", g.Status)
	fmt.Fprintf(&b, "**Created:** %s\n", formatDate(g.Created))
	fmt.Fprintf(&b, "**Updated:** %s\n\n", formatDate(g.Updated))

	b.WriteString(SectionStrategy + "\n\n")
	fmt.Fprintf(&b, "**Identity:** %s\n\n", g.Identity)
	b.WriteString("**Evidence:**\n")
	for _, ev := range g.Evidence {
		writeDatedItem(&b, ev)
	}
	b.WriteString("\n")

	b.WriteString(SectionTactics + "\n\n")
	fmt.Fprintf(&b, "**Method:** %s\n\n", g.Tactics.Method)
	if g.Tactics.Method == MethodSMART {
		b.WriteString("### SMART Goal\n\n")
		if g.Tactics.SMARTGoal != "" {
			b.WriteString(g.Tactics.SMARTGoal + "\n\n")
		}
		fmt.Fprintf(&b, "**Progress:** %d%%\n\n", g.Tactics.Progress)
	} else {
		b.WriteString("### Objective\n\n")
		if g.Tactics.Objective != "" {
			b.WriteString(g.Tactics.Objective + "\n\n")
		}
		b.WriteString("### Key Results\n\n")
		for _, kr := range g.Tactics.KeyResults {
			fmt.Fprintf(&b, "- [%d%%] %s\n", kr.Progress, kr.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString(SectionOperations + "\n\n")
	b.WriteString("### If-Then\n\n")
	for _, r := range g.IfThen {
		fmt.Fprintf(&b, "- IF %s THEN %s\n", r.Trigger, r.Action)
	}
	b.WriteString("\n### Tiny Habits\n\n")
	for _, h := range g.TinyHabits {
		fmt.Fprintf(&b, "- After %s -> %s\n", h.Anchor, h.Action)
	}
	b.WriteString("\n")

	b.WriteString(SectionCriticalEvents + "\n\n")
	for _, ev := range g.CriticalEvents {
		writeDatedItem(&b, ev)
	}
	b.WriteString("\n")

	b.WriteString(SectionHistory + "\n\n")
	for _, e := range g.History {
		fmt.Fprintf(&b, "- %s [%s] %s\n", e.Timestamp.UTC().Format(time.RFC3339), e.Type, e.Description)
		if e.Event != "" {
			fmt.Fprintf(&b, "  - Event: %s\n", e.Event)
		}
	}

	out := strings.TrimRight(b.String(), "\n") + "\n"
	return []byte(out)
}

func writeDatedItem(b *strings.Builder, ev Evidence) {
	if ev.Date.IsZero() {
		fmt.Fprintf(b, "- %s\n", ev.Description)
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", ev.Date.Format(DateFormat), ev.Description)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}
