package reflection

import (
	"fmt"
	"strings"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// SMARTTargetLabel names the single tactical target of a SMART goal in a
// reflection plan, where OKR goals list their key results instead.
const SMARTTargetLabel = "Overall progress"

// Generate builds a fresh daily reflection from the active goals: an
// immutable snapshot of each goal's operations and tactical targets as
// observed at generation time.
func Generate(period Period, goals []*goal.Goal) *Reflection {
	r := &Reflection{Period: period}
	for _, g := range goals {
		plan := GoalPlan{GoalID: g.ID, Status: g.Status, Objective: snapshotObjective(g)}
		for _, habit := range g.Habits() {
			plan.Operations = append(plan.Operations, record.Checkbox{Text: habit})
		}
		if g.Tactics.Method == goal.MethodSMART {
			plan.Tactics = append(plan.Tactics, PlannedKR{
				Description: SMARTTargetLabel,
				Value:       g.Tactics.Progress,
			})
		} else {
			for _, kr := range g.Tactics.KeyResults {
				plan.Tactics = append(plan.Tactics, PlannedKR{
					Description: kr.Description,
					Value:       kr.Progress,
				})
			}
		}
		r.Plans = append(r.Plans, plan)

		for _, ev := range g.Evidence {
			r.Evidence = append(r.Evidence, record.Checkbox{Text: ev.Description})
		}
	}
	return r
}

func snapshotObjective(g *goal.Goal) string {
	if g.Tactics.Method == goal.MethodSMART {
		first, _, _ := strings.Cut(strings.TrimSpace(g.Tactics.SMARTGoal), "\n")
		return first
	}
	first, _, _ := strings.Cut(strings.TrimSpace(g.Tactics.Objective), "\n")
	return first
}

// Render serializes a daily reflection into canonical document form.
func Render(r *Reflection) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Reflection: %s\n\n", r.Period.Key())

	b.WriteString(SectionPlan + "\n\n")
	for _, p := range r.Plans {
		fmt.Fprintf(&b, "### Goal: %s\n\n", p.GoalID)
		fmt.Fprintf(&b, "**Status:** %s\n", p.Status)
		fmt.Fprintf(&b, "**Objective:** %s\n\n", p.Objective)
		b.WriteString("#### Operations\n\n")
		writeCheckboxes(&b, p.Operations)
		b.WriteString("\n#### Tactics\n\n")
		for _, kr := range p.Tactics {
			fmt.Fprintf(&b, "- [%s] %s | %d%%\n", mark(kr.Done), kr.Description, kr.Value)
		}
		b.WriteString("\n")
	}

	b.WriteString(SectionEvidence + "\n\n")
	writeCheckboxes(&b, r.Evidence)
	b.WriteString("\n")

	b.WriteString(SectionObstacles + "\n\n")
	b.WriteString("**What hindered:**\n")
	writeBullets(&b, r.Obstacles)
	b.WriteString("\n**What helped:**\n")
	writeBullets(&b, r.Helped)
	b.WriteString("\n")

	b.WriteString(SectionRatings + "\n\n")
	fmt.Fprintf(&b, "**Day score:** %s\n", rating(r.Ratings.DayScore))
	fmt.Fprintf(&b, "**Energy:** %s\n", rating(r.Ratings.Energy))
	fmt.Fprintf(&b, "**Motivation:** %s\n", rating(r.Ratings.Motivation))
	fmt.Fprintf(&b, "**Focus:** %s\n\n", rating(r.Ratings.Focus))

	b.WriteString(SectionInsights + "\n\n")
	if r.Insights != "" {
		b.WriteString(r.Insights + "\n")
	}
	b.WriteString("\n" + SectionTomorrow + "\n\n")
	if r.Tomorrow != "" {
		b.WriteString(r.Tomorrow + "\n")
	}
	b.WriteString("\n" + SectionCommentary + "\n\n")
	if r.Commentary != "" {
		b.WriteString(strings.TrimRight(r.Commentary, "\n") + "\n")
	} else {
		b.WriteString(CommentaryPlaceholder + "\n")
	}

	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}

func writeCheckboxes(b *strings.Builder, items []record.Checkbox) {
	for _, cb := range items {
		fmt.Fprintf(b, "- [%s] %s\n", mark(cb.Done), cb.Text)
	}
}

func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- \n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func mark(done bool) string {
	if done {
		return "x"
	}
	return " "
}

func rating(n int) string {
	if n == 0 {
		return "/10"
	}
	return fmt.Sprintf("%d/10", n)
}
