package reflection

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// Section headings of the canonical daily reflection document.
const (
	SectionPlan       = "## PLAN"
	SectionEvidence   = "## EVIDENCE"
	SectionObstacles  = "## OBSTACLES"
	SectionRatings    = "## RATINGS"
	SectionInsights   = "## INSIGHTS"
	SectionTomorrow   = "## TOMORROW"
	SectionCommentary = "## AI COMMENTARY"
)

// CommentaryPlaceholder marks a reflection whose analysis has not run yet.
const CommentaryPlaceholder = "*Generated after analysis.*"

var (
	goalHeadingRe = regexp.MustCompile(`^### Goal:\s*(\S+)\s*$`)
	ratingRe      = regexp.MustCompile(`^(\d+)(?:/10)?$`)
)

// Parse decodes a daily reflection document. A document without a PLAN
// section is structurally unreadable and yields a *record.ParseError;
// everything else is best-effort.
func Parse(path string, period Period, content string) (*Reflection, error) {
	plan, ok := record.Section(content, SectionPlan)
	if !ok {
		return nil, &record.ParseError{Path: path, Reason: "missing PLAN section"}
	}

	r := &Reflection{Period: period}
	r.Plans = parsePlans(plan)

	if ev, evOK := record.Section(content, SectionEvidence); evOK {
		r.Evidence = record.Checkboxes(ev)
	}
	if obs, obsOK := record.Section(content, SectionObstacles); obsOK {
		r.Obstacles = record.FieldBullets(obs, "What hindered")
		r.Helped = record.FieldBullets(obs, "What helped")
	}
	if ratings, rOK := record.Section(content, SectionRatings); rOK {
		r.Ratings = Ratings{
			DayScore:   parseRating(ratings, "Day score"),
			Energy:     parseRating(ratings, "Energy"),
			Motivation: parseRating(ratings, "Motivation"),
			Focus:      parseRating(ratings, "Focus"),
		}
	}
	if ins, insOK := record.Section(content, SectionInsights); insOK {
		r.Insights = strings.TrimSpace(ins)
	}
	if tom, tomOK := record.Section(content, SectionTomorrow); tomOK {
		r.Tomorrow = strings.TrimSpace(tom)
	}
	if com, comOK := record.Section(content, SectionCommentary); comOK {
		body := strings.TrimSpace(com)
		if body != CommentaryPlaceholder {
			r.Commentary = body
		}
	}
	return r, nil
}

func parsePlans(plan string) []GoalPlan {
	var plans []GoalPlan
	var cur *GoalPlan
	var curBody strings.Builder

	flush := func() {
		if cur == nil {
			return
		}
		body := curBody.String()
		if v, ok := record.Field(body, "Status"); ok {
			cur.Status = goal.Status(v)
		}
		if v, ok := record.Field(body, "Objective"); ok {
			cur.Objective = v
		}
		if ops, ok := record.Section(body, "#### Operations"); ok {
			cur.Operations = record.Checkboxes(ops)
		}
		if tactics, ok := record.Section(body, "#### Tactics"); ok {
			for _, cb := range record.Checkboxes(tactics) {
				cur.Tactics = append(cur.Tactics, parsePlannedKR(cb))
			}
		}
		plans = append(plans, *cur)
		cur = nil
		curBody.Reset()
	}

	for _, line := range strings.Split(plan, "\n") {
		if m := goalHeadingRe.FindStringSubmatch(strings.TrimRight(line, " ")); m != nil {
			flush()
			cur = &GoalPlan{GoalID: m[1], Status: goal.StatusActive}
			continue
		}
		if cur != nil {
			curBody.WriteString(line)
			curBody.WriteString("\n")
		}
	}
	flush()
	return plans
}

// parsePlannedKR splits "description | NN%" task items. Items without a
// recorded value keep Value 0.
func parsePlannedKR(cb record.Checkbox) PlannedKR {
	kr := PlannedKR{Description: cb.Text, Done: cb.Done}
	if idx := strings.LastIndex(cb.Text, "|"); idx >= 0 {
		val := strings.TrimSpace(cb.Text[idx+1:])
		if n, err := strconv.Atoi(strings.TrimSuffix(val, "%")); err == nil {
			kr.Value = n
			kr.Description = strings.TrimSpace(cb.Text[:idx])
		}
	}
	return kr
}

func parseRating(text, name string) int {
	v, ok := record.Field(text, name)
	if !ok {
		return 0
	}
	m := ratingRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
