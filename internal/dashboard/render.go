package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// RenderDayMarkdown produces the daily dashboard document.
func RenderDayMarkdown(d *DayData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Dashboard: %s\n\n", d.Date.Format(goal.DateFormat))

	b.WriteString("## Goals\n\n")
	if len(d.Goals) == 0 {
		b.WriteString("No goals yet. Create one with `goalkit init` and a goal file.\n")
	}
	for _, g := range d.Goals {
		fmt.Fprintf(&b, "- **%s** (%s, %s) - %d%% complete, %d evidence entries\n",
			g.Title, g.Status, g.Method, g.Progress, g.Evidence)
	}
	b.WriteString("\n## Today\n\n")
	if d.HasDaily {
		fmt.Fprintf(&b, "**Operations:** %d%%\n", d.Operations)
		fmt.Fprintf(&b, "**Tactics:** %d%%\n", d.Tactics)
		fmt.Fprintf(&b, "**Evidence:** %d\n", d.Evidence)
		if d.DayScore > 0 {
			fmt.Fprintf(&b, "**Day score:** %d/10\n", d.DayScore)
		}
	} else {
		b.WriteString("No reflection recorded for this date.\n")
	}

	if len(d.TopStreaks) > 0 {
		b.WriteString("\n## Streaks\n\n")
		for _, h := range d.TopStreaks {
			fmt.Fprintf(&b, "- %s: %d days\n", h.Name, h.Current)
		}
	}

	if len(d.Errors) > 0 {
		b.WriteString("\n## Issues\n\n")
		for _, e := range d.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

var dayHTMLTmpl = template.Must(template.New("day").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Daily Dashboard {{.Date}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2430; }
h1 { border-bottom: 2px solid #5b8def; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #e2e6ef; }
.bar { background: #e2e6ef; border-radius: 4px; height: 10px; width: 160px; }
.bar span { display: block; background: #5b8def; border-radius: 4px; height: 10px; }
.muted { color: #7a8194; }
</style>
</head>
<body>
<h1>Daily Dashboard: {{.Date}}</h1>
<h2>Goals</h2>
{{if .Goals}}
<table>
<tr><th>Goal</th><th>Status</th><th>Method</th><th>Progress</th><th>Evidence</th></tr>
{{range .Goals}}
<tr>
<td>{{.Title}}</td>
<td>{{.Status}}</td>
<td>{{.Method}}</td>
<td><div class="bar"><span style="width: {{.Progress}}%"></span></div> {{.Progress}}%</td>
<td>{{.Evidence}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="muted">No goals yet.</p>
{{end}}
<h2>Today</h2>
{{if .HasDaily}}
<ul>
<li>Operations: {{.Operations}}%</li>
<li>Tactics: {{.Tactics}}%</li>
<li>Evidence: {{.Evidence}}</li>
{{if .DayScore}}<li>Day score: {{.DayScore}}/10</li>{{end}}
</ul>
{{else}}
<p class="muted">No reflection recorded for this date.</p>
{{end}}
{{if .TopStreaks}}
<h2>Streaks</h2>
<ul>
{{range .TopStreaks}}<li>{{.Name}}: {{.Current}} days</li>
{{end}}
</ul>
{{end}}
</body>
</html>
`))

type dayHTMLData struct {
	Date       string
	Goals      []GoalRow
	HasDaily   bool
	Operations int
	Tactics    int
	Evidence   int
	DayScore   int
	TopStreaks []struct {
		Name    string
		Current int
	}
}

// RenderDayHTML produces the HTML variant of the daily dashboard.
func RenderDayHTML(d *DayData) ([]byte, error) {
	data := dayHTMLData{
		Date:       d.Date.Format(goal.DateFormat),
		Goals:      d.Goals,
		HasDaily:   d.HasDaily,
		Operations: d.Operations,
		Tactics:    d.Tactics,
		Evidence:   d.Evidence,
		DayScore:   d.DayScore,
	}
	for _, h := range d.TopStreaks {
		data.TopStreaks = append(data.TopStreaks, struct {
			Name    string
			Current int
		}{h.Name, h.Current})
	}
	var buf bytes.Buffer
	if err := dayHTMLTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render dashboard html: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWeekMarkdown produces the weekly dashboard document with a
// comparison against the previous week.
func RenderWeekMarkdown(w *WeekData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Dashboard: %s\n\n", w.Period.Key())

	cur := w.Current
	fmt.Fprintf(&b, "**Days tracked:** %d\n", len(cur.Days))
	fmt.Fprintf(&b, "**Operations:** %.0f%%%s\n", cur.AvgOperations, deltaOps(w))
	fmt.Fprintf(&b, "**Tactics:** %.0f%%%s\n", cur.AvgTactics, deltaTactics(w))
	fmt.Fprintf(&b, "**Evidence:** %d\n", cur.TotalEvidence)
	if cur.AvgDayScore > 0 {
		fmt.Fprintf(&b, "**Avg day score:** %.1f/10\n", cur.AvgDayScore)
	}

	b.WriteString("\n## Days\n\n")
	for _, day := range cur.Days {
		fmt.Fprintf(&b, "- %s: operations %d%%, tactics %d%%, evidence %d\n",
			day.Date.Format(goal.DateFormat), day.OperationsPercent, day.TacticsPercent, day.EvidenceCount)
	}

	b.WriteString("\n## Insights\n\n")
	for _, ins := range w.Insights {
		fmt.Fprintf(&b, "- %s\n", ins)
	}
	return b.String()
}

func deltaOps(w *WeekData) string {
	if w.Previous == nil {
		return ""
	}
	return delta(w.Current.AvgOperations - w.Previous.AvgOperations)
}

func deltaTactics(w *WeekData) string {
	if w.Previous == nil {
		return ""
	}
	return delta(w.Current.AvgTactics - w.Previous.AvgTactics)
}

func delta(d float64) string {
	switch {
	case d >= 0.5:
		return fmt.Sprintf(" (+%.0f vs last week)", d)
	case d <= -0.5:
		return fmt.Sprintf(" (%.0f vs last week)", d)
	default:
		return " (flat vs last week)"
	}
}

var weekHTMLTmpl = template.Must(template.New("week").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Weekly Dashboard {{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2430; }
h1 { border-bottom: 2px solid #5b8def; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #e2e6ef; }
.bar { background: #e2e6ef; border-radius: 4px; height: 10px; width: 160px; }
.bar span { display: block; background: #5b8def; border-radius: 4px; height: 10px; }
.muted { color: #7a8194; }
</style>
</head>
<body>
<h1>Weekly Dashboard: {{.Title}}</h1>
<ul>
<li>Days tracked: {{.DaysTracked}}</li>
<li>Operations: {{.Operations}}{{.OpsDelta}}</li>
<li>Tactics: {{.Tactics}}{{.TacticsDelta}}</li>
<li>Evidence: {{.Evidence}}</li>
{{if .DayScore}}<li>Avg day score: {{.DayScore}}/10</li>{{end}}
</ul>
<h2>Days</h2>
<table>
<tr><th>Date</th><th>Operations</th><th>Tactics</th><th>Evidence</th></tr>
{{range .Days}}
<tr>
<td>{{.Date}}</td>
<td><div class="bar"><span style="width: {{.Operations}}%"></span></div> {{.Operations}}%</td>
<td>{{.Tactics}}%</td>
<td>{{.Evidence}}</td>
</tr>
{{end}}
</table>
<h2>Insights</h2>
<ul>
{{range .Insights}}<li>{{.}}</li>
{{end}}
</ul>
</body>
</html>
`))

type weekHTMLRow struct {
	Date       string
	Operations int
	Tactics    int
	Evidence   int
}

type weekHTMLData struct {
	Title        string
	DaysTracked  int
	Operations   string
	OpsDelta     string
	Tactics      string
	TacticsDelta string
	Evidence     int
	DayScore     string
	Days         []weekHTMLRow
	Insights     []string
}

// RenderWeekHTML produces the HTML variant of the weekly dashboard.
func RenderWeekHTML(w *WeekData) ([]byte, error) {
	cur := w.Current
	data := weekHTMLData{
		Title:        w.Period.Key(),
		DaysTracked:  len(cur.Days),
		Operations:   fmt.Sprintf("%.0f%%", cur.AvgOperations),
		OpsDelta:     deltaOps(w),
		Tactics:      fmt.Sprintf("%.0f%%", cur.AvgTactics),
		TacticsDelta: deltaTactics(w),
		Evidence:     cur.TotalEvidence,
		Insights:     w.Insights,
	}
	if cur.AvgDayScore > 0 {
		data.DayScore = fmt.Sprintf("%.1f", cur.AvgDayScore)
	}
	for _, day := range cur.Days {
		data.Days = append(data.Days, weekHTMLRow{
			Date:       day.Date.Format(goal.DateFormat),
			Operations: day.OperationsPercent,
			Tactics:    day.TacticsPercent,
			Evidence:   day.EvidenceCount,
		})
	}
	var buf bytes.Buffer
	if err := weekHTMLTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render weekly dashboard html: %w", err)
	}
	return buf.Bytes(), nil
}

// DayPaths returns the markdown and HTML output paths for a date.
func DayPaths(dashboardsDir string, date time.Time) (mdPath, htmlPath string) {
	base := filepath.Join(dashboardsDir, "daily", date.Format(goal.DateFormat))
	return base + ".md", base + ".html"
}

// WriteDay persists both daily dashboard variants.
func WriteDay(dashboardsDir string, d *DayData) (mdPath, htmlPath string, err error) {
	mdPath, htmlPath = DayPaths(dashboardsDir, d.Date)
	if err := record.WriteFileAtomic(mdPath, []byte(RenderDayMarkdown(d))); err != nil {
		return "", "", fmt.Errorf("write daily dashboard: %w", err)
	}
	html, err := RenderDayHTML(d)
	if err != nil {
		return "", "", err
	}
	if err := record.WriteFileAtomic(htmlPath, html); err != nil {
		return "", "", fmt.Errorf("write daily dashboard html: %w", err)
	}
	return mdPath, htmlPath, nil
}

// WeekPaths returns the markdown and HTML output paths for an ISO week.
func WeekPaths(dashboardsDir string, year, week int) (mdPath, htmlPath string) {
	base := filepath.Join(dashboardsDir, "weekly", fmt.Sprintf("week_%02d_%04d", week, year))
	return base + ".md", base + ".html"
}

// WriteWeek persists both weekly dashboard variants.
func WriteWeek(dashboardsDir string, w *WeekData) (mdPath, htmlPath string, err error) {
	mdPath, htmlPath = WeekPaths(dashboardsDir, w.Period.Year, w.Period.Week)
	if err := record.WriteFileAtomic(mdPath, []byte(RenderWeekMarkdown(w))); err != nil {
		return "", "", fmt.Errorf("write weekly dashboard: %w", err)
	}
	html, err := RenderWeekHTML(w)
	if err != nil {
		return "", "", err
	}
	if err := record.WriteFileAtomic(htmlPath, html); err != nil {
		return "", "", fmt.Errorf("write weekly dashboard html: %w", err)
	}
	return mdPath, htmlPath, nil
}
