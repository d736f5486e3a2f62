package validator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// Report bundles a scan (and optional fix pass) for rendering.
type Report struct {
	GeneratedAt time.Time
	Violations  []Violation
	Outcome     *FixOutcome
}

// Clean reports whether the scan found nothing.
func (r *Report) Clean() bool { return len(r.Violations) == 0 }

func (r *Report) countBySeverity(s Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}

// RenderMarkdown produces the validation report document.
func (r *Report) RenderMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Validation Report: %s\n\n", r.GeneratedAt.Format(goal.DateFormat))
	fmt.Fprintf(&b, "**Generated:** %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Total violations:** %d\n", len(r.Violations))
	fmt.Fprintf(&b, "**Critical:** %d\n", r.countBySeverity(Critical))
	fmt.Fprintf(&b, "**Warnings:** %d\n\n", r.countBySeverity(Warning))

	if r.Clean() {
		b.WriteString("All files conform to the canonical layout.\n")
		return b.String()
	}

	for _, sev := range []Severity{Critical, Warning, Recommendation} {
		wrote := false
		for _, v := range r.Violations {
			if v.Severity != sev {
				continue
			}
			if !wrote {
				fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(string(sev)))
				wrote = true
			}
			fmt.Fprintf(&b, "- `%s` [%s] %s\n", v.Path, v.Category, v.Message)
		}
		if wrote {
			b.WriteString("\n")
		}
	}

	if r.Outcome != nil {
		b.WriteString("## FIXES APPLIED\n\n")
		if len(r.Outcome.Fixed) == 0 {
			b.WriteString("- none\n")
		}
		for _, v := range r.Outcome.Fixed {
			if v.FixedPath != "" {
				fmt.Fprintf(&b, "- moved `%s` to `%s`\n", v.Path, v.FixedPath)
			} else {
				fmt.Fprintf(&b, "- inserted section %q into `%s`\n", v.InsertSection, v.Path)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ReportPath returns the canonical location of the report for its date.
func ReportPath(dashboardsDir string, date time.Time) string {
	name := fmt.Sprintf("%s_validation_report.md", date.Format(goal.DateFormat))
	return filepath.Join(dashboardsDir, "validation", name)
}

// WriteReport renders and persists the report under the dashboards dir.
func WriteReport(dashboardsDir string, r *Report) (string, error) {
	path := ReportPath(dashboardsDir, r.GeneratedAt)
	if err := record.WriteFileAtomic(path, []byte(r.RenderMarkdown())); err != nil {
		return "", fmt.Errorf("write validation report: %w", err)
	}
	return path, nil
}
