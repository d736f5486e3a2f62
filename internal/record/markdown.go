package record

import (
	"regexp"
	"strings"
)

// Checkbox is a markdown task-list item.
type Checkbox struct {
	Text string
	Done bool
}

var (
	checkboxRe = regexp.MustCompile(`^- \[([ xX])\]\s*(.*)$`)
	fieldRe    = regexp.MustCompile(`(?m)^\*\*([^*]+):\*\*\s*(.*)$`)
)

// Section returns the body of the markdown section opened by heading
// (e.g. "## TACTICS") up to the next heading of the same or higher level.
// The second return reports whether the heading is present at all.
func Section(content, heading string) (string, bool) {
	level := headingLevel(heading)
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, " ") == heading {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if l := headingLevel(lines[i]); l > 0 && l <= level {
			end = i
			break
		}
	}
	return strings.TrimRight(strings.Join(lines[start:end], "\n"), "\n"), true
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// Field extracts a single "**Name:** value" metadata line from text.
func Field(text, name string) (string, bool) {
	for _, m := range fieldRe.FindAllStringSubmatch(text, -1) {
		if m[1] == name {
			return strings.TrimSpace(m[2]), true
		}
	}
	return "", false
}

// Bullets returns the trimmed text of every "- item" line in text,
// skipping blank placeholders.
func Bullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- ") && trimmed != "-" {
			continue
		}
		if checkboxRe.MatchString(trimmed) {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FieldBullets returns the bullet items directly under a "**Name:**" marker,
// stopping at the next field or the first blank line after the items.
func FieldBullets(text, name string) []string {
	marker := "**" + name + ":**"
	var out []string
	collecting := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == marker:
			collecting = true
		case collecting && strings.HasPrefix(trimmed, "- "):
			if item := strings.TrimSpace(trimmed[2:]); item != "" {
				out = append(out, item)
			}
		case collecting && trimmed == "":
			if len(out) > 0 {
				return out
			}
		case collecting && trimmed != "-":
			return out
		}
	}
	return out
}

// Checkboxes returns every task-list item in text in document order.
func Checkboxes(text string) []Checkbox {
	var out []Checkbox
	for _, line := range strings.Split(text, "\n") {
		m := checkboxRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[2])
		if item == "" {
			continue
		}
		out = append(out, Checkbox{Text: item, Done: m[1] != " "})
	}
	return out
}

// ReplaceSection swaps the body of heading in content with body, appending
// the whole section when the heading is absent. The result always ends with
// a single trailing newline, which keeps rewrites idempotent.
func ReplaceSection(content, heading, body string) string {
	level := headingLevel(heading)
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, " ") == heading {
			start = i
			break
		}
	}
	section := heading + "\n\n" + strings.TrimRight(body, "\n") + "\n"
	if start < 0 {
		return strings.TrimRight(content, "\n") + "\n\n" + section
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if l := headingLevel(lines[i]); l > 0 && l <= level {
			end = i
			break
		}
	}
	var b strings.Builder
	b.WriteString(strings.Join(lines[:start], "\n"))
	if start > 0 {
		b.WriteString("\n")
	}
	b.WriteString(section)
	if end < len(lines) {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(strings.Join(lines[end:], "\n"), "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
