// Package validator scans the goal and reflection stores for structural
// conformance and applies the reversible subset of fixes.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
	"github.com/goalkit/goalkit/internal/reflection"
)

// Category classifies a violation.
type Category string

const (
	MisplacedFile     Category = "misplaced_file"
	MalformedFilename Category = "malformed_filename"
	MissingSection    Category = "missing_section"
	OrphanedReference Category = "orphaned_reference"
	InvalidMetadata   Category = "invalid_metadata"
	UnreadableFile    Category = "unreadable_file"
)

// Severity grades violations for the report.
type Severity string

const (
	Critical       Severity = "critical"
	Warning        Severity = "warning"
	Recommendation Severity = "recommendation"
)

// Violation names one deviation from the canonical layout, with a suggested
// fix when one can be applied automatically.
type Violation struct {
	Path     string
	Category Category
	Severity Severity
	Message  string
	// FixedPath is the canonical location for misplaced files; empty when
	// the violation is not a placement problem.
	FixedPath string
	// InsertSection is the heading to insert for missing-section fixes.
	InsertSection string
}

// Fixable reports whether the validator can repair the violation without
// touching user content.
func (v Violation) Fixable() bool {
	return v.FixedPath != "" || v.InsertSection != ""
}

// FixOutcome reports what a fix pass changed. Fixes are idempotent: a second
// pass over the fixed tree finds nothing new to do.
type FixOutcome struct {
	Fixed   []Violation
	Unfixed []Violation
}

// Validator checks both stores against the canonical layout.
type Validator struct {
	goals          *goal.Store
	reflections    *reflection.Store
	goalsDir       string
	reflectionsDir string
}

// New creates a validator over the two store directories.
func New(goals *goal.Store, reflections *reflection.Store) *Validator {
	return &Validator{
		goals:          goals,
		reflections:    reflections,
		goalsDir:       goals.Dir(),
		reflectionsDir: reflections.Dir(),
	}
}

var (
	goalFileRe     = regexp.MustCompile(`^goal_\d{4}_\d{2}_\d{2}_[a-z0-9_]+\.md$`)
	dailyFileRe    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\.md$`)
	percentShoutRe = regexp.MustCompile(`(\d+)%`)
	statusLineRe   = regexp.MustCompile(`(?m)^\*\*Status:\*\*\s*(\S+)`)
)

// Scan walks both stores and collects every violation. Scanning never
// mutates anything.
func (v *Validator) Scan() ([]Violation, error) {
	var out []Violation
	goalViolations, err := v.scanGoals()
	if err != nil {
		return nil, err
	}
	out = append(out, goalViolations...)

	reflViolations, err := v.scanReflections()
	if err != nil {
		return nil, err
	}
	out = append(out, reflViolations...)
	return out, nil
}

func (v *Validator) scanGoals() ([]Violation, error) {
	entries, err := os.ReadDir(v.goalsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read goals dir: %w", err)
	}
	var out []Violation
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(v.goalsDir, e.Name())
		if !goalFileRe.MatchString(e.Name()) {
			out = append(out, Violation{
				Path:     path,
				Category: MalformedFilename,
				Severity: Warning,
				Message:  "goal filename must match goal_YYYY_MM_DD_<slug>.md",
			})
		}
		out = append(out, v.checkGoalContent(path)...)
	}
	return out, nil
}

func (v *Validator) checkGoalContent(path string) []Violation {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Violation{{Path: path, Category: UnreadableFile, Severity: Critical, Message: err.Error()}}
	}
	content := string(data)
	var out []Violation
	for _, section := range goal.RequiredSections {
		if _, ok := record.Section(content, section); !ok {
			out = append(out, Violation{
				Path:          path,
				Category:      MissingSection,
				Severity:      Critical,
				Message:       fmt.Sprintf("missing required section %q", section),
				InsertSection: section,
			})
		}
	}
	if m := statusLineRe.FindStringSubmatch(content); m == nil {
		out = append(out, Violation{
			Path:     path,
			Category: InvalidMetadata,
			Severity: Critical,
			Message:  "missing status (must be one of active|paused|completed|cancelled)",
		})
	} else if !goal.ValidStatus(goal.Status(m[1])) {
		out = append(out, Violation{
			Path:     path,
			Category: InvalidMetadata,
			Severity: Critical,
			Message:  fmt.Sprintf("invalid status %q", m[1]),
		})
	}
	for _, m := range percentShoutRe.FindAllStringSubmatch(content, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 100 {
			out = append(out, Violation{
				Path:     path,
				Category: InvalidMetadata,
				Severity: Warning,
				Message:  fmt.Sprintf("progress above 100%%: %d%%", n),
			})
		}
	}
	return out
}

func (v *Validator) scanReflections() ([]Violation, error) {
	dailyDir := filepath.Join(v.reflectionsDir, "daily")
	entries, err := os.ReadDir(dailyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read daily reflections dir: %w", err)
	}

	var out []Violation
	// Files directly under daily/ belong in the year/month partition.
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dailyDir, e.Name())
		out = append(out, v.checkDailyPlacement(path, e.Name())...)
	}

	// Partitioned files: verify the partition matches the filename date and
	// check content.
	err = filepath.WalkDir(dailyDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return err
		}
		if filepath.Dir(path) == dailyDir {
			return nil // handled above
		}
		out = append(out, v.checkDailyPlacement(path, d.Name())...)
		out = append(out, v.checkDailyContent(path, d.Name())...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk daily reflections: %w", err)
	}
	return out, nil
}

func (v *Validator) checkDailyPlacement(path, name string) []Violation {
	m := dailyFileRe.FindStringSubmatch(name)
	if m == nil {
		return []Violation{{
			Path:     path,
			Category: MalformedFilename,
			Severity: Warning,
			Message:  "daily reflection filename must match YYYY-MM-DD.md",
		}}
	}
	date, err := time.Parse(goal.DateFormat, strings.TrimSuffix(name, ".md"))
	if err != nil {
		return []Violation{{
			Path:     path,
			Category: MalformedFilename,
			Severity: Warning,
			Message:  "daily reflection filename carries an unparseable date",
		}}
	}
	canonical := v.reflections.Path(reflection.DailyPeriod(date))
	if path == canonical {
		return nil
	}
	return []Violation{{
		Path:      path,
		Category:  MisplacedFile,
		Severity:  Critical,
		Message:   fmt.Sprintf("daily reflection belongs at %s", canonical),
		FixedPath: canonical,
	}}
}

func (v *Validator) checkDailyContent(path, name string) []Violation {
	date, err := time.Parse(goal.DateFormat, strings.TrimSuffix(name, ".md"))
	if err != nil {
		return nil // placement check already flagged the name
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return []Violation{{Path: path, Category: UnreadableFile, Severity: Critical, Message: err.Error()}}
	}
	r, err := reflection.Parse(path, reflection.DailyPeriod(date), string(data))
	if err != nil {
		return []Violation{{Path: path, Category: UnreadableFile, Severity: Critical, Message: err.Error()}}
	}
	var out []Violation
	for _, plan := range r.Plans {
		if _, err := v.goals.Load(plan.GoalID); err != nil {
			out = append(out, Violation{
				Path:     path,
				Category: OrphanedReference,
				Severity: Warning,
				Message:  fmt.Sprintf("plan references unknown goal %q", plan.GoalID),
			})
		}
	}
	return out
}

// Fix applies the reversible subset of fixes: moving misplaced files to
// their canonical paths and inserting empty required sections. It never
// deletes user content. Violations it cannot repair are reported back.
func (v *Validator) Fix(violations []Violation) (*FixOutcome, error) {
	outcome := &FixOutcome{}
	for _, viol := range violations {
		if !viol.Fixable() {
			outcome.Unfixed = append(outcome.Unfixed, viol)
			continue
		}
		var err error
		switch {
		case viol.FixedPath != "":
			err = v.moveToCanonical(viol)
		case viol.InsertSection != "":
			err = v.insertSection(viol)
		}
		if err != nil {
			log.Warn().Err(err).Str("path", viol.Path).Msg("fix failed")
			outcome.Unfixed = append(outcome.Unfixed, viol)
			continue
		}
		outcome.Fixed = append(outcome.Fixed, viol)
	}
	return outcome, nil
}

func (v *Validator) moveToCanonical(viol Violation) error {
	if _, err := os.Stat(viol.FixedPath); err == nil {
		return fmt.Errorf("canonical path already occupied: %s", viol.FixedPath)
	}
	if err := os.MkdirAll(filepath.Dir(viol.FixedPath), 0o755); err != nil {
		return fmt.Errorf("create canonical dir: %w", err)
	}
	if err := os.Rename(viol.Path, viol.FixedPath); err != nil {
		return fmt.Errorf("move %s: %w", viol.Path, err)
	}
	log.Info().Str("from", viol.Path).Str("to", viol.FixedPath).Msg("moved to canonical path")
	return nil
}

func (v *Validator) insertSection(viol Violation) error {
	data, err := os.ReadFile(viol.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", viol.Path, err)
	}
	content := string(data)
	if _, ok := record.Section(content, viol.InsertSection); ok {
		return nil // a prior pass already inserted it
	}
	content = record.ReplaceSection(content, viol.InsertSection, "")
	if err := record.WriteFileAtomic(viol.Path, []byte(content)); err != nil {
		return fmt.Errorf("insert section into %s: %w", viol.Path, err)
	}
	log.Info().Str("path", viol.Path).Str("section", viol.InsertSection).Msg("inserted empty section")
	return nil
}
