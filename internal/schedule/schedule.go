// Package schedule materializes the automation cadence as crontab entries.
package schedule

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FileName is the schedule definition inside the config directory.
const FileName = "schedule.yaml"

// markers fence the managed block inside the user's crontab so reinstalls
// replace it instead of appending duplicates.
const (
	beginMarker = "# BEGIN goalkit"
	endMarker   = "# END goalkit"
)

// Job is one cron entry running a goalkit subcommand.
type Job struct {
	Name string `yaml:"name"`
	Cron string `yaml:"cron"`
	Args string `yaml:"args"`
}

// Schedule is the full cadence definition.
type Schedule struct {
	Jobs []Job `yaml:"jobs"`
}

// Default is the cadence used when no schedule file exists: plan in the
// morning, reconcile and analyze in the evening, aggregate weekly.
func Default() *Schedule {
	return &Schedule{Jobs: []Job{
		{Name: "morning-plan", Cron: "0 7 * * *", Args: "generate --period day"},
		{Name: "evening-update", Cron: "0 21 * * *", Args: "update"},
		{Name: "evening-analyze", Cron: "15 21 * * *", Args: "analyze"},
		{Name: "weekly-dashboard", Cron: "0 9 * * 1", Args: "dashboard --period week"},
	}}
}

var cronRe = regexp.MustCompile(`^(\S+\s+){4}\S+$`)

// Validate checks every job has a name, a five-field cron expression, and
// arguments.
func (s *Schedule) Validate() error {
	if len(s.Jobs) == 0 {
		return fmt.Errorf("schedule has no jobs")
	}
	seen := map[string]bool{}
	for i, j := range s.Jobs {
		if j.Name == "" {
			return fmt.Errorf("job %d: missing name", i)
		}
		if seen[j.Name] {
			return fmt.Errorf("job %q: duplicate name", j.Name)
		}
		seen[j.Name] = true
		if !cronRe.MatchString(strings.TrimSpace(j.Cron)) {
			return fmt.Errorf("job %q: cron expression must have five fields", j.Name)
		}
		if j.Args == "" {
			return fmt.Errorf("job %q: missing args", j.Name)
		}
	}
	return nil
}

// Load reads the schedule from the config dir, falling back to Default when
// the file does not exist.
func Load(configDir string) (*Schedule, error) {
	path := filepath.Join(configDir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	return &s, nil
}

// Save writes the schedule file.
func Save(configDir string, s *Schedule) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(configDir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	return nil
}

// RenderCrontab produces the managed crontab block. binary is the absolute
// goalkit path and root the project directory passed via --root.
func (s *Schedule) RenderCrontab(binary, root string) string {
	var b strings.Builder
	b.WriteString(beginMarker + "\n")
	for _, j := range s.Jobs {
		fmt.Fprintf(&b, "%s %s --root %s %s # %s\n",
			strings.TrimSpace(j.Cron), binary, root, j.Args, j.Name)
	}
	b.WriteString(endMarker + "\n")
	return b.String()
}

// Install merges the managed block into the user's crontab, replacing any
// earlier goalkit block. It shells out to crontab(1).
func Install(ctx context.Context, s *Schedule, binary, root string) error {
	current, err := readCrontab(ctx)
	if err != nil {
		return err
	}
	merged := replaceBlock(current, s.RenderCrontab(binary, root))

	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(merged)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("install crontab: %w: %s", err, strings.TrimSpace(string(out)))
	}
	log.Info().Int("jobs", len(s.Jobs)).Msg("crontab installed")
	return nil
}

// readCrontab returns the current crontab, treating "no crontab" as empty.
func readCrontab(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "crontab", "-l")
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("read crontab: %w", err)
	}
	return string(out), nil
}

func replaceBlock(current, block string) string {
	lines := strings.Split(current, "\n")
	var kept []string
	inBlock := false
	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == beginMarker:
			inBlock = true
		case strings.TrimSpace(line) == endMarker:
			inBlock = false
		case !inBlock:
			kept = append(kept, line)
		}
	}
	out := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	if out != "" {
		out += "\n"
	}
	return out + block
}
