package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, root, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(SettingsFile))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project.Name != "My Plan" {
		t.Errorf("project.name = %q", cfg.Project.Name)
	}
	if cfg.Project.Timezone != "UTC" {
		t.Errorf("project.timezone = %q", cfg.Project.Timezone)
	}
	if !cfg.Git.AutoCommit || cfg.Git.CommitUserData {
		t.Errorf("git defaults = %+v", cfg.Git)
	}
	if cfg.Notifications.Channel != "log" {
		t.Errorf("notifications.channel = %q", cfg.Notifications.Channel)
	}
	if cfg.Notifications.Timeout != 10*time.Second {
		t.Errorf("notifications.timeout = %v", cfg.Notifications.Timeout)
	}
	if cfg.Streaks.WindowDays != 90 {
		t.Errorf("streaks.window_days = %d", cfg.Streaks.WindowDays)
	}
	if got := cfg.Paths["goals"]; got != "user_data/goals" {
		t.Errorf("paths.goals = %q", got)
	}
}

func TestLoadOverridesKeyByKey(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSettings(t, root, `
project:
  name: Marathon 2026
  timezone: Europe/Berlin
notifications:
  channel: telegram
  telegram_chat_id: "42"
  timeout: 3s
`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project.Name != "Marathon 2026" {
		t.Errorf("project.name = %q", cfg.Project.Name)
	}
	if cfg.Notifications.Channel != "telegram" || cfg.Notifications.TelegramChatID != "42" {
		t.Errorf("notifications = %+v", cfg.Notifications)
	}
	if cfg.Notifications.Timeout != 3*time.Second {
		t.Errorf("notifications.timeout = %v", cfg.Notifications.Timeout)
	}
	// Untouched keys keep their defaults.
	if cfg.Streaks.WindowDays != 90 {
		t.Errorf("streaks.window_days = %d", cfg.Streaks.WindowDays)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("location = %v", loc)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad timezone":          "project:\n  timezone: Mars/Olympus\n",
		"bad channel":           "notifications:\n  channel: pager\n",
		"telegram without chat": "notifications:\n  channel: telegram\n",
		"zero window":           "streaks:\n  window_days: 0\n",
		"empty path":            "paths:\n  goals: \"\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeSettings(t, root, content)
			if _, err := Load(root); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestDiscoverRootWalksUpToMarker(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSettings(t, root, "project:\n  name: here\n")
	nested := filepath.Join(root, "user_data", "goals")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := DiscoverRoot(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if got != root {
		t.Errorf("root = %q, want %q", got, root)
	}
}

func TestDiscoverRootFallsBackToStart(t *testing.T) {
	t.Parallel()

	start := t.TempDir()
	got, err := DiscoverRoot(start)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if got != start {
		t.Errorf("root = %q, want %q", got, start)
	}
}
