// Package config provides configuration loading and management for goalkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// SettingsFile is the user settings file, relative to the project root.
// Its presence marks a directory as a goalkit project root.
const SettingsFile = "config/user_settings.yaml"

// Config is the root configuration.
type Config struct {
	Project       ProjectConfig      `json:"project"       mapstructure:"project"`
	Paths         map[string]string  `json:"paths"         mapstructure:"paths"`
	Git           GitConfig          `json:"git"           mapstructure:"git"`
	Notifications NotificationConfig `json:"notifications" mapstructure:"notifications"`
	Streaks       StreaksConfig      `json:"streaks"       mapstructure:"streaks"`
}

// ProjectConfig describes the workspace itself.
type ProjectConfig struct {
	Name     string `json:"name"     mapstructure:"name"`
	Timezone string `json:"timezone" mapstructure:"timezone"`
}

// GitConfig controls the auto-commit helper.
type GitConfig struct {
	AutoCommit     bool `json:"auto_commit"      mapstructure:"auto_commit"`
	CommitUserData bool `json:"commit_user_data" mapstructure:"commit_user_data"`
}

// NotificationConfig selects how step summaries are delivered.
type NotificationConfig struct {
	Channel        string        `json:"channel"                    mapstructure:"channel"`
	TelegramChatID string        `json:"telegram_chat_id,omitempty" mapstructure:"telegram_chat_id"`
	Timeout        time.Duration `json:"timeout,omitempty"          mapstructure:"timeout"`
}

// StreaksConfig bounds the habit streak scans.
type StreaksConfig struct {
	WindowDays int `json:"window_days" mapstructure:"window_days"`
}

// Load reads configuration for the project rooted at root. Built-in defaults
// apply when the user settings file is absent; the file overrides them
// key by key.
func Load(root string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	path := filepath.Join(root, filepath.FromSlash(SettingsFile))
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read user settings: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse user settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "My Plan")
	v.SetDefault("project.timezone", "UTC")
	v.SetDefault("paths", map[string]string{
		"goals":       "user_data/goals",
		"reflections": "user_data/reflections",
		"dashboards":  "dashboards",
		"logs":        "logs",
		"scripts":     "system/scripts",
		"prompts":     "system/prompts",
		"templates":   "system/templates",
	})
	v.SetDefault("git.auto_commit", true)
	v.SetDefault("git.commit_user_data", false)
	v.SetDefault("notifications.channel", "log")
	v.SetDefault("notifications.timeout", "10s")
	v.SetDefault("streaks.window_days", 90)
}

// DiscoverRoot walks up from start looking for the settings file marker.
// When no marker is found, start itself is the root and defaults apply.
func DiscoverRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, filepath.FromSlash(SettingsFile))); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, nil
		}
		cur = parent
	}
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Project.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Project.Timezone, err)
	}
	return loc, nil
}
