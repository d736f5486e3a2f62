package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/config"
	"github.com/goalkit/goalkit/internal/schedule"
)

const defaultSettings = `project:
  name: my-goals
  timezone: Local
paths:
  goals: user_data/goals
  reflections: user_data/reflections
  dashboards: dashboards
  logs: logs
  scripts: system/scripts
  prompts: system/prompts
  templates: system/templates
git:
  auto_commit: true
  commit_user_data: false
notifications:
  channel: log
  timeout: 10s
streaks:
  window_days: 90
`

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a goalkit project",
		Long:  "Initialize a goalkit project: directory layout, default settings, and a default schedule.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				root = args[0]
				if !filepath.IsAbs(root) {
					cwd, err := os.Getwd()
					if err != nil {
						return err
					}
					root = filepath.Join(cwd, root)
				}
			}

			dirs := []string{
				"user_data/goals",
				"user_data/reflections/daily",
				"dashboards/daily",
				"dashboards/validation",
				"dashboards/streaks",
				"logs",
				"system/scripts",
				"system/prompts",
				"system/templates",
				"config",
				".goalkit",
			}
			for _, d := range dirs {
				if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o755); err != nil {
					return fmt.Errorf("create %s: %w", d, err)
				}
			}

			settingsPath := filepath.Join(root, filepath.FromSlash(config.SettingsFile))
			if _, err := os.Stat(settingsPath); err == nil {
				log.Info().Str("path", settingsPath).Msg("settings already exist, skipping")
			} else {
				log.Info().Str("path", settingsPath).Msg("installing default settings")
				if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0o644); err != nil {
					return fmt.Errorf("write settings: %w", err)
				}
			}

			schedulePath := filepath.Join(root, "config", schedule.FileName)
			if _, err := os.Stat(schedulePath); os.IsNotExist(err) {
				log.Info().Str("path", schedulePath).Msg("installing default schedule")
				if err := schedule.Save(filepath.Join(root, "config"), schedule.Default()); err != nil {
					return err
				}
			}

			printSummary(fmt.Sprintf("initialized project at %s", root))
			printDim("next: add a goal under user_data/goals and run `goalkit generate`")
			return nil
		},
	}
}
