package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/paths"
	"github.com/goalkit/goalkit/internal/record"
	"github.com/goalkit/goalkit/internal/runlog"
	"github.com/goalkit/goalkit/internal/streaks"
)

func streaksCmd() *cobra.Command {
	var dateFlag string
	cmd := &cobra.Command{
		Use:          "streaks",
		Short:        "Compute habit streaks from daily reflections",
		Long:         "Walk the reflection history inside the configured window and report, per habit, the current streak, the longest streak, and 7-day, 30-day, and weekday completion rates.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd.Context(), "streaks", func(ctx context.Context, p *project, note noteFunc) (string, error) {
				asOf, err := p.parseDate(dateFlag)
				if err != nil {
					return "", err
				}
				goals, errs := p.goals.Active()
				for _, e := range errs {
					log.Warn().Err(e).Msg("skipping unreadable goal")
					note(runlog.LevelWarn, "skipped unreadable goal: "+e.Error())
				}
				tracker := streaks.NewTracker(p.reflections, p.cfg.Streaks.WindowDays)
				report := streaks.BuildReport(tracker, goals, asOf)

				dashboardsDir, err := p.resolver.Dir(paths.Dashboards)
				if err != nil {
					return "", err
				}
				streaksDir := filepath.Join(dashboardsDir, "streaks")
				mdPath := filepath.Join(streaksDir, asOf.Format(goal.DateFormat)+".md")
				if err := record.WriteFileAtomic(mdPath, streaks.RenderMarkdown(report)); err != nil {
					return "", err
				}
				data, err := report.JSON()
				if err != nil {
					return "", err
				}
				jsonPath := filepath.Join(streaksDir, asOf.Format(goal.DateFormat)+".json")
				if err := record.WriteFileAtomic(jsonPath, data); err != nil {
					return "", err
				}

				for _, h := range report.Top(3) {
					printDim(fmt.Sprintf("%s: %d days", h.Name, h.Current))
				}
				autoCommit(ctx, p, fmt.Sprintf("streak report %s", asOf.Format(goal.DateFormat)))
				return fmt.Sprintf("computed streaks for %d habits, report at %s", len(report.Habits), mdPath), nil
			})
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "as-of date (YYYY-MM-DD, default today)")
	return cmd
}
