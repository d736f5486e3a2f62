package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/metrics"
	"github.com/goalkit/goalkit/internal/runlog"
)

func updateCmd() *cobra.Command {
	var dateFlag string
	cmd := &cobra.Command{
		Use:          "update",
		Short:        "Reconcile goal metrics from a daily reflection",
		Long:         "Read the completion signals recorded in a daily reflection and fold them into the referenced goals: key-result and SMART progress, mirrored evidence, and a change history entry per touched metric.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd.Context(), "update", func(ctx context.Context, p *project, note noteFunc) (string, error) {
				date, err := p.parseDate(dateFlag)
				if err != nil {
					return "", err
				}
				report, err := metrics.NewUpdater(p.goals, p.reflections).Update(date)
				if err != nil {
					return "", err
				}
				for _, e := range report.Errors {
					log.Warn().Err(e).Msg("goal skipped during update")
					note(runlog.LevelWarn, "goal skipped during update: "+e.Error())
				}
				autoCommit(ctx, p, fmt.Sprintf("update metrics for %s", date.Format("2006-01-02")))
				if len(report.Errors) > 0 {
					return "", fmt.Errorf("%s (%d goals failed)", report.Summary(), len(report.Errors))
				}
				return report.Summary(), nil
			})
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "reflection date (YYYY-MM-DD, default today)")
	return cmd
}
