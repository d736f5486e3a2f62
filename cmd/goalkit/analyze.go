package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/analyze"
	"github.com/goalkit/goalkit/internal/notify"
	"github.com/goalkit/goalkit/internal/runlog"
)

func analyzeCmd() *cobra.Command {
	var dateFlag string
	var silent bool
	cmd := &cobra.Command{
		Use:          "analyze",
		Short:        "Write commentary into a daily reflection",
		Long:         "Analyze a daily reflection, rewrite its commentary section in place, propagate detected forced and voluntary changes into goal histories, and send the summary to the configured notification channel.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd.Context(), "analyze", func(ctx context.Context, p *project, note noteFunc) (string, error) {
				date, err := p.parseDate(dateFlag)
				if err != nil {
					return "", err
				}
				res, err := analyze.NewAnalyzer(p.goals, p.reflections).Analyze(date)
				if err != nil {
					return "", err
				}
				for _, ev := range res.Events {
					note(runlog.LevelInfo, fmt.Sprintf("detected %s change for %s", ev.Type, ev.GoalID))
				}
				if !silent {
					msg := notify.Message{Title: "goalkit analyze", Lines: []string{res.Summary()}}
					if err := notify.New(p.cfg.Notifications).Notify(ctx, msg); err != nil {
						printWarn(fmt.Sprintf("notification failed: %v", err))
						note(runlog.LevelWarn, "notification failed: "+err.Error())
					}
				}
				autoCommit(ctx, p, fmt.Sprintf("analyze reflection %s", date.Format("2006-01-02")))
				return res.Summary(), nil
			})
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "reflection date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&silent, "silent", false, "skip the notification")
	return cmd
}
