package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/dashboard"
	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/paths"
	"github.com/goalkit/goalkit/internal/runlog"
	"github.com/goalkit/goalkit/internal/streaks"
)

func dashboardCmd() *cobra.Command {
	var periodFlag string
	var dateFlag string
	var show bool
	cmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Render the daily or weekly dashboard",
		Long:         "Build the daily dashboard (markdown and HTML) or the weekly dashboard with a previous-week comparison. With --show, render the markdown to the terminal.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd.Context(), "dashboard", func(ctx context.Context, p *project, note noteFunc) (string, error) {
				date, err := p.parseDate(dateFlag)
				if err != nil {
					return "", err
				}
				dashboardsDir, err := p.resolver.Dir(paths.Dashboards)
				if err != nil {
					return "", err
				}
				tracker := streaks.NewTracker(p.reflections, p.cfg.Streaks.WindowDays)
				builder := dashboard.NewBuilder(p.goals, p.reflections, tracker)

				var md, outPath string
				switch periodFlag {
				case "day":
					data, err := builder.BuildDay(date)
					if err != nil {
						return "", err
					}
					for _, e := range data.Errors {
						note(runlog.LevelWarn, "record error: "+e)
					}
					mdPath, htmlPath, err := dashboard.WriteDay(dashboardsDir, data)
					if err != nil {
						return "", err
					}
					md = dashboard.RenderDayMarkdown(data)
					outPath = mdPath + ", " + htmlPath
				case "week":
					data, err := builder.BuildWeek(date)
					if err != nil {
						return "", err
					}
					mdPath, htmlPath, err := dashboard.WriteWeek(dashboardsDir, data)
					if err != nil {
						return "", err
					}
					md = dashboard.RenderWeekMarkdown(data)
					outPath = mdPath + ", " + htmlPath
				default:
					return "", fmt.Errorf("unknown period %q, want day|week", periodFlag)
				}

				if show {
					rendered, err := glamour.Render(md, "dark")
					if err != nil {
						return "", fmt.Errorf("render dashboard: %w", err)
					}
					fmt.Print(rendered)
				}
				autoCommit(ctx, p, fmt.Sprintf("dashboard %s %s", periodFlag, date.Format(goal.DateFormat)))
				return fmt.Sprintf("dashboard written to %s", outPath), nil
			})
		},
	}
	cmd.Flags().StringVar(&periodFlag, "period", "day", "dashboard period: day|week")
	cmd.Flags().StringVar(&dateFlag, "date", "", "anchor date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&show, "show", false, "render the dashboard to the terminal")
	return cmd
}
