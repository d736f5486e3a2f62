package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/paths"
	"github.com/goalkit/goalkit/internal/runlog"
	"github.com/goalkit/goalkit/internal/validator"
)

func validateCmd() *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Check goals and reflections against the canonical layout",
		Long:         "Scan both stores for misplaced files, malformed names, missing sections, orphaned goal references, and invalid metadata. With --fix, move misplaced files to their canonical paths and insert missing empty sections; fixes never delete content.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd.Context(), "validate", func(ctx context.Context, p *project, note noteFunc) (string, error) {
				v := validator.New(p.goals, p.reflections)
				violations, err := v.Scan()
				if err != nil {
					return "", err
				}
				for _, viol := range violations {
					note(runlog.LevelWarn, fmt.Sprintf("%s: %s (%s)", viol.Category, viol.Message, viol.Path))
				}
				report := &validator.Report{GeneratedAt: p.today(), Violations: violations}
				if fix && len(violations) > 0 {
					outcome, err := v.Fix(violations)
					if err != nil {
						return "", err
					}
					for _, viol := range outcome.Fixed {
						note(runlog.LevelInfo, fmt.Sprintf("fixed %s at %s", viol.Category, viol.Path))
					}
					report.Outcome = outcome
				}

				dashboardsDir, err := p.resolver.Dir(paths.Dashboards)
				if err != nil {
					return "", err
				}
				path, err := validator.WriteReport(dashboardsDir, report)
				if err != nil {
					return "", err
				}
				autoCommit(ctx, p, fmt.Sprintf("validation report %s", p.today().Format("2006-01-02")))

				fixed := 0
				if report.Outcome != nil {
					fixed = len(report.Outcome.Fixed)
				}
				summary := fmt.Sprintf("%d violations (%d fixed), report at %s", len(violations), fixed, path)
				if remaining := len(violations) - fixed; remaining > 0 {
					return "", fmt.Errorf("%s", summary)
				}
				return summary, nil
			})
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "apply the reversible fixes")
	return cmd
}
