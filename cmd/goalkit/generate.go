package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/reflection"
	"github.com/goalkit/goalkit/internal/runlog"
)

func periodFor(kind string, date time.Time) (reflection.Period, error) {
	switch kind {
	case "day":
		return reflection.DailyPeriod(date), nil
	case "week":
		y, w := date.ISOWeek()
		return reflection.WeeklyPeriod(y, w), nil
	case "month":
		return reflection.MonthlyPeriod(date.Year(), date.Month()), nil
	case "quarter":
		return reflection.QuarterlyPeriod(date.Year(), (int(date.Month())-1)/3+1), nil
	case "year":
		return reflection.YearlyPeriod(date.Year()), nil
	}
	return reflection.Period{}, fmt.Errorf("unknown period %q, want day|week|month|quarter|year", kind)
}

func generateCmd() *cobra.Command {
	var periodFlag string
	var dateFlag string
	var force bool
	cmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a reflection template or periodic aggregate",
		Long:         "Generate a daily reflection template from active goals, or derive a weekly, monthly, quarterly, or yearly aggregate from the dailies it covers.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd.Context(), "generate", func(ctx context.Context, p *project, note noteFunc) (string, error) {
				date, err := p.parseDate(dateFlag)
				if err != nil {
					return "", err
				}
				period, err := periodFor(periodFlag, date)
				if err != nil {
					return "", err
				}
				summary, err := generatePeriod(p, period, force, note)
				if err != nil {
					return "", err
				}
				autoCommit(ctx, p, fmt.Sprintf("generate %s %s", periodFlag, period.Key()))
				return summary, nil
			})
		},
	}
	cmd.Flags().StringVar(&periodFlag, "period", "day", "period to generate: day|week|month|quarter|year")
	cmd.Flags().StringVar(&dateFlag, "date", "", "anchor date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing daily template")
	return cmd
}

func generatePeriod(p *project, period reflection.Period, force bool, note noteFunc) (string, error) {
	if period.Type == reflection.Daily {
		if p.reflections.Exists(period) && !force {
			return "", fmt.Errorf("reflection for %s already exists (use --force to overwrite)", period.Key())
		}
		goals, errs := p.goals.Active()
		for _, e := range errs {
			log.Warn().Err(e).Msg("skipping unreadable goal")
			note(runlog.LevelWarn, "skipped unreadable goal: "+e.Error())
		}
		r := reflection.Generate(period, goals)
		if err := p.reflections.Save(r); err != nil {
			return "", err
		}
		summary := fmt.Sprintf("generated daily reflection %s from %d active goals", period.Key(), len(goals))
		if len(errs) > 0 {
			return "", fmt.Errorf("%s, but %d goals were unreadable", summary, len(errs))
		}
		return summary, nil
	}

	agg, recErrs, err := reflection.Derive(p.reflections, period)
	if err != nil {
		return "", err
	}
	for _, e := range recErrs {
		log.Warn().Err(e).Msg("skipping unreadable daily reflection")
		note(runlog.LevelWarn, "skipped unreadable daily reflection: "+e.Error())
	}
	if err := p.reflections.SaveAggregate(agg); err != nil {
		return "", err
	}
	summary := fmt.Sprintf("derived %s aggregate over %d tracked days", period.Type, len(agg.Days))
	if len(recErrs) > 0 {
		return "", fmt.Errorf("%s, but %d dailies were unreadable", summary, len(recErrs))
	}
	return summary, nil
}
