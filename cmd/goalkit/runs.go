package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/runlog"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}
	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsPruneCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	var limit int
	var showEvents bool
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List recent runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			_, runs, closeFn, err := p.openState()
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printDim("no runs recorded yet")
				return nil
			}
			for _, r := range list {
				line := fmt.Sprintf("%s  %-10s %-9s %s",
					r.StartedAt.Format(time.RFC3339), r.Command, r.Status, r.Summary)
				if r.Status == runlog.StatusFailed {
					printWarn(line)
				} else {
					printDim(line)
				}
				if !showEvents {
					continue
				}
				events, err := runs.Events(cmd.Context(), r.ID)
				if err != nil {
					return err
				}
				for _, e := range events {
					line := fmt.Sprintf("    %s  %-5s %s", e.CreatedAt.Format(time.RFC3339), e.Level, e.Message)
					if e.Level == runlog.LevelWarn {
						printWarn(line)
					} else {
						printDim(line)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&showEvents, "events", false, "show each run's recorded events")
	return cmd
}

func runsPruneCmd() *cobra.Command {
	var keepDays int
	cmd := &cobra.Command{
		Use:          "prune",
		Short:        "Delete finished runs older than the retention window",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keepDays <= 0 {
				return fmt.Errorf("--keep-days must be > 0")
			}
			p, err := openProject()
			if err != nil {
				return err
			}
			_, runs, closeFn, err := p.openState()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := runs.Prune(cmd.Context(), time.Duration(keepDays)*24*time.Hour)
			if err != nil {
				return err
			}
			printSummary(fmt.Sprintf("pruned %d runs older than %d days", n, keepDays))
			return nil
		},
	}
	cmd.Flags().IntVar(&keepDays, "keep-days", 90, "retention window in days")
	return cmd
}
