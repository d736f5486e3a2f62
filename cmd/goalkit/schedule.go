package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/schedule"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage the automation schedule",
	}
	cmd.AddCommand(scheduleShowCmd())
	cmd.AddCommand(scheduleInstallCmd())
	return cmd
}

func scheduleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show",
		Short:        "Print the crontab block the schedule would install",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			s, err := schedule.Load(filepath.Join(p.root, "config"))
			if err != nil {
				return err
			}
			binary, err := os.Executable()
			if err != nil {
				return err
			}
			fmt.Print(s.RenderCrontab(binary, p.root))
			return nil
		},
	}
}

func scheduleInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "install",
		Short:        "Install the schedule into the user's crontab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			s, err := schedule.Load(filepath.Join(p.root, "config"))
			if err != nil {
				return err
			}
			binary, err := os.Executable()
			if err != nil {
				return err
			}
			if err := schedule.Install(cmd.Context(), s, binary, p.root); err != nil {
				return err
			}
			printSummary(fmt.Sprintf("installed %d cron jobs", len(s.Jobs)))
			return nil
		},
	}
}
