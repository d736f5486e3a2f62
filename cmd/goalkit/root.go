package main

import (
	"fmt"
	"os"

	"github.com/goalkit/goalkit/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootDir string
	debug   bool
	rootCmd = &cobra.Command{
		Use:   "goalkit",
		Short: "goalkit keeps markdown goals, reflections, and dashboards in sync",
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (default: discovered from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	if err := viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root")); err != nil {
		return fmt.Errorf("bind root flag: %w", err)
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
	}
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(streaksCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(commitCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd.Execute()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
