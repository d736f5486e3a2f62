package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goalkit/goalkit/internal/gitops"
	"github.com/goalkit/goalkit/internal/paths"
)

func commitCmd() *cobra.Command {
	var message string
	var userData bool
	cmd := &cobra.Command{
		Use:          "commit",
		Short:        "Commit generated artifacts",
		Long:         "Stage and commit dashboards and settings, and optionally the goal and reflection records, regardless of the auto_commit setting.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			cfg := p.cfg.Git
			cfg.AutoCommit = true
			if userData {
				cfg.CommitUserData = true
			}
			if message == "" {
				message = fmt.Sprintf("goalkit snapshot %s", time.Now().Format("2006-01-02 15:04"))
			}
			committer := gitops.NewCommitter(p.root, cfg,
				[]string{relPath(p, paths.Dashboards), "config"},
				[]string{relPath(p, paths.Goals), relPath(p, paths.Reflections)})
			committed, err := committer.Commit(cmd.Context(), message)
			if err != nil {
				return err
			}
			if !committed {
				printDim("nothing to commit")
				return nil
			}
			branch, err := gitops.CurrentBranch(cmd.Context(), p.root)
			if err != nil {
				branch = "?"
			}
			printSummary(fmt.Sprintf("committed on %s: %s", branch, message))
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVar(&userData, "user-data", false, "also stage goals and reflections")
	return cmd
}
