package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/goalkit/goalkit/internal/config"
	"github.com/goalkit/goalkit/internal/db"
	"github.com/goalkit/goalkit/internal/gitops"
	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/paths"
	"github.com/goalkit/goalkit/internal/reflection"
	"github.com/goalkit/goalkit/internal/runlog"
)

// project bundles everything a subcommand needs once the root is resolved.
type project struct {
	root        string
	cfg         config.Config
	resolver    *paths.Resolver
	goals       *goal.Store
	reflections *reflection.Store
	loc         *time.Location
}

func openProject() (*project, error) {
	root := viper.GetString("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root, err = config.DiscoverRoot(cwd)
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	resolver := paths.NewResolver(root, cfg)
	goalsDir, err := resolver.Dir(paths.Goals)
	if err != nil {
		return nil, err
	}
	reflectionsDir, err := resolver.Dir(paths.Reflections)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &project{
		root:        root,
		cfg:         cfg,
		resolver:    resolver,
		goals:       goal.NewStore(goalsDir),
		reflections: reflection.NewStore(reflectionsDir),
		loc:         loc,
	}, nil
}

func (p *project) openState() (*sql.DB, *runlog.Store, func(), error) {
	stateDir, err := p.resolver.StateDir()
	if err != nil {
		return nil, nil, func() {}, err
	}
	stateDB, err := db.Open(filepath.Join(stateDir, "state.db"))
	if err != nil {
		return nil, nil, func() {}, err
	}
	return stateDB, runlog.NewStore(stateDB), func() { _ = stateDB.Close() }, nil
}

// today returns the current date in the project timezone.
func (p *project) today() time.Time {
	now := time.Now().In(p.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate resolves a --date flag value, defaulting to today.
func (p *project) parseDate(s string) (time.Time, error) {
	if s == "" {
		return p.today(), nil
	}
	d, err := time.Parse(goal.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// noteFunc records a leveled note on the current run. Steps use it for
// record-level problems that do not abort the run.
type noteFunc func(level, message string)

// runStep executes one pipeline step with run-log bookkeeping. The step
// returns its one-line summary; failures are recorded before being returned.
func runStep(ctx context.Context, command string, step func(ctx context.Context, p *project, note noteFunc) (string, error)) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	_, runs, closeFn, err := p.openState()
	if err != nil {
		return err
	}
	defer closeFn()

	runID, err := runs.StartRun(ctx, command)
	if err != nil {
		return err
	}
	note := func(level, message string) {
		if err := runs.AddEvent(ctx, runID, level, message); err != nil {
			log.Warn().Err(err).Msg("record run event")
		}
	}
	summary, stepErr := step(ctx, p, note)
	if stepErr != nil {
		if err := runs.FinishRun(ctx, runID, runlog.StatusFailed, stepErr.Error()); err != nil {
			log.Warn().Err(err).Msg("record failed run")
		}
		return stepErr
	}
	if err := runs.FinishRun(ctx, runID, runlog.StatusCompleted, summary); err != nil {
		log.Warn().Err(err).Msg("record completed run")
	}
	printSummary(summary)
	return nil
}

// autoCommit commits generated artifacts when the config allows it.
func autoCommit(ctx context.Context, p *project, message string) {
	committer := gitops.NewCommitter(p.root, p.cfg.Git,
		[]string{relPath(p, paths.Dashboards), "config"},
		[]string{relPath(p, paths.Goals), relPath(p, paths.Reflections)})
	committed, err := committer.Commit(ctx, message)
	if err != nil {
		log.Warn().Err(err).Msg("auto-commit failed")
		return
	}
	if committed {
		log.Info().Str("message", message).Msg("auto-committed")
	}
}

func relPath(p *project, cat paths.Category) string {
	if rel, ok := p.cfg.Paths[string(cat)]; ok {
		return filepath.FromSlash(rel)
	}
	return string(cat)
}
