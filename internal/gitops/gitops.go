// Package gitops auto-commits generated artifacts after a pipeline run.
package gitops

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/goalkit/goalkit/internal/config"
)

// Available checks if the given directory is inside a git work tree.
func Available(ctx context.Context, root string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = root
	return cmd.Run() == nil
}

func runOutput(ctx context.Context, dir string, args ...string) (string, error) {
	log.Debug().Str("dir", dir).Strs("args", args).Msg("running git command")
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func runErr(ctx context.Context, dir string, args ...string) error {
	_, err := runOutput(ctx, dir, args...)
	return err
}

// Committer stages and commits pipeline output according to the git config.
type Committer struct {
	root      string
	cfg       config.GitConfig
	artifacts []string // always staged, relative to root
	userData  []string // staged only when commit_user_data is on
}

// NewCommitter builds a committer rooted at the project directory. Paths are
// relative to root.
func NewCommitter(root string, cfg config.GitConfig, artifacts, userData []string) *Committer {
	return &Committer{root: root, cfg: cfg, artifacts: artifacts, userData: userData}
}

// Dirty reports whether anything under the staged paths has changed.
func (c *Committer) Dirty(ctx context.Context) (bool, error) {
	out, err := runOutput(ctx, c.root, append([]string{"status", "--porcelain", "--"}, c.paths()...)...)
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// paths returns what the committer is allowed to stage. Generated artifacts
// always; the user's own records only when opted in.
func (c *Committer) paths() []string {
	paths := append([]string{}, c.artifacts...)
	if c.cfg.CommitUserData {
		paths = append(paths, c.userData...)
	}
	return paths
}

// Commit stages the generated artifacts and commits with the given message.
// It is a no-op when auto-commit is off, the directory is not a repository,
// or nothing changed.
func (c *Committer) Commit(ctx context.Context, message string) (bool, error) {
	if !c.cfg.AutoCommit {
		log.Debug().Msg("auto-commit disabled")
		return false, nil
	}
	if !Available(ctx, c.root) {
		log.Debug().Str("root", c.root).Msg("not a git repository, skipping commit")
		return false, nil
	}
	if len(c.paths()) == 0 {
		return false, nil
	}
	dirty, err := c.Dirty(ctx)
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}
	if err := runErr(ctx, c.root, append([]string{"add", "--"}, c.paths()...)...); err != nil {
		return false, fmt.Errorf("git add: %w", err)
	}
	if err := runErr(ctx, c.root, "commit", "-m", message); err != nil {
		return false, fmt.Errorf("git commit: %w", err)
	}
	log.Info().Str("message", message).Msg("committed generated artifacts")
	return true, nil
}

// CurrentBranch resolves the checked-out branch name.
func CurrentBranch(ctx context.Context, root string) (string, error) {
	if !Available(ctx, root) {
		return "", fmt.Errorf("not a git repository: %s", root)
	}
	out, err := runOutput(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve branch: %w", err)
	}
	branch := strings.TrimSpace(out)
	if branch == "" || branch == "HEAD" {
		return "", fmt.Errorf("resolve branch: detached HEAD")
	}
	return branch, nil
}
