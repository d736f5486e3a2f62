// Package paths maps logical data categories to on-disk directories.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goalkit/goalkit/internal/config"
)

// Category is a logical data category with a configured directory.
type Category string

// The fixed category set. Resolution of anything else is a ConfigError.
const (
	Goals       Category = "goals"
	Reflections Category = "reflections"
	Dashboards  Category = "dashboards"
	Logs        Category = "logs"
	Scripts     Category = "scripts"
	Prompts     Category = "prompts"
	Templates   Category = "templates"
)

// All lists every known category.
func All() []Category {
	return []Category{Goals, Reflections, Dashboards, Logs, Scripts, Prompts, Templates}
}

// ConfigError reports an unresolvable category or directory. It is fatal to
// the run: no step can proceed without its data directories.
type ConfigError struct {
	Category Category
	Reason   string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.Category, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %s: %s", e.Category, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Resolver resolves categories against a project root. It is built once at
// process start from the loaded configuration.
type Resolver struct {
	root string
	dirs map[Category]string
}

// NewResolver builds a resolver from the configured relative layout.
func NewResolver(root string, cfg config.Config) *Resolver {
	dirs := make(map[Category]string, len(cfg.Paths))
	for _, cat := range All() {
		rel, ok := cfg.Paths[string(cat)]
		if !ok {
			continue
		}
		dirs[cat] = filepath.Join(root, filepath.FromSlash(rel))
	}
	return &Resolver{root: root, dirs: dirs}
}

// Root returns the project root directory.
func (r *Resolver) Root() string { return r.root }

// Dir returns the absolute directory for a category, creating it if absent.
func (r *Resolver) Dir(cat Category) (string, error) {
	dir, ok := r.dirs[cat]
	if !ok {
		return "", &ConfigError{Category: cat, Reason: "unknown category"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ConfigError{Category: cat, Reason: "create directory", Err: err}
	}
	return dir, nil
}

// StateDir returns the hidden state directory (run log database, locks),
// creating it if absent.
func (r *Resolver) StateDir() (string, error) {
	dir := filepath.Join(r.root, ".goalkit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ConfigError{Category: "state", Reason: "create directory", Err: err}
	}
	return dir, nil
}
