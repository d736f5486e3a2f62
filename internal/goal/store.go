package goal

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goalkit/goalkit/internal/record"
)

// Store reads and writes goal documents in a single directory.
// Writes are atomic; a crash mid-save never truncates a record.
type Store struct {
	dir string
}

// NewStore creates a store over the goals directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the goals directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the canonical file path for a goal id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".md")
}

// Load parses the goal document for id. A missing file yields
// record.ErrNotFound; a structurally unreadable one a *record.ParseError.
func (s *Store) Load(id string) (*Goal, error) {
	path := s.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("goal %s: %w", id, record.ErrNotFound)
		}
		return nil, fmt.Errorf("read goal %s: %w", id, err)
	}
	return Parse(path, id, string(data))
}

// List lazily enumerates goal documents in id order, optionally filtered by
// status. Per-record parse failures are yielded alongside a nil goal so batch
// callers can collect them without aborting; ranging again restarts the scan.
func (s *Store) List(filter Status) iter.Seq2[*Goal, error] {
	return func(yield func(*Goal, error) bool) {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			yield(nil, fmt.Errorf("read goals dir: %w", err))
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			g, err := s.Load(strings.TrimSuffix(name, ".md"))
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if filter != "" && g.Status != filter {
				continue
			}
			if !yield(g, nil) {
				return
			}
		}
	}
}

// Active collects all active goals, returning collected per-record errors
// separately so one corrupt file never hides the rest.
func (s *Store) Active() ([]*Goal, []error) {
	var goals []*Goal
	var errs []error
	for g, err := range s.List(StatusActive) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		goals = append(goals, g)
	}
	return goals, errs
}

// Save validates and serializes the goal back to canonical form, replacing
// the file atomically.
func (s *Store) Save(g *Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := record.WriteFileAtomic(s.Path(g.ID), Render(g)); err != nil {
		return fmt.Errorf("save goal %s: %w", g.ID, err)
	}
	return nil
}

// AppendHistory loads the goal, appends one validated history entry, and
// saves the result.
func (s *Store) AppendHistory(id string, entry ChangeEntry) error {
	g, err := s.Load(id)
	if err != nil {
		return err
	}
	if err := g.AppendHistory(entry); err != nil {
		return fmt.Errorf("goal %s: %w", id, err)
	}
	return s.Save(g)
}
