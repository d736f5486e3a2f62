package reflection

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/goalkit/goalkit/internal/record"
)

// Store reads and writes reflection records under the reflections directory,
// using the fixed date-partitioned layout. Writes are atomic.
type Store struct {
	dir string
}

// NewStore creates a store over the reflections directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the reflections directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the canonical file path for a period.
func (s *Store) Path(p Period) string {
	return filepath.Join(s.dir, p.RelPath())
}

// Exists reports whether a record file backs the period.
func (s *Store) Exists(p Period) bool {
	_, err := os.Stat(s.Path(p))
	return err == nil
}

// Load parses the daily reflection for the period. A missing file yields
// record.ErrNotFound so callers can distinguish "no data yet" from corrupt
// data.
func (s *Store) Load(p Period) (*Reflection, error) {
	if p.Type != Daily {
		return nil, fmt.Errorf("load %s reflection: only daily records are parsed, use LoadAggregate", p.Type)
	}
	path := s.Path(p)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reflection %s: %w", p.Key(), record.ErrNotFound)
		}
		return nil, fmt.Errorf("read reflection %s: %w", p.Key(), err)
	}
	return Parse(path, p, string(data))
}

// Save validates the period and serializes the reflection atomically into
// its canonical location.
func (s *Store) Save(r *Reflection) error {
	if !ValidPeriodType(r.Period.Type) {
		return fmt.Errorf("save reflection: unknown period type %q", r.Period.Type)
	}
	if err := record.WriteFileAtomic(s.Path(r.Period), Render(r)); err != nil {
		return fmt.Errorf("save reflection %s: %w", r.Period.Key(), err)
	}
	return nil
}

// ReadRaw returns the raw document for in-place section rewrites that must
// preserve user-entered text outside the parsed model.
func (s *Store) ReadRaw(p Period) (string, error) {
	data, err := os.ReadFile(s.Path(p))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("reflection %s: %w", p.Key(), record.ErrNotFound)
		}
		return "", fmt.Errorf("read reflection %s: %w", p.Key(), err)
	}
	return string(data), nil
}

// WriteRaw atomically replaces the document for a period.
func (s *Store) WriteRaw(p Period, content string) error {
	if err := record.WriteFileAtomic(s.Path(p), []byte(content)); err != nil {
		return fmt.Errorf("write reflection %s: %w", p.Key(), err)
	}
	return nil
}

// ListRange lazily enumerates existing daily reflections between from and to
// inclusive, in date order. Days without a record are skipped; per-record
// parse failures are yielded with a nil reflection so batch callers can
// collect them. Ranging again restarts the scan.
func (s *Store) ListRange(from, to time.Time) iter.Seq2[*Reflection, error] {
	return func(yield func(*Reflection, error) bool) {
		for d := midnight(from); !d.After(midnight(to)); d = d.AddDate(0, 0, 1) {
			p := DailyPeriod(d)
			if !s.Exists(p) {
				continue
			}
			r, err := s.Load(p)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}
