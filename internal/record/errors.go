// Package record provides plumbing shared by the goal and reflection stores:
// the error taxonomy, atomic file replacement, and markdown section helpers.
package record

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an expected record that has no backing file. Callers
// distinguish "no data yet" from a parse failure and decide whether to create
// or skip.
var ErrNotFound = errors.New("record not found")

// ParseError reports a file that exists but is structurally unreadable.
// Batch operations collect these as violations instead of aborting.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
