// Package goal implements the goal record: a three-level objective document
// (strategy, tactics, operations) with an append-only change history.
package goal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateFormat is the date layout used in goal metadata and filenames.
const DateFormat = "2006-01-02"

// Status is the goal lifecycle state. Goals are never deleted, only
// transitioned to completed or cancelled.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ChangeType tags a change-history entry. The set is closed.
type ChangeType string

const (
	ChangeProgress       ChangeType = "PROGRESS"
	ChangeForced         ChangeType = "FORCED_CHANGE"
	ChangeVoluntary      ChangeType = "VOLUNTARY_CHANGE"
	ChangePlanAdjustment ChangeType = "PLAN_ADJUSTMENT"
)

// ValidChangeType reports whether t is one of the four history kinds.
func ValidChangeType(t ChangeType) bool {
	switch t {
	case ChangeProgress, ChangeForced, ChangeVoluntary, ChangePlanAdjustment:
		return true
	}
	return false
}

// ChangeEntry is one append-only history record. Forced changes must name
// the critical event that caused them; it is mirrored into the CRITICAL
// EVENTS section on append.
type ChangeEntry struct {
	Timestamp   time.Time
	Type        ChangeType
	Description string
	Event       string
}

// Validate checks the entry against the closed type set and the
// per-variant field requirements.
func (e ChangeEntry) Validate() error {
	if !ValidChangeType(e.Type) {
		return fmt.Errorf("unknown change type %q", e.Type)
	}
	if e.Type == ChangeForced && strings.TrimSpace(e.Event) == "" {
		return fmt.Errorf("%s entry requires a critical event description", ChangeForced)
	}
	if e.Type != ChangeForced && e.Event != "" {
		return fmt.Errorf("%s entry must not carry a critical event", e.Type)
	}
	return nil
}

// Evidence is a dated identity-evidence observation. The same shape records
// critical events.
type Evidence struct {
	Date        time.Time
	Description string
}

// Method distinguishes the two tactics variants.
type Method string

const (
	MethodOKR   Method = "OKR"
	MethodSMART Method = "SMART"
)

// KeyResult is a measurable sub-target under an OKR objective.
type KeyResult struct {
	Description string
	Progress    int // 0-100
}

// Tactics holds exactly one populated variant: OKR or SMART.
type Tactics struct {
	Method     Method
	Objective  string
	KeyResults []KeyResult
	SMARTGoal  string
	Progress   int // SMART progress, 0-100
}

// IfThen is an implementation-intention rule.
type IfThen struct {
	Trigger string
	Action  string
}

// TinyHabit anchors a small action to an existing routine.
type TinyHabit struct {
	Anchor string
	Action string
}

// Goal is one objective record.
type Goal struct {
	ID      string
	Title   string
	Status  Status
	Created time.Time
	Updated time.Time

	Identity string
	Evidence []Evidence

	Tactics Tactics

	IfThen     []IfThen
	TinyHabits []TinyHabit

	CriticalEvents []Evidence
	History        []ChangeEntry
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// NewID derives a goal id from the creation date and a slug of the title.
func NewID(created time.Time, title string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if slug == "" {
		slug = "goal"
	}
	return fmt.Sprintf("goal_%s_%s", created.Format("2006_01_02"), slug)
}

// Validate enforces the structural invariants of a goal record.
func (g *Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("goal id is empty")
	}
	if !ValidStatus(g.Status) {
		return fmt.Errorf("goal %s: invalid status %q", g.ID, g.Status)
	}
	switch g.Tactics.Method {
	case MethodOKR:
		if g.Tactics.SMARTGoal != "" {
			return fmt.Errorf("goal %s: OKR tactics must not carry a SMART goal", g.ID)
		}
	case MethodSMART:
		if g.Tactics.Objective != "" || len(g.Tactics.KeyResults) > 0 {
			return fmt.Errorf("goal %s: SMART tactics must not carry OKR fields", g.ID)
		}
	default:
		return fmt.Errorf("goal %s: tactics method must be OKR or SMART, got %q", g.ID, g.Tactics.Method)
	}
	var prev time.Time
	for i, e := range g.History {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("goal %s: history entry %d: %w", g.ID, i, err)
		}
		if e.Timestamp.Before(prev) {
			return fmt.Errorf("goal %s: history timestamps decrease at entry %d", g.ID, i)
		}
		prev = e.Timestamp
	}
	return nil
}

// AppendHistory appends entry to the change history, validating its type and
// keeping timestamps non-decreasing. Forced changes are mirrored into the
// critical events list.
func (g *Goal) AppendHistory(entry ChangeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if n := len(g.History); n > 0 && entry.Timestamp.Before(g.History[n-1].Timestamp) {
		entry.Timestamp = g.History[n-1].Timestamp
	}
	g.History = append(g.History, entry)
	if entry.Type == ChangeForced {
		g.CriticalEvents = append(g.CriticalEvents, Evidence{
			Date:        entry.Timestamp,
			Description: entry.Event,
		})
	}
	g.Updated = entry.Timestamp
	return nil
}

// Habits flattens the operations block into named habit keys for the
// streak tracker. If-Then rules and tiny habits share one namespace.
func (g *Goal) Habits() []string {
	out := make([]string, 0, len(g.IfThen)+len(g.TinyHabits))
	for _, r := range g.IfThen {
		out = append(out, fmt.Sprintf("IF %s THEN %s", r.Trigger, r.Action))
	}
	for _, h := range g.TinyHabits {
		out = append(out, fmt.Sprintf("After %s -> %s", h.Anchor, h.Action))
	}
	return out
}
