package reflection

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goalkit/goalkit/internal/goal"
	"github.com/goalkit/goalkit/internal/record"
)

// MinWeeklyDays is the minimum number of backing daily reflections a week
// needs before its aggregate is derivable.
const MinWeeklyDays = 3

// DayStat summarizes one daily reflection inside an aggregate.
type DayStat struct {
	Date              time.Time
	OperationsPercent int
	TacticsPercent    int
	EvidenceCount     int
	DayScore          int
}

// Aggregate is a derived reflection over a multi-day period. It is computed
// from the dailies it covers, keyed by period identifier, never a raw union.
type Aggregate struct {
	Period        Period
	Days          []DayStat
	AvgOperations float64
	AvgTactics    float64
	AvgDayScore   float64
	TotalEvidence int
}

// DayStats reduces a daily reflection to its aggregate contribution.
func DayStats(r *Reflection) DayStat {
	stat := DayStat{Date: r.Period.Date, DayScore: r.Ratings.DayScore}
	var opsTotal, opsDone, krTotal, krDone int
	for _, p := range r.Plans {
		for _, op := range p.Operations {
			opsTotal++
			if op.Done {
				opsDone++
			}
		}
		for _, kr := range p.Tactics {
			krTotal++
			if kr.Done {
				krDone++
			}
		}
	}
	if opsTotal > 0 {
		stat.OperationsPercent = opsDone * 100 / opsTotal
	}
	if krTotal > 0 {
		stat.TacticsPercent = krDone * 100 / krTotal
	}
	for _, ev := range r.Evidence {
		if ev.Done {
			stat.EvidenceCount++
		}
	}
	return stat
}

// Derive computes the aggregate for a multi-day period from the store's
// dailies. A weekly period with fewer than MinWeeklyDays backing dailies is
// "no data yet": the error wraps record.ErrNotFound and the caller decides
// whether to skip or complain. Per-record parse failures are collected, not
// fatal.
func Derive(s *Store, p Period) (*Aggregate, []error, error) {
	if p.Type == Daily {
		return nil, nil, fmt.Errorf("derive aggregate: period type %q is the base unit", p.Type)
	}
	from, to := p.Range()
	agg := &Aggregate{Period: p}
	var errs []error
	for r, err := range s.ListRange(from, to) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		agg.Days = append(agg.Days, DayStats(r))
	}
	if p.Type == Weekly && len(agg.Days) < MinWeeklyDays {
		return nil, errs, fmt.Errorf("weekly aggregate %s: %d daily reflections, need at least %d: %w",
			p.Key(), len(agg.Days), MinWeeklyDays, record.ErrNotFound)
	}
	if len(agg.Days) == 0 {
		return nil, errs, fmt.Errorf("aggregate %s: no daily reflections in range: %w", p.Key(), record.ErrNotFound)
	}

	var opsSum, tacticsSum, scoreSum, scored int
	for _, d := range agg.Days {
		opsSum += d.OperationsPercent
		tacticsSum += d.TacticsPercent
		agg.TotalEvidence += d.EvidenceCount
		if d.DayScore > 0 {
			scoreSum += d.DayScore
			scored++
		}
	}
	n := float64(len(agg.Days))
	agg.AvgOperations = float64(opsSum) / n
	agg.AvgTactics = float64(tacticsSum) / n
	if scored > 0 {
		agg.AvgDayScore = float64(scoreSum) / float64(scored)
	}
	return agg, errs, nil
}

var aggregateTitles = map[PeriodType]string{
	Weekly:    "Weekly Reflection",
	Monthly:   "Monthly Reflection",
	Quarterly: "Quarterly Reflection",
	Yearly:    "Yearly Reflection",
}

var aggDayRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}): operations (\d+)%, tactics (\d+)%, evidence (\d+), score (\d+)/10$`)

// RenderAggregate serializes an aggregate reflection document.
func RenderAggregate(a *Aggregate) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", aggregateTitles[a.Period.Type], a.Period.Key())
	fmt.Fprintf(&b, "**Days tracked:** %d\n", len(a.Days))
	fmt.Fprintf(&b, "**Avg operations:** %.1f%%\n", a.AvgOperations)
	fmt.Fprintf(&b, "**Avg tactics:** %.1f%%\n", a.AvgTactics)
	fmt.Fprintf(&b, "**Avg day score:** %.1f/10\n", a.AvgDayScore)
	fmt.Fprintf(&b, "**Total evidence:** %d\n\n", a.TotalEvidence)
	b.WriteString("## DAYS\n\n")
	for _, d := range a.Days {
		fmt.Fprintf(&b, "- %s: operations %d%%, tactics %d%%, evidence %d, score %d/10\n",
			d.Date.Format(goal.DateFormat), d.OperationsPercent, d.TacticsPercent, d.EvidenceCount, d.DayScore)
	}
	return []byte(b.String())
}

// SaveAggregate writes the aggregate into its canonical location atomically.
func (s *Store) SaveAggregate(a *Aggregate) error {
	if err := record.WriteFileAtomic(s.Path(a.Period), RenderAggregate(a)); err != nil {
		return fmt.Errorf("save aggregate %s: %w", a.Period.Key(), err)
	}
	return nil
}

// LoadAggregate reads a previously derived aggregate. A missing file yields
// record.ErrNotFound distinct from a parse failure.
func (s *Store) LoadAggregate(p Period) (*Aggregate, error) {
	if p.Type == Daily {
		return nil, fmt.Errorf("load aggregate: period type %q is the base unit", p.Type)
	}
	path := s.Path(p)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("aggregate %s: %w", p.Key(), record.ErrNotFound)
		}
		return nil, fmt.Errorf("read aggregate %s: %w", p.Key(), err)
	}
	return parseAggregate(path, p, string(data))
}

func parseAggregate(path string, p Period, content string) (*Aggregate, error) {
	days, ok := record.Section(content, "## DAYS")
	if !ok {
		return nil, &record.ParseError{Path: path, Reason: "missing DAYS section"}
	}
	a := &Aggregate{Period: p}
	for _, item := range record.Bullets(days) {
		m := aggDayRe.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		date, err := time.Parse(goal.DateFormat, m[1])
		if err != nil {
			continue
		}
		a.Days = append(a.Days, DayStat{
			Date:              date,
			OperationsPercent: atoi(m[2]),
			TacticsPercent:    atoi(m[3]),
			EvidenceCount:     atoi(m[4]),
			DayScore:          atoi(m[5]),
		})
	}
	a.AvgOperations = parseFloatField(content, "Avg operations")
	a.AvgTactics = parseFloatField(content, "Avg tactics")
	a.AvgDayScore = parseFloatField(content, "Avg day score")
	for _, d := range a.Days {
		a.TotalEvidence += d.EvidenceCount
	}
	return a, nil
}

func parseFloatField(content, name string) float64 {
	v, ok := record.Field(content, name)
	if !ok {
		return 0
	}
	v = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(v), "%"), "/10")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
