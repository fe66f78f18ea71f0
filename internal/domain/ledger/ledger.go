// Package ledger holds the per-property financial record and the merge
// engine that reconciles extraction results into it. A ledger stores one
// authoritative amount per (period, category); how a new amount lands there
// depends on whether the ledger is fresh or restored from a saved session.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/propledger/propledger/pkg/period"
)

// Ledger is the accumulating record for one property: period -> category ->
// current authoritative amount. Amounts are 2-decimal currency values, never
// lists of contributions.
type Ledger struct {
	Periods map[period.Period]map[string]float64
}

func New() *Ledger {
	return &Ledger{Periods: make(map[period.Period]map[string]float64)}
}

// Amount returns the stored value for a period and category. The bool is
// false when the category has never been merged, which is distinct from a
// stored zero.
func (l *Ledger) Amount(p period.Period, category string) (float64, bool) {
	cats, ok := l.Periods[p]
	if !ok {
		return 0, false
	}
	v, ok := cats[category]
	return v, ok
}

// HasPeriod reports whether any category has been merged for the period.
func (l *Ledger) HasPeriod(p period.Period) bool {
	_, ok := l.Periods[p]
	return ok
}

// SortedPeriods returns the ledger's periods oldest first.
func (l *Ledger) SortedPeriods() []period.Period {
	ps := make([]period.Period, 0, len(l.Periods))
	for p := range l.Periods {
		ps = append(ps, p)
	}
	period.Sort(ps)
	return ps
}

// Categories returns every category label appearing anywhere in the ledger,
// sorted for stable rendering.
func (l *Ledger) Categories() []string {
	seen := make(map[string]struct{})
	for _, cats := range l.Periods {
		for cat := range cats {
			seen[cat] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders periods under "YYYY-MM" keys, the session wire form.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	m := make(map[string]map[string]float64, len(l.Periods))
	for p, cats := range l.Periods {
		m[p.Key()] = cats
	}
	return json.Marshal(m)
}

// UnmarshalJSON restores "YYYY-MM" keys back to typed periods. A key that
// does not parse fails the whole load; a session file with corrupt period
// keys must not be silently half-restored.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var m map[string]map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	l.Periods = make(map[period.Period]map[string]float64, len(m))
	for key, cats := range m {
		p, err := period.Parse(key)
		if err != nil {
			return fmt.Errorf("ledger period key: %w", err)
		}
		if cats == nil {
			cats = make(map[string]float64)
		}
		l.Periods[p] = cats
	}
	return nil
}
