package ledger

import (
	"log/slog"
	"sort"

	"github.com/propledger/propledger/internal/domain/extract"
	"github.com/propledger/propledger/pkg/metrics"
	"github.com/propledger/propledger/pkg/money"
	"github.com/propledger/propledger/pkg/period"
)

// Mode selects the merge semantics. The two modes are incompatible and never
// share a code path: a fresh session accumulates repeated categories, an
// established ledger diffs against stored values and logs every difference.
type Mode string

const (
	// ModeFresh accumulates: several documents may each contribute to the
	// same period and category in one run, and their amounts must sum.
	ModeFresh Mode = "fresh"
	// ModeRestored diffs against the stored value and overwrites, so a
	// corrected re-upload replaces cleanly and leaves an audit trail.
	ModeRestored Mode = "restored"
)

// Status classifies one change-log entry.
type Status string

const (
	StatusNewMonth  Status = "new_month"
	StatusAdded     Status = "added"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
)

// Change is one audit record for a (period, category) touched during a merge
// pass. A new_month entry carries no category: it records the arrival of a
// whole period.
type Change struct {
	Period   period.Period
	Category string
	Status   Status
	Old      float64
	New      float64
}

// Engine merges batches of extraction results into ledgers. The change log is
// rebuilt on every call, never accumulated across calls.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Merge folds a batch into the ledger under the given mode and returns the
// change log. Results without a resolved period are skipped: the operator
// must supply the month before those documents can land anywhere.
//
// Address-mismatched documents are expected to have been filtered out of the
// batch before the call.
func (e *Engine) Merge(l *Ledger, batch []*extract.Result, mode Mode) []Change {
	var changes []Change

	// Periods created during this pass stay additive for the rest of the
	// pass, whatever the mode: two documents for a brand-new month must
	// sum exactly as they would in a fresh session.
	created := make(map[period.Period]bool)

	for _, result := range batch {
		if result.Period == nil || !result.Period.Valid() {
			e.logger.Warn("skipping result without a resolved period",
				slog.String("filename", result.Filename),
				slog.String("doc_type", string(result.DocType)))
			continue
		}
		p := *result.Period

		facts := result.Facts()
		if len(facts) == 0 {
			continue
		}

		if !l.HasPeriod(p) {
			l.Periods[p] = make(map[string]float64)
			created[p] = true
			if mode == ModeRestored {
				changes = append(changes, Change{Period: p, Status: StatusNewMonth})
			}
		}

		additive := mode == ModeFresh || created[p]
		for _, category := range sortedCategories(facts) {
			amount := facts[category]
			if additive {
				changes = append(changes, e.accumulate(l, p, category, amount))
			} else {
				changes = append(changes, e.reconcile(l, p, category, amount))
			}
		}
	}

	for _, c := range changes {
		metrics.MergeChangesTotal.WithLabelValues(string(c.Status)).Inc()
	}
	return changes
}

func (e *Engine) accumulate(l *Ledger, p period.Period, category string, amount float64) Change {
	old := l.Periods[p][category]
	next := money.Round2(old + amount)
	l.Periods[p][category] = next
	return Change{Period: p, Category: category, Status: StatusAdded, Old: old, New: next}
}

func (e *Engine) reconcile(l *Ledger, p period.Period, category string, amount float64) Change {
	old, exists := l.Periods[p][category]
	amount = money.Round2(amount)
	switch {
	case !exists:
		l.Periods[p][category] = amount
		return Change{Period: p, Category: category, Status: StatusAdded, New: amount}
	case money.Equalish(old, amount):
		return Change{Period: p, Category: category, Status: StatusUnchanged, Old: old, New: old}
	default:
		l.Periods[p][category] = amount
		e.logger.Info("ledger value overwritten",
			slog.String("period", p.Key()),
			slog.String("category", category),
			slog.Float64("old", old),
			slog.Float64("new", amount))
		return Change{Period: p, Category: category, Status: StatusUpdated, Old: old, New: amount}
	}
}

// sortedCategories fixes the per-result log order; map iteration would
// shuffle it between runs.
func sortedCategories(facts map[string]float64) []string {
	cats := make([]string, 0, len(facts))
	for cat := range facts {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}
