package ledger

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/propledger/propledger/internal/domain/extract"
)

type changeRow struct {
	Property string  `csv:"property"`
	Period   string  `csv:"period"`
	Category string  `csv:"category"`
	Status   string  `csv:"status"`
	Old      float64 `csv:"old"`
	New      float64 `csv:"new"`
}

// WriteChangeLog exports one merge pass's change log as CSV for the review
// surface.
func WriteChangeLog(w io.Writer, property string, changes []Change) error {
	rows := make([]changeRow, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, changeRow{
			Property: property,
			Period:   c.Period.Key(),
			Category: c.Category,
			Status:   string(c.Status),
			Old:      c.Old,
			New:      c.New,
		})
	}
	return gocsv.Marshal(&rows, w)
}

// WriteTransactions exports extracted bank transactions as CSV.
func WriteTransactions(w io.Writer, txns []extract.Transaction) error {
	return gocsv.Marshal(&txns, w)
}

type ledgerRow struct {
	Period   string  `csv:"period"`
	Category string  `csv:"category"`
	Amount   float64 `csv:"amount"`
}

// WriteLedger exports a ledger as flat period/category/amount rows, oldest
// period first, categories alphabetical within a period.
func WriteLedger(w io.Writer, l *Ledger) error {
	var rows []ledgerRow
	for _, p := range l.SortedPeriods() {
		cats := l.Periods[p]
		for _, cat := range sortedCategories(cats) {
			rows = append(rows, ledgerRow{Period: p.Key(), Category: cat, Amount: cats[cat]})
		}
	}
	return gocsv.Marshal(&rows, w)
}
