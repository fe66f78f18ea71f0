package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/internal/domain/extract/recognize"
	"github.com/propledger/propledger/pkg/money"
)

// bankLineRe is the no-table fallback: "DD/MM/YY description $1,234.56" at
// end of line.
var bankLineRe = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(.+?)\s+\$?([\d,]+\.\d{2})\s*$`)

var creditMarkers = []string{"cr", "credit", "deposit"}

func (e *Extractor) extractBank(ctx context.Context, doc *pdftext.Document) *Result {
	result := &Result{
		DocType: DocBank,
		Source:  SourceTable,
		Bank:    &BankFacts{Sections: make(map[string]map[string]float64)},
	}

	if p, ok := recognize.DetectPeriod(doc.Text); ok {
		result.Period = &p
	}

	txns := e.bankTableTransactions(ctx, doc.Tables)
	if len(txns) == 0 {
		txns = e.bankLineTransactions(ctx, doc.Text)
		result.Source = SourcePattern
	}
	if len(txns) == 0 {
		result.Source = SourceFailed
	}

	result.Bank.Transactions = txns
	for _, tx := range txns {
		amt := tx.Amount
		if tx.Direction == "debit" {
			amt = -amt
		}
		if result.Bank.Sections[tx.Section] == nil {
			result.Bank.Sections[tx.Section] = make(map[string]float64)
		}
		result.Bank.Sections[tx.Section][tx.Category] =
			money.Round2(result.Bank.Sections[tx.Section][tx.Category] + amt)
	}
	return result
}

// bankColumns are the header-detected column roles of one table. Banks order
// their export columns every which way, so roles come from header keywords,
// never positions.
type bankColumns struct {
	date, desc, debit, credit, amount int
}

func detectBankColumns(header []string) (bankColumns, bool) {
	cols := bankColumns{date: -1, desc: -1, debit: -1, credit: -1, amount: -1}
	for i, h := range header {
		h = strings.ToLower(h)
		switch {
		case cols.date == -1 && strings.Contains(h, "date"):
			cols.date = i
		case cols.desc == -1 && containsAny(h, []string{"desc", "detail", "narr", "particular", "transaction"}):
			cols.desc = i
		case cols.debit == -1 && (strings.Contains(h, "debit") || strings.Contains(h, "withdraw")):
			cols.debit = i
		case cols.credit == -1 && (strings.Contains(h, "credit") || strings.Contains(h, "deposit")):
			cols.credit = i
		case cols.amount == -1 && strings.Contains(h, "amount"):
			cols.amount = i
		}
	}
	return cols, cols.desc != -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (e *Extractor) bankTableTransactions(ctx context.Context, tables []pdftext.Table) []Transaction {
	var txns []Transaction
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		cols, ok := detectBankColumns(table[0])
		if !ok {
			continue
		}

		for _, row := range table[1:] {
			desc := cell(row, cols.desc)
			if desc == "" || strings.EqualFold(desc, "none") {
				continue
			}

			amount, direction := 0.0, "debit"
			switch {
			case cols.debit != -1 && cols.credit != -1:
				c, cok := money.ParseAmount(cell(row, cols.credit))
				d, dok := money.ParseAmount(cell(row, cols.debit))
				if cok && c > 0 {
					amount, direction = c, "credit"
				} else if dok && d > 0 {
					amount, direction = d, "debit"
				}
			case cols.amount != -1:
				v, vok := money.ParseAmount(cell(row, cols.amount))
				if !vok {
					continue
				}
				amount = v
				if amount < 0 {
					amount, direction = -amount, "debit"
				} else {
					direction = "credit"
				}
			}

			section, category := e.classifier.Classify(ctx, desc)
			txns = append(txns, Transaction{
				Date:        cell(row, cols.date),
				Description: desc,
				Amount:      money.Round2(amount),
				Direction:   direction,
				Section:     section,
				Category:    category,
			})
		}
	}
	return txns
}

func (e *Extractor) bankLineTransactions(ctx context.Context, text string) []Transaction {
	var txns []Transaction
	for _, line := range strings.Split(text, "\n") {
		m := bankLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, ok := money.ParseAmount(m[3])
		if !ok {
			continue
		}

		direction := "debit"
		if containsAny(strings.ToLower(line), creditMarkers) {
			direction = "credit"
		}

		desc := strings.TrimSpace(m[2])
		section, category := e.classifier.Classify(ctx, desc)
		txns = append(txns, Transaction{
			Date:        m[1],
			Description: desc,
			Amount:      money.Round2(amount),
			Direction:   direction,
			Section:     section,
			Category:    category,
		})
	}
	return txns
}
