package extract

import (
	"github.com/google/uuid"

	"github.com/propledger/propledger/pkg/money"
	"github.com/propledger/propledger/pkg/period"
)

// DocType tags which extractor produced a result. The tag never changes after
// creation.
type DocType string

const (
	DocRental  DocType = "rental"
	DocBank    DocType = "bank"
	DocUtility DocType = "utility"
	DocInvoice DocType = "invoice"
	// DocAuto asks the dispatcher to detect the type from the text.
	DocAuto DocType = "auto"
)

// Source records which tier produced the amounts. Diagnostic only; the merge
// engine ignores it.
type Source string

const (
	SourcePattern   Source = "pattern"
	SourceTable     Source = "table"
	SourceDelegated Source = "delegated"
	SourceFailed    Source = "failed"
)

// Result is the typed output of one extracted document. Exactly one of the
// per-type fact structs is non-nil, matching DocType.
type Result struct {
	ID       uuid.UUID
	Filename string
	DocType  DocType

	// Period is nil until detected or supplied by the operator.
	Period *period.Period

	// Address is advisory; empty means unknown, never "no address".
	Address string

	Source Source

	Rental  *RentalFacts
	Bank    *BankFacts
	Utility *UtilityFacts
	Invoice *InvoiceFacts
}

// RentalFacts are the figures from a rental/ownership statement.
// MoneyIn - MoneyOut should approximate EFT; that identity is advisory and
// never enforced here.
type RentalFacts struct {
	MoneyIn  float64
	MoneyOut float64
	EFT      float64

	// Items is the per-category P&L view: Rental Income, Management Fees,
	// plus any itemized bills found on the statement.
	Items map[string]float64

	// Rooms is the per-room breakdown when the statement has one.
	Rooms map[string]Room
}

// Room is one room or unit's slice of a multi-tenancy statement.
type Room struct {
	Rent float64
	Mgmt float64
	Net  float64
}

// Transaction is one bank statement line.
type Transaction struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      float64 `csv:"amount"`
	// Direction is "credit" or "debit".
	Direction string `csv:"direction"`
	Section   string `csv:"section"`
	Category  string `csv:"category"`
}

// BankFacts are the parsed transactions and their per-section aggregation.
// Aggregated totals are signed: credits positive, debits negative.
type BankFacts struct {
	Transactions []Transaction
	Sections     map[string]map[string]float64
}

// UtilityFacts identify a bill's utility type and payable amount.
type UtilityFacts struct {
	UtilityType string
	Amount      float64
}

// InvoiceFacts describe a tax invoice or government notice.
type InvoiceFacts struct {
	Section  string
	Category string
	Amount   float64
	GST      float64
	Vendor   string
}

// CatEFT is the ledger label for the net owner disbursement. It is a cash
// line, not a P&L category, so it lives outside the classifier vocabulary.
const CatEFT = "Cash Received (EFT)"

// Facts flattens the result into the category -> amount map the merge engine
// consumes. Bank totals keep their sign; everything else is a positive bill
// or income line.
func (r *Result) Facts() map[string]float64 {
	out := make(map[string]float64)
	switch r.DocType {
	case DocRental:
		if r.Rental == nil {
			return out
		}
		for cat, amt := range r.Rental.Items {
			out[cat] = money.Round2(amt)
		}
		out[CatEFT] = money.Round2(r.Rental.EFT)
	case DocBank:
		if r.Bank == nil {
			return out
		}
		for _, cats := range r.Bank.Sections {
			for cat, amt := range cats {
				out[cat] = money.Round2(out[cat] + amt)
			}
		}
	case DocUtility:
		if r.Utility == nil {
			return out
		}
		out[r.Utility.UtilityType] = money.Round2(r.Utility.Amount)
	case DocInvoice:
		if r.Invoice == nil {
			return out
		}
		out[r.Invoice.Category] = money.Round2(r.Invoice.Amount)
	}
	return out
}
