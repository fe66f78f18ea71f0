// Package money provides currency-safe parsing and rounding for the amounts
// that flow through the extraction pipeline and the ledger. Parsing follows
// the accounting convention used by Australian statements and invoices:
// optional "$" or "AUD" prefix, thousands separators, and parenthesized
// negatives.
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// AUD is the currency every document in the pipeline is denominated in.
const AUD = "AUD"

// Tolerance is the maximum absolute difference at which two ledger amounts
// are considered the same value. Matches the merge engine's unchanged check.
const Tolerance = 0.005

// ParseAmount parses a money token from extracted PDF text.
// It strips currency prefixes, thousands separators and whitespace, and
// treats "(500.00)" as -500.00. The second return value is false when the
// token is not a number at all; callers must not conflate that with zero.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, "AUD", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), true
}

// Round2 rounds to 2 decimal places using decimal arithmetic, so repeated
// additive merges do not accumulate binary float drift.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Equalish reports whether two amounts are the same value within Tolerance.
func Equalish(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().
		LessThanOrEqual(decimal.NewFromFloat(Tolerance))
}

// Display formats an amount the way the change log and review surfaces show
// it, e.g. 1234.5 -> "$1,234.50".
func Display(v float64) string {
	cents := decimal.NewFromFloat(v).Mul(decimal.New(1, 2)).Round(0).IntPart()
	return gomoney.New(cents, AUD).Display()
}

// GSTComponent returns the GST portion included in a GST-inclusive total at
// the standard 10% rate: total - total/1.1.
func GSTComponent(total float64) float64 {
	d := decimal.NewFromFloat(total)
	base := d.Div(decimal.NewFromFloat(1.1))
	return d.Sub(base).Round(2).InexactFloat64()
}
