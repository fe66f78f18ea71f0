// Package recognize holds the pattern library that pulls typed values out of
// raw statement text: accounting periods, Australian property addresses, and
// invoice totals. All functions are pure; a miss is a zero value plus a
// false/empty signal, never an error.
package recognize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/propledger/propledger/pkg/money"
	"github.com/propledger/propledger/pkg/period"
)

// monthNumbers maps month names and their three-letter prefixes to 1..12.
var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// MonthNumber resolves a month name ("March", "mar") or numeric string to
// 1..12, or 0 when unrecognized.
func MonthNumber(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		if m, ok := monthNumbers[s[:3]]; ok {
			return m
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	return 0
}

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`

// Labeled date fields are far more reliable than incidental dates in
// transaction tables, so they are tried first and the first match wins.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)issue\s*date[:\s]+(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)date\s+of\s+issue[:\s]+(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)date\s+of\s+payment[:\s]+(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)invoice\s+date[:\s]+(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)tax\s+invoice[^:]*:\s*(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)billing\s+date[:\s]+(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)statement\s+date[:\s]+(\d{1,2})[/.](\d{1,2})[/.](\d{4})`),
	regexp.MustCompile(`(?i)(` + monthNames + `)\s+(\d{4})`),
	regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[- ](\d{2,4})`),
	regexp.MustCompile(`(\d{1,2})[/-](\d{4})\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthNames + `)\s+(\d{4})`),
}

// DetectPeriod scans text for a statement month and year. Patterns are tried
// in priority order and the first match in that order wins, not the best one.
func DetectPeriod(text string) (period.Period, bool) {
	for _, pat := range datePatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var p period.Period
		switch len(m) - 1 {
		case 2: // month, year
			p.Month = MonthNumber(m[1])
			p.Year = parseYear(m[2])
		case 3: // day, month, year
			p.Month = MonthNumber(m[2])
			p.Year = parseYear(m[3])
		}

		if p.Valid() {
			return p, true
		}
	}
	return period.Period{}, false
}

func parseYear(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if len(s) == 2 {
		return 2000 + n
	}
	return n
}

// Labeled address fields, in specificity order.
var labeledAddressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)property\s+address[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)service\s+address[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)supply\s+address[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)installation\s+address[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)premises[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)rental\s+property[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)site\s+address[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)property\s+location[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)delivery\s+address[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)property\s+details[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)address\s+of\s+supply[:\s]+([^\n]+)`),
}

// ausAddressPattern recognizes "<number> <street> <type> ... <STATE> <postcode>"
// against the closed list of Australian street-type abbreviations and states.
var ausAddressPattern = regexp.MustCompile(
	`(?i)\d+[A-Za-z]?\s+[\w'\-]+(?:\s+[\w'\-]+){0,3}\s+` +
		`(?:Street|St|Avenue|Ave|Av|Road|Rd|Drive|Dr|Place|Pl|Court|Ct|` +
		`Crescent|Cres|Cr|Boulevard|Blvd|Lane|Ln|Lne|Way|Wy|Close|Cl|` +
		`Circuit|Cct|Cir|Parade|Pde|Terrace|Tce|Highway|Hwy|` +
		`Grove|Gr|Gve|Parkway|Pkwy|Park|Pk|Square|Sq|` +
		`Freeway|Fwy|Rise|Green|Grn|Gate|Gte|Gardens|Gts|Mews|Loop)\b` +
		`(?:[,\s]+[\w\s]+?)?[,\s]+` +
		`(?:NSW|VIC|QLD|WA|SA|TAS|ACT|NT)\s+\d{4}`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// DetectAddress extracts a property or service address. Labeled fields win;
// matches shorter than 7 or longer than 199 characters are discarded to avoid
// capturing single tokens or whole paragraphs. Returns "" when nothing is
// found; callers must treat empty as unknown, never as a mismatch.
func DetectAddress(text string) string {
	for _, pat := range labeledAddressPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		addr := whitespaceRun.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(addr) > 6 && len(addr) < 200 {
			return addr
		}
	}

	if m := ausAddressPattern.FindString(text); m != "" {
		return whitespaceRun.ReplaceAllString(strings.TrimSpace(m), " ")
	}
	return ""
}

// cur is the optional currency prefix inside invoice totals: "AUD " or "$".
const cur = `(?:AUD\s*|\$\s*)?`

// Invoice total patterns in priority order. A bare "total:" is the noisiest
// match and is deliberately last.
var invoiceTotalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)amount\s+paid\s+today\s+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)total\s+amount\s+due[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)amount\s+(?:due|payable)[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)amount\s+due\s+by[^$\n]{0,40}` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)full\s*payment\s*due[^$\n]{0,30}` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)payment\s+option\s*1[^$\n]{0,50}` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)invoice\s+total[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)total\s+incl(?:\.|\s+)?\s*gst[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)total\s+inc(?:\.|\s+)?\s*gst[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)total\s+including\s+gst[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)balance\s+due[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)please\s+pay[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)payment\s+required[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)amount\s+to\s+pay[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)net\s+amount[:\s]+` + cur + `([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)\btotal[:\s]+` + cur + `([\d,]+\.?\d*)`),
}

// InvoiceTotal extracts the payable amount from invoice or bill text.
// Returns the first positive match in priority order, or 0 when none.
func InvoiceTotal(text string) float64 {
	for _, pat := range invoiceTotalPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := money.ParseAmount(m[1]); ok && v > 0 {
			return v
		}
	}
	return 0
}
