package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/internal/domain/extract/recognize"
	"github.com/propledger/propledger/pkg/money"
	"github.com/propledger/propledger/pkg/period"
)

const monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|` +
	`jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|` +
	`nov(?:ember)?|dec(?:ember)?`

var (
	ailoHeaderRe = regexp.MustCompile(`(?i)ownership\s+statement\s+\w+\s+\d{4}`)

	ownershipDateRe = regexp.MustCompile(`(?i)ownership\s+statement\s+(` + monthAlt + `)\s+(\d{4})`)

	// The period's end date names the accounting month.
	statementPeriodRe = regexp.MustCompile(`(?i)statement\s+period[:\s]*\d{1,2}\s+\w+\s+\d{4}\s*[—\-–]+\s*\d{1,2}\s+(` +
		monthAlt + `)\s+(\d{4})`)

	ailoRoomAddrRe = regexp.MustCompile(`(?i)Room\s+\d+,\s+(.+?)\s+Net income:`)

	ailoIncomeRe   = regexp.MustCompile(`(?im)^\s*Income\s+\$([\d,]+\.?\d*)`)
	ailoFeesRe     = regexp.MustCompile(`(?i)Total\s+paid\s+in\s+agency\s+fees\s+\$([\d,]+\.?\d*)`)
	ailoNetRe      = regexp.MustCompile(`(?i)Net income:\s+\$([\d,]+\.?\d*)`)
	ailoExpensesRe = regexp.MustCompile(`(?im)^\s*Expenses\s+\$[\d,]+\.?\d*\s+\$([\d,]+\.?\d*)`)

	ailoRoomNetRe = regexp.MustCompile(`(?i)(Room\s+\d+),\s+[^\n]+?Net income:\s+\$([\d,]+\.?\d*)`)

	// Itemized bill lines: "<category> · <details> $amount".
	ailoBillLineRe = regexp.MustCompile(`(?m)^([A-Za-z][^\n·]{1,80}?)\s+·\s+[^\n$]*\$([\d,]+\.?\d*)\s*$`)
	billSkipRe     = regexp.MustCompile(`(?i)^(rent\s+payment|management\s+fees?|paid\s+on|contributions?|` +
		`failed|transfer\s+to|withdrawal|total|gst|overview|income|expenses)`)

	genericRoomRe  = regexp.MustCompile(`(?i)(room\s*\d+\b|unit\s*\w+\b)`)
	roomTotalRe    = regexp.MustCompile(`(?i)Total\s+\$([\d,]+\.?\d*)\s+\$([\d,]+\.?\d*)`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// genericMoneyPatterns extract money figures from non-Ailo statements. Later
// EFT patterns overwrite earlier matches; money_in and money_out only fill
// empty slots.
var genericMoneyPatterns = []struct {
	re    *regexp.Regexp
	field string
}{
	{regexp.MustCompile(`(?i)money\s+in[:\s]+\$?([\d,]+\.?\d*)`), "money_in"},
	{regexp.MustCompile(`(?i)money\s+out[:\s]+\$?([\d,]+\.?\d*)`), "money_out"},
	{regexp.MustCompile(`(?i)you\s+received[:\s]+\$?([\d,]+\.?\d*)`), "eft"},
	{regexp.MustCompile(`(?i)withdrawal\s+by\s+eft[^$\n]{0,60}\$?([\d,]+\.?\d*)`), "eft"},
	{regexp.MustCompile(`(?i)eft\s+to\s+owner[^$\n]{0,30}\$?([\d,]+\.?\d*)`), "eft"},
	{regexp.MustCompile(`(?i)eft[^$\d\n]{0,20}\$?([\d,]+\.?\d*)`), "eft"},
	{regexp.MustCompile(`(?i)net\s+amount[:\s]+\$?([\d,]+\.?\d*)`), "eft"},
	{regexp.MustCompile(`(?i)disbursement\s+to\s+owner[:\s]+\$?([\d,]+\.?\d*)`), "eft"},
}

// tableLabelMap binds label substrings in grid tables to money fields, most
// specific first. Used by the tier B fallback for statements that render
// proper tables (PropertyMe, Console, Palace and friends).
var tableLabelMap = []struct {
	keywords []string
	field    string
}{
	{[]string{"money in", "total receipts", "gross income", "total income",
		"total rent", "rental income", "income received",
		"total trust receipts"}, "money_in"},
	{[]string{"money out", "total paid in agency", "agency fee",
		"management fee", "total fees", "total disbursements",
		"total deductions", "total charges", "total expenses",
		"total trust disbursements"}, "money_out"},
	{[]string{"you received", "eft to owner", "withdrawal by eft",
		"disbursement to owner", "net amount", "total forwarded",
		"total remitted", "net proceeds", "owner payout",
		"amount paid to owner", "balance remaining",
		"net owner payment", "owner disbursement"}, "eft"},
}

func (e *Extractor) extractRental(ctx context.Context, doc *pdftext.Document) *Result {
	text := doc.Text
	isAilo := ailoHeaderRe.MatchString(text)

	result := &Result{
		DocType: DocRental,
		Source:  SourcePattern,
		Rental: &RentalFacts{
			Items: make(map[string]float64),
			Rooms: make(map[string]Room),
		},
	}
	facts := result.Rental

	result.Period = rentalPeriod(text)
	result.Address = rentalAddress(text)

	if isAilo {
		e.ailoFigures(ctx, text, facts)
	} else {
		genericFigures(text, facts)
		genericRooms(text, facts)
	}

	// Tier B: grid tables, only when patterns produced nothing usable.
	if facts.MoneyIn == 0 && facts.EFT == 0 {
		if tableFigures(doc.Tables, facts) {
			result.Source = SourceTable
		}
	}

	// Tier C: cached layout patterns, then the delegated service.
	if facts.MoneyIn == 0 && facts.EFT == 0 {
		if e.delegatedRental(ctx, text, result) {
			result.Source = SourceDelegated
		} else {
			result.Source = SourceFailed
		}
	}

	facts.Items[categorize.CatRentalIncome] = facts.MoneyIn
	facts.Items[categorize.CatManagementFees] = facts.MoneyOut
	return result
}

// rentalPeriod prefers the platform's own statement labels over incidental
// dates in transaction history.
func rentalPeriod(text string) *period.Period {
	for _, re := range []*regexp.Regexp{ownershipDateRe, statementPeriodRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			p := period.Period{Year: atoiSafe(m[2]), Month: recognize.MonthNumber(m[1])}
			if p.Valid() {
				return &p
			}
		}
	}
	if p, ok := recognize.DetectPeriod(text); ok {
		return &p
	}
	return nil
}

func rentalAddress(text string) string {
	if m := ailoRoomAddrRe.FindStringSubmatch(text); m != nil {
		return whitespaceRuns.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	}
	return recognize.DetectAddress(text)
}

func (e *Extractor) ailoFigures(ctx context.Context, text string, facts *RentalFacts) {
	if m := ailoIncomeRe.FindStringSubmatch(text); m != nil {
		facts.MoneyIn, _ = money.ParseAmount(m[1])
	}
	if m := ailoFeesRe.FindStringSubmatch(text); m != nil {
		facts.MoneyOut, _ = money.ParseAmount(m[1])
	}

	// EFT is the sum of per-room net incomes: gross rent minus all fees and
	// bills, the true amount transferred to the owner.
	nets := ailoNetRe.FindAllStringSubmatch(text, -1)
	if len(nets) > 0 {
		var sum float64
		for _, m := range nets {
			v, _ := money.ParseAmount(m[1])
			sum += v
		}
		facts.EFT = money.Round2(sum)
	} else if facts.MoneyIn > 0 {
		if m := ailoExpensesRe.FindStringSubmatch(text); m != nil {
			out, _ := money.ParseAmount(m[1])
			facts.EFT = money.Round2(facts.MoneyIn - out)
		}
	}

	e.ailoBills(ctx, text, facts)

	for _, m := range ailoRoomNetRe.FindAllStringSubmatch(text, -1) {
		name := titleCase(strings.TrimSpace(m[1]))
		net, _ := money.ParseAmount(m[2])
		facts.Rooms[name] = Room{Rent: net, Net: net}
	}
}

// ailoBills pulls itemized expense lines so each bill lands on its own P&L
// line. Rent and management-fee restatements are skipped: those figures are
// already captured as MoneyIn/MoneyOut and must not be counted twice.
func (e *Extractor) ailoBills(ctx context.Context, text string, facts *RentalFacts) {
	totals := make(map[string]float64)
	for _, m := range ailoBillLineRe.FindAllStringSubmatch(text, -1) {
		label := strings.TrimSpace(m[1])
		amt, ok := money.ParseAmount(m[2])
		if !ok || amt <= 0 || billSkipRe.MatchString(label) {
			continue
		}
		section, category := e.classifier.Classify(ctx, label)
		if section != categorize.SectionOpex && section != categorize.SectionUtilities {
			continue
		}
		totals[category] = money.Round2(totals[category] + amt)
	}
	for category, amt := range totals {
		if category != categorize.CatManagementFees {
			facts.Items[category] = amt
		}
	}
}

func genericFigures(text string, facts *RentalFacts) {
	for _, p := range genericMoneyPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := money.ParseAmount(m[1])
		if !ok {
			continue
		}
		switch p.field {
		case "money_in":
			if facts.MoneyIn == 0 {
				facts.MoneyIn = v
			}
		case "money_out":
			if facts.MoneyOut == 0 {
				facts.MoneyOut = v
			}
		case "eft":
			facts.EFT = v
		}
	}
}

// genericRooms finds each room or unit heading and reads the "Total $out $in"
// summary inside that room's own segment. A segment runs to the next room
// heading (or end of text), never a fixed window: per-room transaction
// histories can be arbitrarily long.
func genericRooms(text string, facts *RentalFacts) {
	locs := genericRoomRe.FindAllStringSubmatchIndex(text, -1)
	var headers [][2]int
	for _, loc := range locs {
		rest := strings.TrimLeft(text[loc[1]:], " ")
		// "unit 2/14 example st" is an address fragment, not a heading.
		if strings.HasPrefix(rest, "/") {
			continue
		}
		headers = append(headers, [2]int{loc[0], loc[1]})
	}

	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		name := titleCase(strings.TrimSpace(text[h[0]:h[1]]))
		segment := text[h[0]:end]

		tot := roomTotalRe.FindStringSubmatch(segment)
		if tot == nil {
			continue
		}
		// Column order in these layouts is Out (fees) then In (rent).
		mgmt, _ := money.ParseAmount(tot[1])
		rent, _ := money.ParseAmount(tot[2])
		facts.Rooms[name] = Room{Rent: rent, Mgmt: mgmt, Net: money.Round2(rent - mgmt)}
	}
}

// tableFigures scans grid tables for label/value rows. Reports whether any
// field was filled.
func tableFigures(tables []pdftext.Table, facts *RentalFacts) bool {
	found := make(map[string]float64)
	for _, table := range tables {
		for _, row := range table {
			if len(row) < 2 {
				continue
			}
			label := ""
			for _, cell := range row {
				if s := strings.TrimSpace(cell); s != "" {
					label = strings.ToLower(s)
					break
				}
			}
			if label == "" {
				continue
			}

			var amount float64
			ok := false
			for _, cell := range row[1:] {
				if v, parsed := money.ParseAmount(cell); parsed && v > 0 {
					amount, ok = v, true
					break
				}
			}
			if !ok {
				continue
			}

			for _, entry := range tableLabelMap {
				if _, seen := found[entry.field]; seen {
					continue
				}
				for _, kw := range entry.keywords {
					if strings.Contains(label, kw) {
						found[entry.field] = amount
						break
					}
				}
			}
		}
	}

	any := false
	if v, ok := found["money_in"]; ok && v > 0 {
		facts.MoneyIn, any = v, true
	}
	if v, ok := found["money_out"]; ok && v > 0 {
		facts.MoneyOut, any = v, true
	}
	if v, ok := found["eft"]; ok && v > 0 {
		facts.EFT, any = v, true
	}
	return any
}

// delegatedRentalReply is the strict JSON contract for delegated rental
// extraction. Patterns are optional per-field regexes describing where the
// value sits in this layout.
type delegatedRentalReply struct {
	MoneyIn  *float64          `json:"money_in"`
	MoneyOut *float64          `json:"money_out"`
	EFT      *float64          `json:"eft"`
	Year     *int              `json:"year"`
	Month    *int              `json:"month"`
	Address  string            `json:"address"`
	Patterns map[string]string `json:"patterns"`
}

// delegatedRental is tier C. Cached layout patterns are tried first so a
// recurring format costs nothing; otherwise one delegated call is made and
// any returned patterns are validated and cached for next time.
func (e *Extractor) delegatedRental(ctx context.Context, text string, result *Result) bool {
	facts := result.Rental
	fp := Fingerprint(text)

	cached := e.layouts.Apply(fp, text)
	if applyRentalFields(cached, facts) {
		return true
	}

	if e.delegate == nil {
		return false
	}
	out := e.delegate.GenerateJSON(ctx, "extract_rental", rentalPrompt(e.excerpt(text)))
	if !out.OK() {
		return false
	}

	var reply delegatedRentalReply
	if err := json.Unmarshal(out.Value, &reply); err != nil {
		e.logger.Warn("delegated rental reply had wrong shape", slog.Any("error", err))
		return false
	}

	values := make(map[string]float64)
	if reply.MoneyIn != nil && *reply.MoneyIn > 0 {
		values["money_in"] = *reply.MoneyIn
	}
	if reply.MoneyOut != nil && *reply.MoneyOut > 0 {
		values["money_out"] = *reply.MoneyOut
	}
	if reply.EFT != nil && *reply.EFT > 0 {
		values["eft"] = *reply.EFT
	}
	any := applyRentalFields(values, facts)

	if result.Period == nil && reply.Year != nil && reply.Month != nil {
		p := period.Period{Year: *reply.Year, Month: *reply.Month}
		if p.Valid() {
			result.Period = &p
		}
	}
	if result.Address == "" && reply.Address != "" {
		result.Address = strings.TrimSpace(reply.Address)
	}

	if any && len(reply.Patterns) > 0 {
		e.layouts.Learn(fp, text, reply.Patterns, values)
	}
	return any
}

func applyRentalFields(values map[string]float64, facts *RentalFacts) bool {
	any := false
	if v, ok := values["money_in"]; ok && v > 0 {
		facts.MoneyIn, any = v, true
	}
	if v, ok := values["money_out"]; ok && v > 0 {
		facts.MoneyOut, any = v, true
	}
	if v, ok := values["eft"]; ok && v > 0 {
		facts.EFT, any = v, true
	}
	return any
}

func rentalPrompt(excerpt string) string {
	return "Extract the following fields from this rental/ownership statement.\n" +
		"Return ONLY a JSON object, no explanation, no markdown fences.\n" +
		"Keys:\n" +
		"  money_in  - total rental income received (number)\n" +
		"  money_out - total management/agency fees charged (number)\n" +
		"  eft       - net amount disbursed/transferred to the owner (number)\n" +
		"  year      - statement year (integer)\n" +
		"  month     - statement month, 1-12 (integer)\n" +
		"  address   - rental property street address (string)\n" +
		"  patterns  - object mapping money_in/money_out/eft to a regular\n" +
		"              expression with one capture group that would extract\n" +
		"              that number from statements in this exact layout\n" +
		"Use null for any field you cannot confidently identify.\n\n" +
		"Statement text:\n" + excerpt
}

// titleCase capitalizes each word ("room 2" -> "Room 2").
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
