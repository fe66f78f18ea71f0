// Package workbook renders a session's ledgers into a formula-linked Excel
// workbook: one P&L sheet per property plus a portfolio summary.
package workbook

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract"
	"github.com/propledger/propledger/internal/domain/ledger"
	"github.com/propledger/propledger/pkg/period"
)

// Row labels that are not ledger categories.
const (
	rowOtherIncome      = "Other Income"
	rowExcessBillShares = "Excess Bill Shares"
	rowTotalIncome      = "Total Income"
	rowTotalOpex        = "Total Operating Expenses"
	rowTotalUtilities   = "Total Utilities"
	rowNetResult        = "Net Result"
	rowLessUtilities    = "Less: Utilities Paid"
	rowLessMortgage     = "Less: Mortgage Repayment"
	rowPrincipalRepaid  = "Principal Repaid"
)

var incomeRows = []string{
	categorize.CatRentalIncome,
	rowOtherIncome,
	rowExcessBillShares,
}

var opexRows = []string{
	categorize.CatManagementFees,
	categorize.CatLettingFees,
	categorize.CatCouncilRates,
	categorize.CatLandTax,
	categorize.CatStrata,
	categorize.CatBuildingInsurance,
	categorize.CatMaintenance,
	categorize.CatCleaning,
	categorize.CatAdvertising,
	categorize.CatMiscellaneous,
}

var utilityRows = []string{
	categorize.CatElectricity,
	categorize.CatWater,
	categorize.CatGas,
	categorize.CatInternet,
}

// Renderer builds the output workbook. Styling chrome is intentionally
// minimal; the value is in the data and the formulas.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render produces the workbook for every property in the session. Properties
// with empty ledgers still get a sheet so the operator sees them listed.
func (r *Renderer) Render(s *ledger.Session) (*excelize.File, error) {
	f := excelize.NewFile()

	ids := make([]string, 0, len(s.Properties))
	for id := range s.Properties {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	used := map[string]bool{"Summary": true}
	for _, id := range ids {
		prop := s.Properties[id]
		name := sheetName(prop, id, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := r.propertySheet(f, name, prop); err != nil {
			return nil, fmt.Errorf("render sheet %s: %w", name, err)
		}
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := r.summarySheet(f, s, ids); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex("Summary")
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// Save renders and writes the workbook to path.
func (r *Renderer) Save(s *ledger.Session, path string) error {
	f, err := r.Render(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	r.logger.Info("workbook written", slog.String("path", path))
	return nil
}

// propertySheet lays out one property's monthly P&L: months across, category
// rows down, section totals and the net result as formulas over the cells
// above them.
func (r *Renderer) propertySheet(f *excelize.File, sheet string, prop *ledger.Property) error {
	periods := prop.Data.SortedPeriods()

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}
	formula := func(col, row int, expr string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellFormula(sheet, cell, expr)
	}

	if err := set(1, 1, prop.Config.Name); err != nil {
		return err
	}
	for i, p := range periods {
		if err := set(2+i, 1, p.Label()); err != nil {
			return err
		}
	}
	totalCol := 2 + len(periods)
	if err := set(totalCol, 1, "Total"); err != nil {
		return err
	}

	row := 2
	writeValueRow := func(label string, amounts func(period.Period) float64) (int, error) {
		if err := set(1, row, label); err != nil {
			return 0, err
		}
		for i, p := range periods {
			if err := set(2+i, row, amounts(p)); err != nil {
				return 0, err
			}
		}
		if len(periods) > 0 {
			first, _ := excelize.CoordinatesToCellName(2, row)
			last, _ := excelize.CoordinatesToCellName(1+len(periods), row)
			if err := formula(totalCol, row, fmt.Sprintf("SUM(%s:%s)", first, last)); err != nil {
				return 0, err
			}
		}
		written := row
		row++
		return written, nil
	}
	writeSumRow := func(label string, from, to int) (int, error) {
		if err := set(1, row, label); err != nil {
			return 0, err
		}
		for col := 2; col <= totalCol; col++ {
			if col == totalCol && len(periods) == 0 {
				break
			}
			top, _ := excelize.CoordinatesToCellName(col, from)
			bottom, _ := excelize.CoordinatesToCellName(col, to)
			if err := formula(col, row, fmt.Sprintf("SUM(%s:%s)", top, bottom)); err != nil {
				return 0, err
			}
		}
		written := row
		row++
		return written, nil
	}
	fromLedger := func(category string) func(period.Period) float64 {
		return func(p period.Period) float64 {
			v, _ := prop.Data.Amount(p, category)
			return v
		}
	}

	incomeStart := row
	for _, label := range incomeRows {
		if _, err := writeValueRow(label, fromLedger(label)); err != nil {
			return err
		}
	}
	totalIncomeRow, err := writeSumRow(rowTotalIncome, incomeStart, row-1)
	if err != nil {
		return err
	}

	opexStart := row
	for _, label := range opexRows {
		if _, err := writeValueRow(label, fromLedger(label)); err != nil {
			return err
		}
	}
	totalOpexRow, err := writeSumRow(rowTotalOpex, opexStart, row-1)
	if err != nil {
		return err
	}

	utilStart := row
	for _, label := range utilityRows {
		if _, err := writeValueRow(label, fromLedger(label)); err != nil {
			return err
		}
	}
	totalUtilRow, err := writeSumRow(rowTotalUtilities, utilStart, row-1)
	if err != nil {
		return err
	}

	interestRow, err := writeValueRow(categorize.CatMortgageInterest,
		fromLedger(categorize.CatMortgageInterest))
	if err != nil {
		return err
	}

	// Net = income - operating expenses - utilities - mortgage interest.
	// Expense rows hold positive amounts; signed bank debits already arrive
	// negative, so the workbook subtracts the totals, not the signs.
	if err := set(1, row, rowNetResult); err != nil {
		return err
	}
	for col := 2; col <= totalCol; col++ {
		if col == totalCol && len(periods) == 0 {
			break
		}
		inc, _ := excelize.CoordinatesToCellName(col, totalIncomeRow)
		opex, _ := excelize.CoordinatesToCellName(col, totalOpexRow)
		util, _ := excelize.CoordinatesToCellName(col, totalUtilRow)
		intr, _ := excelize.CoordinatesToCellName(col, interestRow)
		if err := formula(col, row, fmt.Sprintf("%s-%s-%s-%s", inc, opex, util, intr)); err != nil {
			return err
		}
	}
	row += 2

	// Cash view: what actually hit the owner's account.
	if _, err := writeValueRow(extract.CatEFT, fromLedger(extract.CatEFT)); err != nil {
		return err
	}
	if err := set(1, row, rowLessUtilities); err != nil {
		return err
	}
	for col := 2; col <= totalCol; col++ {
		if col == totalCol && len(periods) == 0 {
			break
		}
		util, _ := excelize.CoordinatesToCellName(col, totalUtilRow)
		if err := formula(col, row, fmt.Sprintf("-%s", util)); err != nil {
			return err
		}
	}
	row++
	repayRow, err := writeValueRow(rowLessMortgage, fromLedger(categorize.CatMortgageRepayment))
	if err != nil {
		return err
	}
	if err := set(1, row, rowPrincipalRepaid); err != nil {
		return err
	}
	for col := 2; col <= totalCol; col++ {
		if col == totalCol && len(periods) == 0 {
			break
		}
		repay, _ := excelize.CoordinatesToCellName(col, repayRow)
		intr, _ := excelize.CoordinatesToCellName(col, interestRow)
		if err := formula(col, row, fmt.Sprintf("%s-%s", repay, intr)); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "A", 26)
}

// summarySheet aggregates the portfolio: one row per property with purchase
// figures, ledger totals, equity and gross yield.
func (r *Renderer) summarySheet(f *excelize.File, s *ledger.Session, ids []string) error {
	headers := []string{"Property", "Address", "Purchase Price", "Current Value",
		"Mortgage Balance", "Equity", "Income", "Expenses", "Net", "Gross Yield %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(1+i, 1)
		if err := f.SetCellValue("Summary", cell, h); err != nil {
			return err
		}
	}

	for rowIdx, id := range ids {
		prop := s.Properties[id]
		income, expenses := ledgerTotals(prop.Data)
		cfg := prop.Config

		equity := cfg.CurrentValue - cfg.MortgageBalance
		yield := 0.0
		if cfg.PurchasePrice > 0 {
			yield = annualizedIncome(prop.Data) / cfg.PurchasePrice * 100
		}

		values := []any{cfg.Name, cfg.Address, cfg.PurchasePrice, cfg.CurrentValue,
			cfg.MortgageBalance, equity, income, expenses, income - expenses, yield}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(1+col, 2+rowIdx)
			if err := f.SetCellValue("Summary", cell, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth("Summary", "A", "B", 28)
}

// ledgerTotals sums income and expense categories across all periods. Signed
// bank debits count toward expenses by magnitude.
func ledgerTotals(l *ledger.Ledger) (income, expenses float64) {
	for _, cats := range l.Periods {
		for cat, amt := range cats {
			if cat == extract.CatEFT {
				continue
			}
			switch categorize.SectionFor(cat) {
			case categorize.SectionIncome:
				income += amt
			case categorize.SectionOpex, categorize.SectionUtilities, categorize.SectionFinancing:
				if amt < 0 {
					amt = -amt
				}
				expenses += amt
			}
		}
	}
	return income, expenses
}

// annualizedIncome scales the recorded rental income to a full year so new
// ledgers with a couple of months still yield a meaningful figure.
func annualizedIncome(l *ledger.Ledger) float64 {
	months := 0
	var total float64
	for _, cats := range l.Periods {
		if v, ok := cats[categorize.CatRentalIncome]; ok {
			total += v
			months++
		}
	}
	if months == 0 {
		return 0
	}
	return total / float64(months) * 12
}

// sheetName picks a workbook-safe, unique tab name for a property.
func sheetName(prop *ledger.Property, id string, used map[string]bool) string {
	name := prop.Config.Tab
	if name == "" {
		name = prop.Config.Name
	}
	if name == "" {
		name = id
	}
	for _, ch := range []string{"[", "]", ":", "*", "?", "/", "\\"} {
		name = strings.ReplaceAll(name, ch, " ")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}
	if len(name) > 28 {
		name = name[:28]
	}
	base := name
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s %d", base, n)
	}
	used[name] = true
	return name
}
