package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/pkg/period"
)

const ailoStatement = `Ownership statement July 2025
Overview
 Income $3,080.00 $0.00 $3,080.00
 Expenses $0.00 $450.00
Total paid in agency fees $300.00
Council rates · City of Penrith notice 4821 $150.00
Rent payment · weekly rent 5 Jul $770.00
Room 1, 12 Wattle Crescent, Penrith NSW 2750 Net income: $2,630.00
`

func TestExtractRentalAilo(t *testing.T) {
	e := newTestExtractor(t, nil)
	doc := &pdftext.Document{Text: ailoStatement}

	result := e.extractRental(context.Background(), doc)
	facts := result.Rental

	require.NotNil(t, result.Period)
	assert.Equal(t, period.Period{Year: 2025, Month: 7}, *result.Period)
	assert.Equal(t, "12 Wattle Crescent, Penrith NSW 2750", result.Address)
	assert.Equal(t, SourcePattern, result.Source)

	assert.InDelta(t, 3080.00, facts.MoneyIn, 0.001)
	assert.InDelta(t, 300.00, facts.MoneyOut, 0.001)
	assert.InDelta(t, 2630.00, facts.EFT, 0.01)

	// The owner's net approximates income minus fees minus itemized bills.
	assert.InDelta(t, facts.MoneyIn-facts.MoneyOut-150.00, facts.EFT, 0.01)

	assert.Equal(t, map[string]float64{
		categorize.CatRentalIncome:   3080.00,
		categorize.CatManagementFees: 300.00,
		categorize.CatCouncilRates:   150.00,
	}, facts.Items)

	require.Contains(t, facts.Rooms, "Room 1")
	assert.InDelta(t, 2630.00, facts.Rooms["Room 1"].Net, 0.001)
}

func TestExtractRentalAiloSkipsRentRestatements(t *testing.T) {
	e := newTestExtractor(t, nil)
	doc := &pdftext.Document{Text: ailoStatement}

	facts := e.extractRental(context.Background(), doc).Rental

	// The "Rent payment · ..." line restates income already counted in
	// MoneyIn and must not become its own item.
	assert.NotContains(t, facts.Items, categorize.CatRentalIncome+" (bill)")
	assert.InDelta(t, 3080.00, facts.Items[categorize.CatRentalIncome], 0.001)
}

func TestExtractRentalGeneric(t *testing.T) {
	e := newTestExtractor(t, nil)
	text := `Landlord Statement
Statement period: 1 August 2025 - 31 August 2025
Money In: $1,200.00
Money Out: $120.00
You received: $1,080.00
Property Address: 45 Oxide Road, Kalgoorlie WA 6430
`
	result := e.extractRental(context.Background(), &pdftext.Document{Text: text})
	facts := result.Rental

	require.NotNil(t, result.Period)
	assert.Equal(t, period.Period{Year: 2025, Month: 8}, *result.Period)
	assert.Equal(t, "45 Oxide Road, Kalgoorlie WA 6430", result.Address)

	assert.InDelta(t, 1200.00, facts.MoneyIn, 0.001)
	assert.InDelta(t, 120.00, facts.MoneyOut, 0.001)
	assert.InDelta(t, 1080.00, facts.EFT, 0.001)
}

func TestExtractRentalRoomSegments(t *testing.T) {
	e := newTestExtractor(t, nil)

	// Room 1 has a long transaction history; its summary row sits far past
	// any fixed character window but still inside its own segment.
	filler := strings.Repeat("rent charge weekly entry line\n", 40)
	text := "Landlord statement for Money In: $0.00\n" +
		"Room 1\n" + filler + "Total $55.00 $550.00\n" +
		"Room 2\nTotal $65.00 $650.00\n"

	facts := e.extractRental(context.Background(), &pdftext.Document{Text: text}).Rental

	require.Contains(t, facts.Rooms, "Room 1")
	assert.InDelta(t, 550.00, facts.Rooms["Room 1"].Rent, 0.001)
	assert.InDelta(t, 55.00, facts.Rooms["Room 1"].Mgmt, 0.001)
	assert.InDelta(t, 495.00, facts.Rooms["Room 1"].Net, 0.001)

	require.Contains(t, facts.Rooms, "Room 2")
	assert.InDelta(t, 585.00, facts.Rooms["Room 2"].Net, 0.001)
}

func TestExtractRentalTableFallback(t *testing.T) {
	e := newTestExtractor(t, nil)
	doc := &pdftext.Document{
		Text: "Landlord statement\nAugust 2025\n",
		Tables: []pdftext.Table{{
			{"Total Rent", "$2,000.00"},
			{"Management Fee", "$180.00"},
			{"EFT to Owner", "$1,820.00"},
		}},
	}

	result := e.extractRental(context.Background(), doc)
	facts := result.Rental

	assert.Equal(t, SourceTable, result.Source)
	assert.InDelta(t, 2000.00, facts.MoneyIn, 0.001)
	assert.InDelta(t, 180.00, facts.MoneyOut, 0.001)
	assert.InDelta(t, 1820.00, facts.EFT, 0.001)
}

func TestExtractRentalDelegatedFallback(t *testing.T) {
	fake := &fakeDelegate{response: `{
		"money_in": 900.00, "money_out": 90.00, "eft": 810.00,
		"year": 2025, "month": 6,
		"address": "7 Ocean View Drive Seaford VIC 3198",
		"patterns": {
			"money_in": "gross\\s+collected\\s+\\$([\\d,]+\\.?\\d*)",
			"eft": "paid\\s+to\\s+you\\s+\\$([\\d,]+\\.?\\d*)"
		}
	}`}
	e := newTestExtractor(t, fake)

	text := "Monthly owner report\nGross collected $900.00\nFees $90.00\nPaid to you $810.00\n"
	result := e.extractRental(context.Background(), &pdftext.Document{Text: text})

	assert.Equal(t, SourceDelegated, result.Source)
	assert.Equal(t, 1, fake.calls)
	assert.InDelta(t, 900.00, result.Rental.MoneyIn, 0.001)
	assert.InDelta(t, 810.00, result.Rental.EFT, 0.001)
	require.NotNil(t, result.Period)
	assert.Equal(t, period.Period{Year: 2025, Month: 6}, *result.Period)

	// Same layout next month: the learned patterns serve the figures and
	// the delegate is not called again.
	next := "Monthly owner report\nGross collected $950.00\nFees $95.00\nPaid to you $855.00\n"
	second := e.extractRental(context.Background(), &pdftext.Document{Text: next})

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, SourceDelegated, second.Source)
	assert.InDelta(t, 950.00, second.Rental.MoneyIn, 0.001)
	assert.InDelta(t, 855.00, second.Rental.EFT, 0.001)
}

func TestExtractRentalAllTiersFail(t *testing.T) {
	fake := &fakeDelegate{fail: true}
	e := newTestExtractor(t, fake)

	result := e.extractRental(context.Background(), &pdftext.Document{Text: "Landlord statement, no figures"})

	assert.Equal(t, SourceFailed, result.Source)
	assert.Zero(t, result.Rental.MoneyIn)
	assert.Zero(t, result.Rental.EFT)
	assert.Equal(t, map[string]float64{
		categorize.CatRentalIncome:   0,
		categorize.CatManagementFees: 0,
	}, result.Rental.Items)
}
