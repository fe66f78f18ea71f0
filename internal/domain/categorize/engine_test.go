package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineStaticMatches(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name        string
		description string
		section     string
		category    string
	}{
		{"management fee", "Management Fee July 2025", SectionOpex, CatManagementFees},
		{"rental income", "Rent received 1/7 - 31/7", SectionIncome, CatRentalIncome},
		{"electricity retailer", "AGL direct debit", SectionUtilities, CatElectricity},
		{"mortgage", "CBA home loan interest", SectionFinancing, CatMortgageInterest},
		{"council rates", "Penrith council rates Q1", SectionOpex, CatCouncilRates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := e.Match(tt.description)
			require.True(t, ok)
			assert.Equal(t, tt.section, rule.Section)
			assert.Equal(t, tt.category, rule.Category)
		})
	}
}

func TestEngineLongestKeywordWins(t *testing.T) {
	e := NewEngine(nil)

	t.Run("carpet clean beats carpet", func(t *testing.T) {
		rule, ok := e.Match("Carpet clean after vacate")
		require.True(t, ok)
		assert.Equal(t, CatCleaning, rule.Category)
	})

	t.Run("garden maintenance beats maintenance", func(t *testing.T) {
		rule, ok := e.Match("Monthly garden maintenance")
		require.True(t, ok)
		assert.Equal(t, CatCleaning, rule.Category)
	})

	t.Run("hot water beats water", func(t *testing.T) {
		rule, ok := e.Match("Replace hot water unit")
		require.True(t, ok)
		assert.Equal(t, CatMaintenance, rule.Category)
	})
}

func TestEngineLearnedRules(t *testing.T) {
	t.Run("longer learned phrase beats contained static keyword", func(t *testing.T) {
		// "principal" alone is Mortgage Repayment; the agency named
		// Principal Property Group must not be.
		learned := []Rule{{
			Keyword: "principal property group", Section: SectionOpex,
			Category: CatManagementFees, Learned: true,
		}}
		e := NewEngine(learned)

		rule, ok := e.Match("PRINCIPAL PROPERTY GROUP monthly fee")
		require.True(t, ok)
		assert.Equal(t, CatManagementFees, rule.Category)
		assert.True(t, rule.Learned)
	})

	t.Run("learned wins length ties against static", func(t *testing.T) {
		learned := []Rule{{
			Keyword: "turf", Section: SectionOpex,
			Category: CatMaintenance, Learned: true,
		}}
		e := NewEngine(learned)

		rule, ok := e.Match("Turf supply and install")
		require.True(t, ok)
		assert.Equal(t, CatMaintenance, rule.Category)
	})

	t.Run("learned duplicate of a static keyword wins", func(t *testing.T) {
		learned := []Rule{{
			Keyword: "gardening", Section: SectionOpex,
			Category: CatMaintenance, Learned: true,
		}}
		e := NewEngine(learned)

		rule, ok := e.Match("Gardening and hedge trim")
		require.True(t, ok)
		assert.Equal(t, CatMaintenance, rule.Category)
		assert.True(t, rule.Learned)
	})
}

func TestEngineNoMatch(t *testing.T) {
	e := NewEngine(nil)
	_, ok := e.Match("BPAY 123456 ref 9981")
	assert.False(t, ok)
}

func TestEngineTrailingSpaceKeywords(t *testing.T) {
	e := NewEngine(nil)

	// "tap " must not fire inside "tape".
	_, ok := e.Match("packing tape")
	assert.False(t, ok)

	rule, ok := e.Match("fix leaking tap in bathroom")
	require.True(t, ok)
	assert.Equal(t, CatMaintenance, rule.Category)
}

func TestMatchInvoicePriority(t *testing.T) {
	t.Run("rates notice mentioning gutters is still rates", func(t *testing.T) {
		section, category, ok := MatchInvoice(
			"Rates Notice 2023/24 including gutter cleaning charges")
		require.True(t, ok)
		assert.Equal(t, SectionOpex, section)
		assert.Equal(t, CatCouncilRates, category)
	})

	t.Run("strata levy", func(t *testing.T) {
		_, category, ok := MatchInvoice("Owners Corporation administrative fund levy")
		require.True(t, ok)
		assert.Equal(t, CatStrata, category)
	})

	t.Run("no keywords", func(t *testing.T) {
		_, _, ok := MatchInvoice("Thank you for shopping with us")
		assert.False(t, ok)
	})
}
