package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/pkg/period"
)

func TestExtractUtilityElectricity(t *testing.T) {
	e := newTestExtractor(t, nil)
	text := `AGL Energy
Your electricity bill
Billing period: 1 July 2025 - 30 September 2025
Supply address: 12 Wattle Crescent, Penrith NSW 2750
Usage 312 kWh
Amount due: $243.50
`
	result := e.extractUtility(context.Background(), &pdftext.Document{Text: text})

	assert.Equal(t, categorize.CatElectricity, result.Utility.UtilityType)
	assert.InDelta(t, 243.50, result.Utility.Amount, 0.001)
	assert.Equal(t, SourcePattern, result.Source)
	assert.Equal(t, "12 Wattle Crescent, Penrith NSW 2750", result.Address)
	require.NotNil(t, result.Period)
	assert.Equal(t, period.Period{Year: 2025, Month: 7}, *result.Period)
}

func TestExtractUtilityRetailerBeatsCommodityWord(t *testing.T) {
	e := newTestExtractor(t, nil)

	// An electricity bill that mentions hot water heating must not be
	// misfiled as a water bill.
	text := "AGL electricity account\nIncludes controlled load for hot water\nAmount due: $180.00"
	result := e.extractUtility(context.Background(), &pdftext.Document{Text: text})

	assert.Equal(t, categorize.CatElectricity, result.Utility.UtilityType)
}

func TestExtractUtilityLooseFallback(t *testing.T) {
	e := newTestExtractor(t, nil)

	text := "Quarterly account\nWater is precious, use it wisely\nAmount due: $96.40"
	result := e.extractUtility(context.Background(), &pdftext.Document{Text: text})

	assert.Equal(t, categorize.CatWater, result.Utility.UtilityType)
	assert.InDelta(t, 96.40, result.Utility.Amount, 0.001)
}

func TestExtractUtilityUnknownTypeAndAmount(t *testing.T) {
	e := newTestExtractor(t, nil)

	result := e.extractUtility(context.Background(), &pdftext.Document{Text: "service charge summary"})

	assert.Equal(t, categorize.CatMiscellaneous, result.Utility.UtilityType)
	assert.Zero(t, result.Utility.Amount)
	assert.Equal(t, SourceFailed, result.Source)
}
