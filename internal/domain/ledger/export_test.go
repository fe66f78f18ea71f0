package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract"
	"github.com/propledger/propledger/pkg/period"
)

func TestWriteChangeLog(t *testing.T) {
	jul := period.Period{Year: 2025, Month: 7}
	changes := []Change{
		{Period: jul, Category: categorize.CatElectricity, Status: StatusUpdated, Old: 115, New: 120},
		{Period: jul, Category: categorize.CatWater, Status: StatusAdded, New: 96.40},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChangeLog(&buf, "prop-0", changes))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "property,period,category,status,old,new", lines[0])
	assert.Equal(t, "prop-0,2025-07,Electricity,updated,115,120", lines[1])
	assert.Contains(t, lines[2], "Water,added")
}

func TestWriteLedgerOrdered(t *testing.T) {
	l := New()
	l.Periods[period.Period{Year: 2025, Month: 8}] = map[string]float64{
		categorize.CatWater: 96.40,
	}
	l.Periods[period.Period{Year: 2025, Month: 7}] = map[string]float64{
		categorize.CatRentalIncome:   3080,
		categorize.CatManagementFees: 300,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, l))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "2025-07,Management Fees")
	assert.Contains(t, lines[2], "2025-07,Rental Income")
	assert.Contains(t, lines[3], "2025-08,Water")
}

func TestWriteTransactions(t *testing.T) {
	txns := []extract.Transaction{{
		Date:        "05/07/2025",
		Description: "Rent received July",
		Amount:      1540,
		Direction:   "credit",
		Section:     categorize.SectionIncome,
		Category:    categorize.CatRentalIncome,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))

	out := buf.String()
	assert.Contains(t, out, "date,description,amount,direction,section,category")
	assert.Contains(t, out, "Rent received July")
}
