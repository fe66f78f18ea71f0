package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/propledger/pkg/money"
	"github.com/propledger/propledger/pkg/period"
)

var sampleCategories = []string{
	"Rental Income", "Management Fees", "Council Rates", "Electricity",
	"Water", "Maintenance & Repairs", "Cash Received (EFT)",
}

func fakeSession(faker *gofakeit.Faker) *Session {
	s := NewSession()
	for i := 0; i < 1+faker.IntRange(1, 3); i++ {
		id := fmt.Sprintf("prop-%d", i)
		p := s.Property(id)
		p.Config = PropertyConfig{
			Name:            faker.Company(),
			Address:         faker.Street() + " " + faker.City(),
			Postcode:        faker.Zip(),
			PurchasePrice:   float64(faker.IntRange(400_000, 1_200_000)),
			CurrentValue:    float64(faker.IntRange(400_000, 1_500_000)),
			MortgageBalance: float64(faker.IntRange(0, 900_000)),
		}
		for m := 0; m < faker.IntRange(1, 6); m++ {
			pd := period.Period{Year: faker.IntRange(2023, 2026), Month: faker.IntRange(1, 12)}
			if p.Data.Periods[pd] == nil {
				p.Data.Periods[pd] = make(map[string]float64)
			}
			cats := append([]string(nil), sampleCategories...)
			faker.ShuffleStrings(cats)
			for _, cat := range cats[:faker.IntRange(1, 4)] {
				p.Data.Periods[pd][cat] = money.Round2(faker.Float64Range(-2000, 5000))
			}
		}
	}
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	faker := gofakeit.New(11)
	path := filepath.Join(t.TempDir(), "session.json")

	original := fakeSession(faker)
	require.NoError(t, original.Save(path))

	restored, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.FYStartMonth, restored.FYStartMonth)
	require.Len(t, restored.Properties, len(original.Properties))
	for id, p := range original.Properties {
		got, ok := restored.Properties[id]
		require.True(t, ok, id)
		assert.Equal(t, p.Config, got.Config)
		assert.Equal(t, p.Data.Periods, got.Data.Periods)
	}
	assert.Equal(t, ModeRestored, restored.Mode())
	assert.Equal(t, ModeFresh, original.Mode())
}

func TestSessionPropertyCreatesLedger(t *testing.T) {
	s := NewSession()
	p := s.Property("prop-0")
	require.NotNil(t, p.Data)
	assert.Empty(t, p.Data.Periods)

	// Second lookup returns the same property.
	p.Config.Name = "Wattle Crescent"
	assert.Equal(t, "Wattle Crescent", s.Property("prop-0").Config.Name)
}

func TestSessionLoadRejectsBadPeriodKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	data := `{"fy_start_month":7,"properties":{"prop-0":{"config":{"name":"x","address":"y"},"data":{"2025-13":{"Water":1}}}}}`
	require.NoError(t, writeTestFile(path, data))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2025-13")
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestFYLabel(t *testing.T) {
	s := NewSession()

	assert.Equal(t, "FY2024-25", s.FYLabel(period.Period{Year: 2025, Month: 5}))
	assert.Equal(t, "FY2025-26", s.FYLabel(period.Period{Year: 2025, Month: 7}))
	assert.Equal(t, "FY2025-26", s.FYLabel(period.Period{Year: 2026, Month: 6}))

	s.FYStartMonth = 1
	assert.Equal(t, "FY2025", s.FYLabel(period.Period{Year: 2025, Month: 3}))
}
