package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain", "1234.56", 1234.56, true},
		{"currency and thousands", "$1,234.56", 1234.56, true},
		{"aud prefix", "AUD 823.10", 823.10, true},
		{"accounting negative", "(500.00)", -500.0, true},
		{"explicit negative", "-42.50", -42.50, true},
		{"integer", "780", 780.0, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"not a number", "n/a", 0, false},
		{"bare symbol", "$", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.57, Round2(10.565))
	assert.Equal(t, 0.0, Round2(0.0))
	assert.Equal(t, -3.33, Round2(-3.3333))
}

func TestEqualish(t *testing.T) {
	assert.True(t, Equalish(115.00, 115.004))
	assert.True(t, Equalish(115.00, 115.005))
	assert.False(t, Equalish(115.00, 115.01))
	assert.False(t, Equalish(115.00, 120.00))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "$1,234.50", Display(1234.5))
}

func TestGSTComponent(t *testing.T) {
	// $110 inc GST carries $10 of GST.
	assert.InDelta(t, 10.0, GSTComponent(110.0), 0.005)
}
