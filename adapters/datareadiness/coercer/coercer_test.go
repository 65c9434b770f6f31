package coercer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	tests := []struct {
		name    string
		in      string
		want    float64
		outcome Outcome
	}{
		{"plain", "12.5", 12.5, Parsed},
		{"padded", "  7 ", 7, Parsed},
		{"scientific", "1.5e3", 1500, Parsed},
		{"thousands", "1,234.5", 1234.5, Parsed},
		{"parenthesised negative", "(42)", -42, Parsed},
		{"zero", "0", 0, Parsed},
		{"empty", "", math.NaN(), Missing},
		{"na token", "N/A", math.NaN(), Missing},
		{"nan token", "NaN", math.NaN(), Missing},
		{"text", "strip", math.NaN(), Invalid},
		{"infinity", "inf", math.NaN(), Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := c.Coerce(tt.in)
			assert.Equal(t, tt.outcome, outcome)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "expected NaN, got %v", got)
			} else {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestCoerceDecimalComma(t *testing.T) {
	config := DefaultCoercionConfig()
	config.DecimalComma = true
	c := NewNumberCoercer(config)

	got, outcome := c.Coerce("1.234,5")
	assert.Equal(t, Parsed, outcome)
	assert.InDelta(t, 1234.5, got, 1e-12)

	got, _ = c.Coerce("0,25")
	assert.InDelta(t, 0.25, got, 1e-12)
}

func TestAnalyze(t *testing.T) {
	c := NewNumberCoercer(DefaultCoercionConfig())

	numeric := c.Analyze([]string{"1", "10", "", "100", "1000"})
	assert.Equal(t, 4, numeric.NumericCount)
	assert.Equal(t, 4, numeric.ValidCount)
	assert.True(t, numeric.Numeric)

	categorical := c.Analyze([]string{"A", "B", "1"})
	assert.False(t, categorical.Numeric)

	empty := c.Analyze([]string{"", ""})
	assert.False(t, empty.Numeric)
}
