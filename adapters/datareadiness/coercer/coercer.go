package coercer

import (
	"math"
	"strconv"
	"strings"
)

// Outcome describes how a raw cell was coerced
type Outcome int

// Parsed means a finite number was read, Missing an empty cell or NA token,
// Invalid any text that is not a number.
const (
	Parsed Outcome = iota
	Missing
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Missing:
		return "missing"
	}
	return "invalid"
}

// NumberCoercer handles deterministic numeric coercion of CSV cells
type NumberCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
// DecimalComma reads "0,25" as 0.25 instead of 25. NumericThreshold is the
// share of present cells that must parse for a column to count as numeric.
type CoercionConfig struct {
	DecimalComma     bool     `json:"decimal_comma" yaml:"decimal_comma"`
	NumericThreshold float64  `json:"numeric_threshold" yaml:"numeric_threshold"`
	NATokens         []string `json:"na_tokens" yaml:"na_tokens"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		DecimalComma:     false,
		NumericThreshold: 0.8,
		NATokens:         []string{"na", "n/a", "nan", "null", "none", "-nan", "#n/a"},
	}
}

// NewNumberCoercer creates a coercer with the given config
func NewNumberCoercer(config CoercionConfig) *NumberCoercer {
	return &NumberCoercer{config: config}
}

// Coerce converts a raw cell to float64. Missing and invalid cells yield NaN.
func (c *NumberCoercer) Coerce(raw string) (float64, Outcome) {
	clean := strings.TrimSpace(raw)
	if clean == "" || c.IsNA(clean) {
		return math.NaN(), Missing
	}

	// Handle parentheses for negative numbers: (123) -> -123
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	clean = strings.ReplaceAll(clean, " ", "")
	if c.config.DecimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	if negative {
		clean = "-" + clean
	}

	// ParseFloat handles scientific notation; infinities are rejected
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return math.NaN(), Invalid
	}
	return val, Parsed
}

// CoerceAll coerces a whole column, returning values and per-cell outcomes
func (c *NumberCoercer) CoerceAll(raw []string) ([]float64, []Outcome) {
	values := make([]float64, len(raw))
	outcomes := make([]Outcome, len(raw))
	for i, cell := range raw {
		values[i], outcomes[i] = c.Coerce(cell)
	}
	return values, outcomes
}

// Analyze reports how much of a column parses as numbers
func (c *NumberCoercer) Analyze(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}
	for _, cell := range raw {
		switch _, outcome := c.Coerce(cell); outcome {
		case Parsed:
			analysis.NumericCount++
			analysis.ValidCount++
		case Invalid:
			analysis.ValidCount++
		}
	}
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.Numeric = analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold
	return analysis
}

// IsNA reports whether s is one of the configured NA tokens (any case)
func (c *NumberCoercer) IsNA(s string) bool {
	lower := strings.ToLower(s)
	for _, token := range c.config.NATokens {
		if lower == token {
			return true
		}
	}
	return false
}

// TypeAnalysis contains the results of numeric distribution analysis
type TypeAnalysis struct {
	TotalCount   int     `json:"total_count"`
	ValidCount   int     `json:"valid_count"`
	NumericCount int     `json:"numeric_count"`
	NumericRatio float64 `json:"numeric_ratio"`
	Numeric      bool    `json:"numeric"`
}
