package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Structural errors abort a pipeline run
	ErrSchema            = errors.New("schema error")
	ErrMissingColumn     = fmt.Errorf("%w: missing column", ErrSchema)
	ErrEmptySchema       = fmt.Errorf("%w: variable schema declares no variables", ErrSchema)
	ErrDuplicateVariable = fmt.Errorf("%w: duplicate variable name", ErrSchema)
	ErrBlankVariable     = fmt.Errorf("%w: blank variable name", ErrSchema)
	ErrColumnConflict    = fmt.Errorf("%w: variable name collides with an existing column", ErrSchema)

	// Data-quality anomalies degrade cells, never the run
	ErrArithmetic     = errors.New("arithmetic anomaly")
	ErrSplitShortfall = errors.New("split shortfall")
	ErrCoercion       = errors.New("numeric coercion failed")

	// Input errors
	ErrUnknownDelimiter = errors.New("unknown delimiter")
	ErrUnknownMeasure   = errors.New("unknown measure")
	ErrUnknownVariable  = errors.New("unknown variable")
	ErrUnknownPlotKind  = errors.New("unknown plot kind")
	ErrEmptyDataset     = errors.New("dataset has no rows")
)

// NewMissingColumnsError reports every absent required column at once
func NewMissingColumnsError(columns []string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(quoteAll(columns), ", "))
}

func NewVariableError(base error, name string) error {
	return fmt.Errorf("%w %q", base, name)
}

func NewUnknownDelimiterError(value string) error {
	return fmt.Errorf("%w %q: expected '-' or '_'", ErrUnknownDelimiter, value)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownDelimiter) ||
		errors.Is(err, ErrUnknownMeasure) ||
		errors.Is(err, ErrUnknownVariable) ||
		errors.Is(err, ErrUnknownPlotKind) ||
		errors.Is(err, ErrEmptyDataset)
}

func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return quoted
}
