package assay

import (
	"errors"
	"fmt"

	"lumos/domain/core"
)

// AnomalyKind classifies a recoverable data-quality issue
type AnomalyKind string

const (
	AnomalyArithmetic     AnomalyKind = "arithmetic"
	AnomalySplitShortfall AnomalyKind = "split_shortfall"
	AnomalyCoercion       AnomalyKind = "coercion"
)

// Anomaly flags a degraded cell. Row is the zero-based data row index.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	Row    int         `json:"row"`
	Column string      `json:"column"`
	Value  string      `json:"value,omitempty"`
	Reason string      `json:"reason"`
}

func (a Anomaly) Error() string {
	return fmt.Sprintf("%v: row %d column %q: %s", a.sentinel(), a.Row, a.Column, a.Reason)
}

// Unwrap lets callers test anomalies with errors.Is against the core sentinels
func (a Anomaly) Unwrap() error {
	return a.sentinel()
}

func (a Anomaly) sentinel() error {
	switch a.Kind {
	case AnomalyArithmetic:
		return core.ErrArithmetic
	case AnomalySplitShortfall:
		return core.ErrSplitShortfall
	case AnomalyCoercion:
		return core.ErrCoercion
	}
	return errors.New(string(a.Kind))
}

// CountByKind tallies anomalies for run summaries
func CountByKind(anomalies []Anomaly) map[AnomalyKind]int {
	counts := make(map[AnomalyKind]int)
	for _, a := range anomalies {
		counts[a.Kind]++
	}
	return counts
}
