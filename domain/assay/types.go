// Package assay defines the strip-reading vocabulary: raw and canonical column
// names, the user-declared variable schema and the anomalies a run can flag.
package assay

import (
	"strings"

	"lumos/domain/core"
)

// Raw column names as exported by the strip reader
const (
	ColumnStripName = "strip name"
	RawTestPeak     = "line_peak_above_background_1"
	RawControlPeak  = "line_peak_above_background_2"
	RawTestArea     = "line_area_1"
	RawControlArea  = "line_area_2"
)

// Canonical measurement columns
const (
	TLH = "TLH"
	CLH = "CLH"
	TLA = "TLA"
	CLA = "CLA"
)

// Derived columns
const (
	TLHNormalized = "TLH_normalized"
	CLHNormalized = "CLH_normalized"
	TLANormalized = "TLA_normalized"
	CLANormalized = "CLA_normalized"
	TMinusC       = "T-C_normalized"
	TOverC        = "T/C_normalized"
	COverT        = "C/T_normalized"
)

// RenameMapping is the fixed raw -> canonical projection, in output order
var RenameMapping = []struct{ Raw, Canonical string }{
	{RawTestPeak, TLH},
	{RawControlPeak, CLH},
	{RawTestArea, TLA},
	{RawControlArea, CLA},
}

// RequiredColumns lists every raw column the projector needs
func RequiredColumns() []string {
	cols := []string{ColumnStripName}
	for _, m := range RenameMapping {
		cols = append(cols, m.Raw)
	}
	return cols
}

// DerivedColumns returns the seven derived measures in output order
func DerivedColumns() []string {
	return []string{TLHNormalized, CLHNormalized, TLANormalized, CLANormalized, TMinusC, TOverC, COverT}
}

// AggregateMeasures returns the measures summarised per group. Area ratios are
// opt-in.
func AggregateMeasures(includeArea bool) []string {
	measures := []string{TLHNormalized, CLHNormalized}
	if includeArea {
		measures = append(measures, TLANormalized, CLANormalized)
	}
	return append(measures, TMinusC, TOverC, COverT)
}

// PlotMeasures returns every column charted against the chosen x variable
func PlotMeasures() []string {
	return []string{TLHNormalized, CLHNormalized, TMinusC, TOverC, COverT, TLANormalized, CLANormalized, TLH, CLH, TLA, CLA}
}

// IsMeasure reports whether name is a canonical or derived numeric column
func IsMeasure(name string) bool {
	for _, m := range PlotMeasures() {
		if m == name {
			return true
		}
	}
	return false
}

// Delimiter separates the variable tokens inside a strip name
type Delimiter rune

const (
	Hyphen     Delimiter = '-'
	Underscore Delimiter = '_'
)

// ParseDelimiter accepts the literal character or its name
func ParseDelimiter(value string) (Delimiter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "-", "hyphen", "hyphen (-)":
		return Hyphen, nil
	case "_", "underscore", "underscore (_)":
		return Underscore, nil
	}
	return 0, core.NewUnknownDelimiterError(value)
}

func (d Delimiter) String() string {
	return string(rune(d))
}

// Name returns the human label used by forms and reports
func (d Delimiter) Name() string {
	switch d {
	case Hyphen:
		return "hyphen"
	case Underscore:
		return "underscore"
	}
	return "unknown"
}
