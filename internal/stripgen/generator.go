package stripgen

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"lumos/domain/assay"
	"lumos/domain/table"
)

// Dataset is a synthetic strip-reader export: a dilution series per lot with
// replicate strips, in the column layout the reader writes.
type Dataset struct {
	Headers []string
	Rows    [][]string // already formatted/rounded strings

	// Numeric series for validation/tests
	StripNames []string
	TLH        []float64
	CLH        []float64
	TLA        []float64
	CLA        []float64
}

// Config shapes the generated dilution series
type Config struct {
	Dilutions  []float64
	Lots       []string
	Replicates int
	Seed       int64
	Delimiter  assay.Delimiter

	// Dose response: test line height is Top*d/(EC50+d) scaled by the lot factor
	Top       float64
	EC50      float64
	LotFactor map[string]float64
	Control   float64
	NoiseSD   float64

	// Failure injection
	BlankRate     float64 // strips reading zero on both lines
	ShortNameRate float64 // strip names missing their replicate token
}

// DefaultConfig returns a 4-dilution, 2-lot, triplicate series
func DefaultConfig() Config {
	return Config{
		Dilutions:  []float64{0.1, 1, 10, 100},
		Lots:       []string{"lotA", "lotB"},
		Replicates: 3,
		Seed:       42,
		Delimiter:  assay.Hyphen,
		Top:        1200,
		EC50:       5,
		LotFactor:  map[string]float64{"lotB": 0.8},
		Control:    900,
		NoiseSD:    0.04,
	}
}

// Variables returns the variable names encoded in generated strip names
func Variables() []string {
	return []string{"dilution", "lot", "replicate"}
}

// Generate builds the dataset. The same config always yields the same rows.
func Generate(cfg Config) (*Dataset, error) {
	if len(cfg.Dilutions) == 0 || len(cfg.Lots) == 0 {
		return nil, fmt.Errorf("at least one dilution and one lot are required")
	}
	if cfg.Replicates <= 0 {
		return nil, fmt.Errorf("replicates must be > 0")
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = assay.Hyphen
	}
	for _, lot := range cfg.Lots {
		if strings.ContainsRune(lot, rune(cfg.Delimiter)) {
			return nil, fmt.Errorf("lot %q contains the delimiter %q", lot, cfg.Delimiter)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sep := cfg.Delimiter.String()
	ds := &Dataset{Headers: []string{
		assay.ColumnStripName,
		assay.RawTestPeak,
		assay.RawControlPeak,
		assay.RawTestArea,
		assay.RawControlArea,
	}}

	for _, lot := range cfg.Lots {
		factor, ok := cfg.LotFactor[lot]
		if !ok {
			factor = 1
		}
		for _, d := range cfg.Dilutions {
			for rep := 1; rep <= cfg.Replicates; rep++ {
				name := strings.Join([]string{fToStr(d, -1), lot, strconv.Itoa(rep)}, sep)
				if rng.Float64() < cfg.ShortNameRate {
					name = strings.Join([]string{fToStr(d, -1), lot}, sep)
				}

				signal := cfg.Top * d / (cfg.EC50 + d) * factor
				tlh := math.Max(0, signal*(1+rng.NormFloat64()*cfg.NoiseSD))
				clh := math.Max(0, cfg.Control*(1-0.3*signal/cfg.Top)*(1+rng.NormFloat64()*cfg.NoiseSD))
				width := 8 + rng.NormFloat64()*0.5
				tla, cla := tlh*width, clh*width
				if rng.Float64() < cfg.BlankRate {
					tlh, clh, tla, cla = 0, 0, 0, 0
				}

				ds.StripNames = append(ds.StripNames, name)
				ds.TLH = append(ds.TLH, round(tlh, 2))
				ds.CLH = append(ds.CLH, round(clh, 2))
				ds.TLA = append(ds.TLA, round(tla, 1))
				ds.CLA = append(ds.CLA, round(cla, 1))
				ds.Rows = append(ds.Rows, []string{name, fToStr(tlh, 2), fToStr(clh, 2), fToStr(tla, 1), fToStr(cla, 1)})
			}
		}
	}
	return ds, nil
}

// Table returns the dataset as a raw table, as a CSV read would produce
func (ds *Dataset) Table() (*table.Table, error) {
	cols := make([]table.Column, len(ds.Headers))
	for c, header := range ds.Headers {
		values := make([]string, len(ds.Rows))
		for r, row := range ds.Rows {
			values[r] = row[c]
		}
		cols[c] = table.NewLabelColumn(header, values, nil)
	}
	return table.New(cols...)
}

func round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}

func fToStr(x float64, decimals int) string {
	if decimals >= 0 {
		x = round(x, decimals)
	}
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
