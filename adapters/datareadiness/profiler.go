package datareadiness

import (
	"math"

	"github.com/montanaflynn/stats"

	"lumos/adapters/datareadiness/coercer"
	"lumos/domain/assay"
	"lumos/domain/datareadiness/profiling"
	"lumos/domain/table"
)

// Profiler describes the columns of a raw dataset
type Profiler struct {
	numbers *coercer.NumberCoercer
}

// NewProfiler creates a profiler using the pipeline's coercion rules
func NewProfiler(numbers *coercer.NumberCoercer) *Profiler {
	if numbers == nil {
		numbers = coercer.NewNumberCoercer(coercer.DefaultCoercionConfig())
	}
	return &Profiler{numbers: numbers}
}

// ProfileTable profiles every column of raw in header order
func (p *Profiler) ProfileTable(raw *table.Table) []profiling.ColumnProfile {
	required := make(map[string]bool)
	for _, name := range assay.RequiredColumns() {
		required[name] = true
	}

	profiles := make([]profiling.ColumnProfile, 0, len(raw.Names()))
	for _, col := range raw.Columns() {
		profile := p.profileColumn(col)
		profile.Required = required[col.Name()]
		profiles = append(profiles, profile)
	}
	return profiles
}

func (p *Profiler) profileColumn(col table.Column) profiling.ColumnProfile {
	cells := make([]string, col.Len())
	for i := range cells {
		cells[i] = col.Cell(i)
	}
	values, outcomes := p.numbers.CoerceAll(cells)
	analysis := p.numbers.Analyze(cells)

	profile := profiling.ColumnProfile{
		Name:         col.Name(),
		SampleSize:   len(cells),
		MissingStats: missingStats(outcomes),
	}

	freq := make(map[string]int)
	for i, outcome := range outcomes {
		if outcome != coercer.Missing {
			freq[cells[i]]++
		}
	}
	profile.UniqueCount = len(freq)

	switch {
	case analysis.ValidCount == 0:
		profile.InferredType = profiling.TypeEmpty
	case analysis.Numeric:
		profile.InferredType = profiling.TypeNumeric
		profile.NumericStats = numericStats(values, outcomes)
		profile.QualityScore = float64(analysis.NumericCount) / float64(len(cells))
	default:
		profile.InferredType = profiling.TypeCategorical
		profile.CategoricalStats = categoricalStats(cells, outcomes)
		profile.QualityScore = float64(analysis.ValidCount) / float64(len(cells))
	}
	return profile
}

func missingStats(outcomes []coercer.Outcome) profiling.MissingStats {
	var ms profiling.MissingStats
	run := 0
	for _, outcome := range outcomes {
		if outcome == coercer.Missing {
			ms.MissingCount++
			run++
			if run > ms.ConsecutiveMissing {
				ms.ConsecutiveMissing = run
			}
		} else {
			run = 0
		}
	}
	if len(outcomes) > 0 {
		ms.MissingRate = float64(ms.MissingCount) / float64(len(outcomes))
	}
	return ms
}

func numericStats(values []float64, outcomes []coercer.Outcome) *profiling.NumericStats {
	ns := &profiling.NumericStats{}
	parsed := make([]float64, 0, len(values))
	for i, outcome := range outcomes {
		switch outcome {
		case coercer.Parsed:
			v := values[i]
			parsed = append(parsed, v)
			if v == 0 {
				ns.ZeroCount++
			}
			if v < 0 {
				ns.NegativeCount++
			}
		case coercer.Invalid:
			ns.InvalidCount++
		}
	}
	ns.Min, _ = stats.Min(parsed)
	ns.Max, _ = stats.Max(parsed)
	ns.Mean, _ = stats.Mean(parsed)
	ns.Median, _ = stats.Median(parsed)
	for _, v := range []*float64{&ns.Min, &ns.Max, &ns.Mean, &ns.Median} {
		if math.IsNaN(*v) {
			*v = 0
		}
	}
	return ns
}

func categoricalStats(cells []string, outcomes []coercer.Outcome) *profiling.CategoricalStats {
	freq := make(map[string]int)
	for i, outcome := range outcomes {
		if outcome != coercer.Missing {
			freq[cells[i]]++
		}
	}
	cs := &profiling.CategoricalStats{}
	for value, count := range freq {
		// ties resolve to the lexically smallest value so profiles are stable
		if count > cs.ModeFrequency || (count == cs.ModeFrequency && value < cs.Mode) {
			cs.Mode = value
			cs.ModeFrequency = count
		}
	}
	return cs
}
