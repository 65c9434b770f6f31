// Package describe computes the eight descriptive statistics reported per
// group and measure: count, mean, std, min, 25%, 50%, 75%, max.
package describe

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Statistic names one of the descriptive statistics
type Statistic string

const (
	StatCount  Statistic = "count"
	StatMean   Statistic = "mean"
	StatStd    Statistic = "std"
	StatMin    Statistic = "min"
	StatQ25    Statistic = "25%"
	StatMedian Statistic = "50%"
	StatQ75    Statistic = "75%"
	StatMax    Statistic = "max"
)

// Statistics lists every statistic in report order
var Statistics = []Statistic{StatCount, StatMean, StatStd, StatMin, StatQ25, StatMedian, StatQ75, StatMax}

// Summary holds the descriptive statistics of one sample
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Describe summarises values. NaN cells are excluded; ±Inf cells take part so
// degenerate ratios stay visible in the result. Std is the sample standard
// deviation and is NaN below two observations.
func Describe(values []float64) Summary {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}

	nan := math.NaN()
	s := Summary{Count: len(data), Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	if len(data) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	if len(data) > 1 {
		s.Std, _ = stats.StandardDeviationSample(data)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	s.Q25 = Quantile(sorted, 0.25)
	s.Median = Quantile(sorted, 0.50)
	s.Q75 = Quantile(sorted, 0.75)
	return s
}

// Quantile interpolates linearly between the closest ranks of an ascending
// sample: h = (n-1)p, q = x[floor h] + (h - floor h)(x[floor h + 1] - x[floor h]).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	frac := h - float64(lo)
	if frac == 0 || lo+1 >= n {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Get returns a statistic by name
func (s Summary) Get(stat Statistic) (float64, bool) {
	switch stat {
	case StatCount:
		return float64(s.Count), true
	case StatMean:
		return s.Mean, true
	case StatStd:
		return s.Std, true
	case StatMin:
		return s.Min, true
	case StatQ25:
		return s.Q25, true
	case StatMedian:
		return s.Median, true
	case StatQ75:
		return s.Q75, true
	case StatMax:
		return s.Max, true
	}
	return math.NaN(), false
}

// Values returns the statistics in Statistics order
func (s Summary) Values() []float64 {
	out := make([]float64, len(Statistics))
	for i, stat := range Statistics {
		out[i], _ = s.Get(stat)
	}
	return out
}
