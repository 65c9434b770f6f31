package describe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeTwoValues(t *testing.T) {
	s := Describe([]float64{1, 3})

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.InDelta(t, math.Sqrt2, s.Std, 1e-12)
	assert.Equal(t, 1.5, s.Q25)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 2.5, s.Q75)
}

func TestDescribeMatchesLinearQuartiles(t *testing.T) {
	s := Describe([]float64{4, 1, 3, 2, 5})

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 2.0, s.Q25)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 4.0, s.Q75)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)
}

func TestDescribeSingleValueHasUndefinedStd(t *testing.T) {
	s := Describe([]float64{0.4})

	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0.4, s.Mean)
	assert.True(t, math.IsNaN(s.Std))
	assert.Equal(t, 0.4, s.Q25)
	assert.Equal(t, 0.4, s.Max)
}

func TestDescribeSkipsNaNAndKeepsInf(t *testing.T) {
	s := Describe([]float64{math.NaN(), 1, math.Inf(1)})

	assert.Equal(t, 2, s.Count)
	assert.True(t, math.IsInf(s.Mean, 1))
	assert.True(t, math.IsInf(s.Max, 1))
	assert.Equal(t, 1.0, s.Min)
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe([]float64{math.NaN()})

	assert.Equal(t, 0, s.Count)
	for _, stat := range Statistics[1:] {
		v, ok := s.Get(stat)
		assert.True(t, ok)
		assert.True(t, math.IsNaN(v), "%s should be NaN", stat)
	}
}

func TestGetUnknownStatistic(t *testing.T) {
	_, ok := Describe([]float64{1}).Get("iqr")
	assert.False(t, ok)
	assert.Len(t, Describe([]float64{1}).Values(), 8)
}
