package datareadiness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumos/adapters/datareadiness/coercer"
	"lumos/domain/datareadiness/profiling"
	"lumos/domain/table"
)

func TestProfileTable(t *testing.T) {
	raw, err := table.New(
		table.NewLabelColumn("strip name", []string{"A-1", "A-2", "B-1", "B-1", ""}, []bool{true, true, true, true, false}),
		table.NewLabelColumn("line_peak_above_background_1", []string{"10", "0", "-2.5", "n/a", "x"}, nil),
		table.NewLabelColumn("notes", []string{"", "", "", "", ""}, []bool{false, false, false, false, false}),
	)
	require.NoError(t, err)

	rules := coercer.DefaultCoercionConfig()
	rules.NumericThreshold = 0.7
	profiles := NewProfiler(coercer.NewNumberCoercer(rules)).ProfileTable(raw)
	require.Len(t, profiles, 3)

	name := profiles[0]
	assert.Equal(t, "strip name", name.Name)
	assert.True(t, name.Required)
	assert.Equal(t, profiling.TypeCategorical, name.InferredType)
	assert.Equal(t, 3, name.UniqueCount)
	assert.Equal(t, 1, name.MissingStats.MissingCount)
	require.NotNil(t, name.CategoricalStats)
	assert.Equal(t, "B-1", name.CategoricalStats.Mode)
	assert.Equal(t, 2, name.CategoricalStats.ModeFrequency)
	assert.InDelta(t, 0.8, name.QualityScore, 1e-12)

	peak := profiles[1]
	assert.Equal(t, profiling.TypeNumeric, peak.InferredType, "3 of 4 present cells parse")
	require.NotNil(t, peak.NumericStats)
	assert.Equal(t, -2.5, peak.NumericStats.Min)
	assert.Equal(t, 10.0, peak.NumericStats.Max)
	assert.Equal(t, 0.0, peak.NumericStats.Median)
	assert.Equal(t, 1, peak.NumericStats.ZeroCount)
	assert.Equal(t, 1, peak.NumericStats.NegativeCount)
	assert.Equal(t, 1, peak.NumericStats.InvalidCount)
	assert.Equal(t, 1, peak.MissingStats.MissingCount)
	assert.InDelta(t, 0.6, peak.QualityScore, 1e-12)

	notes := profiles[2]
	assert.False(t, notes.Required)
	assert.Equal(t, profiling.TypeEmpty, notes.InferredType)
	assert.Equal(t, 5, notes.MissingStats.ConsecutiveMissing)
	assert.Equal(t, 1.0, notes.MissingStats.MissingRate)
}
