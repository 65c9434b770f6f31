package assay

import (
	"errors"
	"testing"

	"lumos/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimiter(t *testing.T) {
	for _, in := range []string{"-", "hyphen", "Hyphen (-)"} {
		d, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, Hyphen, d)
	}
	for _, in := range []string{"_", "underscore", "underscore (_)"} {
		d, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, Underscore, d)
	}

	_, err := ParseDelimiter(".")
	assert.True(t, errors.Is(err, core.ErrUnknownDelimiter))
}

func TestNewVariableSchemaValidation(t *testing.T) {
	_, err := NewVariableSchema(Hyphen, nil)
	assert.True(t, errors.Is(err, core.ErrEmptySchema))
	assert.True(t, core.IsSchemaError(err))

	_, err = NewVariableSchema(Hyphen, []string{"lot", " "})
	assert.True(t, errors.Is(err, core.ErrBlankVariable))

	_, err = NewVariableSchema(Hyphen, []string{"lot", "lot "})
	assert.True(t, errors.Is(err, core.ErrDuplicateVariable))

	_, err = NewVariableSchema(Delimiter('+'), []string{"lot"})
	assert.True(t, errors.Is(err, core.ErrUnknownDelimiter))

	s, err := NewVariableSchema(Underscore, []string{" dilution", "lot"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dilution", "lot"}, s.Names())
	assert.Equal(t, Underscore, s.Delimiter())
}

func TestParseVariableSchema(t *testing.T) {
	s, err := ParseVariableSchema(Hyphen, "dilution-lot-replicate")
	require.NoError(t, err)
	assert.Equal(t, []string{"dilution", "lot", "replicate"}, s.Names())

	_, err = ParseVariableSchema(Hyphen, "  ")
	assert.True(t, errors.Is(err, core.ErrEmptySchema))
}

func TestSchemaSplit(t *testing.T) {
	three, err := NewVariableSchema(Hyphen, []string{"v1", "v2", "v3"})
	require.NoError(t, err)
	two, err := NewVariableSchema(Hyphen, []string{"v1", "v2"})
	require.NoError(t, err)

	t.Run("exact", func(t *testing.T) {
		tokens, present := three.Split("A-B-C")
		assert.Equal(t, []string{"A", "B", "C"}, tokens)
		assert.Equal(t, []bool{true, true, true}, present)
	})

	t.Run("shortfall", func(t *testing.T) {
		tokens, present := three.Split("A-B")
		assert.Equal(t, []string{"A", "B", ""}, tokens)
		assert.Equal(t, []bool{true, true, false}, present)
	})

	t.Run("excess", func(t *testing.T) {
		tokens, present := two.Split("A-B-C-D")
		assert.Equal(t, []string{"A", "B"}, tokens)
		assert.Equal(t, []bool{true, true}, present)
	})

	t.Run("empty identifier", func(t *testing.T) {
		_, present := two.Split("")
		assert.Equal(t, []bool{false, false}, present)
	})

	t.Run("other delimiter is not split", func(t *testing.T) {
		tokens, present := two.Split("A_B")
		assert.Equal(t, []string{"A_B", ""}, tokens)
		assert.Equal(t, []bool{true, false}, present)
	})
}

func TestAggregateMeasures(t *testing.T) {
	assert.Equal(t, []string{TLHNormalized, CLHNormalized, TMinusC, TOverC, COverT}, AggregateMeasures(false))
	assert.Equal(t, []string{TLHNormalized, CLHNormalized, TLANormalized, CLANormalized, TMinusC, TOverC, COverT}, AggregateMeasures(true))
	assert.Len(t, PlotMeasures(), 11)
	assert.True(t, IsMeasure(TLA))
	assert.False(t, IsMeasure(ColumnStripName))
}

func TestAnomalyUnwrap(t *testing.T) {
	a := Anomaly{Kind: AnomalyArithmetic, Row: 3, Column: TLHNormalized, Reason: "zero denominator"}
	assert.True(t, errors.Is(a, core.ErrArithmetic))
	assert.Equal(t, `arithmetic anomaly: row 3 column "TLH_normalized": zero denominator`, a.Error())

	counts := CountByKind([]Anomaly{a, a, {Kind: AnomalySplitShortfall}})
	assert.Equal(t, 2, counts[AnomalyArithmetic])
	assert.Equal(t, 1, counts[AnomalySplitShortfall])
}
