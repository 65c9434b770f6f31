package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsRaggedAndDuplicateColumns(t *testing.T) {
	_, err := New(NewNumberColumn("a", []float64{1, 2}), NewNumberColumn("b", []float64{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")

	_, err = New(NewNumberColumn("a", []float64{1}), NewLabelColumn("a", []string{"x"}, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestColumnsAreCopiedOnConstruction(t *testing.T) {
	values := []float64{1, 2, 3}
	col := NewNumberColumn("v", values)
	values[0] = 99

	assert.Equal(t, 1.0, col.Number(0))

	out := col.Numbers()
	out[1] = 42
	assert.Equal(t, 2.0, col.Number(1))
}

func TestLabelColumnMissingCells(t *testing.T) {
	col := NewLabelColumn("lot", []string{"A", ""}, []bool{true, false})

	v, ok := col.Label(0)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = col.Label(1)
	assert.False(t, ok)
	assert.Equal(t, "", col.Cell(1))
}

func TestWithAndWithoutLeaveSourceUntouched(t *testing.T) {
	base, err := New(NewLabelColumn("strip name", []string{"A-B"}, nil), NewNumberColumn("TLH", []float64{1}))
	require.NoError(t, err)

	grown, err := base.With(NewNumberColumn("CLH", []float64{2}))
	require.NoError(t, err)
	shrunk := grown.Without("strip name")

	assert.Equal(t, []string{"strip name", "TLH"}, base.Names())
	assert.Equal(t, []string{"strip name", "TLH", "CLH"}, grown.Names())
	assert.Equal(t, []string{"TLH", "CLH"}, shrunk.Names())
	assert.Equal(t, 1, shrunk.Rows())
}

func TestSelectAndMissing(t *testing.T) {
	base, err := New(NewNumberColumn("a", []float64{1}), NewNumberColumn("b", []float64{2}))
	require.NoError(t, err)

	sel, err := base.Select("b", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, sel.Names())

	_, err = base.Select("c")
	assert.Error(t, err)

	assert.Equal(t, []string{"c", "d"}, base.Missing("a", "c", "d"))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.25, "0.25"},
		{1.0 / 3.0, "0.3333333333333333"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{1e21, "1e+21"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestRecords(t *testing.T) {
	tbl, err := New(
		NewLabelColumn("lot", []string{"A", ""}, []bool{true, false}),
		NewNumberColumn("TLH_normalized", []float64{0.5, math.NaN()}),
	)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"lot", "TLH_normalized"},
		{"A", "0.5"},
		{"", "NaN"},
	}, tbl.Records())
}
