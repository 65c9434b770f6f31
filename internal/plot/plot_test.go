package plot

import (
	"errors"
	"math"
	"testing"

	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) (*table.Table, assay.VariableSchema) {
	t.Helper()
	schema, err := assay.NewVariableSchema(assay.Hyphen, []string{"dilution", "lot"})
	require.NoError(t, err)
	enriched, err := table.New(
		table.NewNumberColumn(assay.TLHNormalized, []float64{0.1, 0.2, 0.3, 0.4, math.NaN(), 0.6}),
		table.NewLabelColumn("dilution", []string{"1", "10", "100", "10", "1", "x"}, nil),
		table.NewLabelColumn("lot", []string{"A", "A", "B", "B", "A", ""}, []bool{true, true, true, true, true, false}),
	)
	require.NoError(t, err)
	return enriched, schema
}

func TestValidate(t *testing.T) {
	enriched, schema := fixture(t)

	_, err := Selection{X: "batch", Y: assay.TLHNormalized, Kind: KindBox}.Validate(schema, enriched)
	assert.True(t, errors.Is(err, core.ErrUnknownVariable))

	_, err = Selection{X: "lot", Y: assay.TLHNormalized, Color: "batch", Kind: KindBox}.Validate(schema, enriched)
	assert.True(t, errors.Is(err, core.ErrUnknownVariable))

	_, err = Selection{X: "lot", Y: assay.CLA, Kind: KindBox}.Validate(schema, enriched)
	assert.True(t, errors.Is(err, core.ErrUnknownMeasure))

	_, err = Selection{X: "lot", Y: assay.TLHNormalized, Kind: "violin"}.Validate(schema, enriched)
	assert.True(t, errors.Is(err, core.ErrUnknownPlotKind))

	warnings, err := Selection{X: "dilution", Y: assay.TLHNormalized, Color: "lot", Facet: "lot", Kind: KindBox, LogX: true}.Validate(schema, enriched)
	require.NoError(t, err, "same colour and facet is only a warning")
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `colour and facet both use "lot"`)
}

func TestCatalogue(t *testing.T) {
	selections := Catalogue("dilution", true, "lot", "", true)
	require.Len(t, selections, 11)
	assert.Equal(t, assay.TLHNormalized, selections[0].Y)
	assert.Equal(t, assay.CLA, selections[10].Y)
	for _, s := range selections {
		assert.Equal(t, KindScatterTrend, s.Kind)
		assert.True(t, s.LogX)
	}
	assert.Equal(t, "The effect of dilution on TLH_normalized", selections[0].Title())
	assert.Equal(t, KindBox, KindFor(false))
}

func TestBuildScatterWithTrend(t *testing.T) {
	enriched, schema := fixture(t)

	fig, err := Build(enriched, schema, Selection{X: "dilution", Y: assay.TLHNormalized, Color: "lot", LogX: true, Kind: KindScatterTrend}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "log10(dilution)", fig.XLabel)
	require.Len(t, fig.Panels, 1)
	require.Len(t, fig.Panels[0].Series, 2, "missing-lot row is dropped with the non-numeric x")

	lotA := fig.Panels[0].Series[0]
	assert.Equal(t, "A", lotA.Name)
	assert.Equal(t, []Point{{X: 0, Y: 0.1}, {X: 1, Y: 0.2}}, lotA.Points)

	assert.Len(t, fig.Warnings, 2)
	assert.Contains(t, fig.Warnings[0], "1 rows with undefined TLH_normalized")
	assert.Contains(t, fig.Warnings[1], "non-numeric dilution")
}

func TestBuildBoxFacets(t *testing.T) {
	enriched, schema := fixture(t)

	fig, err := Build(enriched, schema, Selection{X: "dilution", Y: assay.TLHNormalized, Facet: "lot", Kind: KindBox}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "10", "100", "x"}, fig.Categories)
	require.Len(t, fig.Panels, 3)
	assert.Equal(t, "A", fig.Panels[0].Facet)
	assert.Equal(t, "B", fig.Panels[1].Facet)
	assert.Equal(t, MissingLabel, fig.Panels[2].Facet)

	boxesA := fig.Panels[0].Series[0].Boxes
	require.Len(t, boxesA, 2)
	assert.Equal(t, "1", boxesA[0].Category)
	assert.Equal(t, 0, boxesA[0].Position)
	assert.Equal(t, "10", boxesA[1].Category)
	assert.Equal(t, 1, boxesA[1].Position)
}

func TestSummarizeBoxOutliers(t *testing.T) {
	b := summarizeBox("c", 0, []float64{1, 2, 3, 4, 100})
	assert.Equal(t, 2.0, b.Q1)
	assert.Equal(t, 3.0, b.Median)
	assert.Equal(t, 4.0, b.Q3)
	assert.Equal(t, 1.0, b.Low)
	assert.Equal(t, 4.0, b.High)
	assert.Equal(t, []float64{100}, b.Outliers)
}

func TestLowessRecoversLine(t *testing.T) {
	var points []Point
	for i := 0; i < 20; i++ {
		x := float64(i)
		points = append(points, Point{X: x, Y: 2*x + 1})
	}

	trend := Lowess(points, DefaultTrendFraction)
	require.Len(t, trend, 20)
	for _, p := range trend {
		assert.InDelta(t, 2*p.X+1, p.Y, 1e-9)
	}
}

func TestLowessResistsOutlier(t *testing.T) {
	var points []Point
	for i := 0; i <= 10; i++ {
		x := float64(i)
		y := x
		if i == 5 {
			y = 100
		}
		points = append(points, Point{X: x, Y: y})
	}

	trend := Lowess(points, DefaultTrendFraction)
	require.Len(t, trend, 11)
	for _, p := range trend {
		assert.InDelta(t, p.X, p.Y, 1e-6, "x=%v", p.X)
	}
}

func TestLowessDegenerateInputs(t *testing.T) {
	assert.Nil(t, Lowess([]Point{{X: 1, Y: 1}}, 0.5))
	assert.Nil(t, Lowess([]Point{{X: 1, Y: 1}, {X: 1, Y: 3}}, 0.5))

	trend := Lowess([]Point{{X: 2, Y: 4}, {X: 1, Y: 1}, {X: 1, Y: 3}}, 1)
	require.Len(t, trend, 2, "one fitted value per distinct x")
	assert.Equal(t, 1.0, trend[0].X)
	assert.Equal(t, 2.0, trend[1].X)
}

func TestSortLabels(t *testing.T) {
	values := []string{"b", "10", "2", "a", "1.5"}
	SortLabels(values)
	assert.Equal(t, []string{"1.5", "2", "10", "a", "b"}, values)
}
