package chart

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"lumos/domain/assay"
	"lumos/domain/table"
	"lumos/internal"
	"lumos/internal/plot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func enrichedFixture(t *testing.T) (*table.Table, assay.VariableSchema) {
	t.Helper()
	schema, err := assay.NewVariableSchema(assay.Underscore, []string{"dilution", "lot"})
	require.NoError(t, err)
	enriched, err := table.New(
		table.NewNumberColumn(assay.TLHNormalized, []float64{0.10, 0.20, 0.35, 0.30, 0.55, 0.60}),
		table.NewNumberColumn(assay.TOverC, []float64{0.11, 0.25, 0.53, 0.43, 1.22, 1.5}),
		table.NewLabelColumn("dilution", []string{"1", "10", "100", "10", "1000", "100"}, nil),
		table.NewLabelColumn("lot", []string{"A", "A", "A", "B", "B", "B"}, nil),
	)
	require.NoError(t, err)
	return enriched, schema
}

func TestRenderScatterPanel(t *testing.T) {
	enriched, schema := enrichedFixture(t)
	fig, err := plot.Build(enriched, schema, plot.Selection{X: "dilution", Y: assay.TLHNormalized, Color: "lot", LogX: true, Kind: plot.KindScatterTrend}, plot.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(640, 400).RenderPanel(&buf, fig, fig.Panels[0]))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderBoxPanel(t *testing.T) {
	enriched, schema := enrichedFixture(t)
	fig, err := plot.Build(enriched, schema, plot.Selection{X: "lot", Y: assay.TOverC, Kind: plot.KindBox}, plot.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(0, 0).RenderPanel(&buf, fig, fig.Panels[0]))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderEmptyPanelFails(t *testing.T) {
	fig := &plot.Figure{Selection: plot.Selection{Y: assay.TLH, Kind: plot.KindScatterTrend}}
	err := NewRenderer(0, 0).RenderPanel(io.Discard, fig, plot.Panel{})
	assert.Error(t, err)
}

func TestPanelTitle(t *testing.T) {
	fig := &plot.Figure{Title: "The effect of dilution on TLH", Selection: plot.Selection{Facet: "lot"}}
	assert.Equal(t, "The effect of dilution on TLH [lot = A]", PanelTitle(fig, plot.Panel{Facet: "A"}))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "T_over_C_normalized.png", FileName(assay.TOverC, "", ""))
	assert.Equal(t, "TLH__lot-A_1.png", FileName(assay.TLH, "lot", "A 1"))
}

func TestBatchRenderAll(t *testing.T) {
	enriched, schema := enrichedFixture(t)
	logger := internal.NewLogger(internal.LogLevelError).WithOutput(log.New(io.Discard, "", 0))
	batch := NewBatch(NewRenderer(480, 320), plot.DefaultOptions(), 2, logger)

	selections := []plot.Selection{
		{X: "dilution", Y: assay.TLHNormalized, Facet: "lot", Kind: plot.KindScatterTrend},
		{X: "lot", Y: assay.TOverC, Kind: plot.KindBox},
	}
	dir := t.TempDir()
	outputs, err := batch.RenderAll(context.Background(), dir, enriched, schema, selections)
	require.NoError(t, err)
	require.Len(t, outputs, 3)

	assert.Equal(t, filepath.Join(dir, "TLH_normalized__lot-A.png"), outputs[0].Path)
	assert.Equal(t, filepath.Join(dir, "TLH_normalized__lot-B.png"), outputs[1].Path)
	assert.Equal(t, filepath.Join(dir, "T_over_C_normalized.png"), outputs[2].Path)
	for _, o := range outputs {
		data, err := os.ReadFile(o.Path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), o.Path)
	}
}

func TestBatchKeepsCollidingFacetNamesApart(t *testing.T) {
	schema, err := assay.NewVariableSchema(assay.Hyphen, []string{"dilution", "lot"})
	require.NoError(t, err)
	enriched, err := table.New(
		table.NewNumberColumn(assay.TLHNormalized, []float64{0.10, 0.20, 0.35, 0.30, 0.55, 0.60}),
		table.NewLabelColumn("dilution", []string{"1", "10", "10", "1", "10", "10"}, nil),
		table.NewLabelColumn("lot", []string{"x y", "x y", "x y", "x_y", "x_y", "x_y"}, nil),
	)
	require.NoError(t, err)

	dir := t.TempDir()
	batch := NewBatch(NewRenderer(0, 0), plot.DefaultOptions(), 1, nil)
	outputs, err := batch.RenderAll(context.Background(), dir, enriched, schema,
		[]plot.Selection{{X: "dilution", Y: assay.TLHNormalized, Facet: "lot", Kind: plot.KindBox}})
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	assert.Equal(t, filepath.Join(dir, "TLH_normalized__lot-x_y.png"), outputs[0].Path)
	assert.Equal(t, filepath.Join(dir, "TLH_normalized__lot-x_y-2.png"), outputs[1].Path)
	assert.Equal(t, "x y", outputs[0].Facet)
	assert.Equal(t, "x_y", outputs[1].Facet)
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{}
	assert.Equal(t, "a.png", uniqueName(taken, "a.png"))
	assert.Equal(t, "a-2.png", uniqueName(taken, "a.png"))
	assert.Equal(t, "a-3.png", uniqueName(taken, "a.png"))
	assert.Equal(t, "b.png", uniqueName(taken, "b.png"))
}

func TestBatchStopsOnInvalidSelection(t *testing.T) {
	enriched, schema := enrichedFixture(t)
	batch := NewBatch(NewRenderer(0, 0), plot.DefaultOptions(), 1, nil)

	_, err := batch.RenderAll(context.Background(), t.TempDir(), enriched, schema, []plot.Selection{{X: "batch", Y: assay.TLH, Kind: plot.KindBox}})
	assert.Error(t, err)
}
