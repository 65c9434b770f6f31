package ports

import (
	"context"
	"io"

	"lumos/domain/assay"
	"lumos/domain/table"
	"lumos/internal/plot"
)

// ChartFile describes one written chart
type ChartFile struct {
	Path     string   `json:"path"`
	Measure  string   `json:"measure"`
	Facet    string   `json:"facet,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ChartRendererPort draws a single facet panel of a figure
type ChartRendererPort interface {
	RenderPanel(w io.Writer, fig *plot.Figure, panel plot.Panel) error
}

// ChartBatchPort renders many selections into a directory
type ChartBatchPort interface {
	RenderAll(ctx context.Context, dir string, enriched *table.Table, schema assay.VariableSchema, selections []plot.Selection) ([]ChartFile, error)
}
