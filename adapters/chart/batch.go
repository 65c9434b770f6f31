package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"lumos/domain/assay"
	"lumos/domain/table"
	"lumos/internal"
	"lumos/internal/plot"
	"lumos/ports"
)

// Output describes one written chart
type Output = ports.ChartFile

// Batch renders many selections into a directory. Each chart reads only the
// immutable enriched table, so charts render concurrently.
type Batch struct {
	renderer    *Renderer
	options     plot.Options
	concurrency int
	logger      *internal.Logger
}

// NewBatch creates a batch renderer; concurrency <= 0 means 4
func NewBatch(renderer *Renderer, options plot.Options, concurrency int, logger *internal.Logger) *Batch {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Batch{renderer: renderer, options: options, concurrency: concurrency, logger: logger.With("chart")}
}

// RenderAll writes one PNG per (selection, facet panel) into dir
func (b *Batch) RenderAll(ctx context.Context, dir string, enriched *table.Table, schema assay.VariableSchema, selections []plot.Selection) ([]Output, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	results := make([][]Output, len(selections))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, sel := range selections {
		i, sel := i, sel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fig, err := plot.Build(enriched, schema, sel, b.options)
			if err != nil {
				return fmt.Errorf("build %s: %w", sel.Y, err)
			}
			for _, w := range fig.Warnings {
				b.logger.Warn("%s: %s", sel.Y, w)
			}
			taken := make(map[string]bool, len(fig.Panels))
			for _, panel := range fig.Panels {
				path := filepath.Join(dir, uniqueName(taken, FileName(sel.Y, sel.Facet, panel.Facet)))
				if err := b.writePanel(path, fig, panel); err != nil {
					return err
				}
				results[i] = append(results[i], Output{Path: path, Measure: sel.Y, Facet: panel.Facet, Warnings: fig.Warnings})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var outputs []Output
	for _, r := range results {
		outputs = append(outputs, r...)
	}
	b.logger.Info("rendered %d charts into %s", len(outputs), dir)
	return outputs, nil
}

func (b *Batch) writePanel(path string, fig *plot.Figure, panel plot.Panel) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := b.renderer.RenderPanel(file, fig, panel); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

var fileNameReplacer = strings.NewReplacer("/", "_over_", "\\", "_", " ", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")

// FileName builds a filesystem-safe chart name: <measure>[__<facet>].png
func FileName(measure, facetVariable, facetValue string) string {
	name := fileNameReplacer.Replace(measure)
	if facetVariable != "" {
		name += "__" + fileNameReplacer.Replace(facetVariable) + "-" + fileNameReplacer.Replace(facetValue)
	}
	return name + ".png"
}

// uniqueName suffixes "-2", "-3", ... when facet values collapse to a name
// already written for the same selection.
func uniqueName(taken map[string]bool, name string) string {
	candidate := name
	ext := filepath.Ext(name)
	for i := 2; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), i, ext)
	}
	taken[candidate] = true
	return candidate
}
