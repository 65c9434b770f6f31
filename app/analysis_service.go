package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lumos/adapters/csvsource"
	"lumos/adapters/excel"
	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/datareadiness/profiling"
	"lumos/domain/table"
	"lumos/internal"
	"lumos/internal/errors"
	"lumos/internal/pipeline"
	"lumos/internal/plot"
	"lumos/internal/report"
	"lumos/ports"
)

// Export file names inside a run directory
const (
	FileEnriched   = "normalized.csv"
	FileStatistics = "statistics.csv"
	FileWorkbook   = "analysis.xlsx"
	FileReport     = "report.html"
	DirPlots       = "plots"
)

// AnalyzeRequest carries the per-run choices. Empty fields fall back to the
// service defaults.
type AnalyzeRequest struct {
	Delimiter string `json:"delimiter" form:"delimiter"`
	Variables string `json:"variables" form:"variables"`
}

// PlotRequest selects the chart catalogue for an export
type PlotRequest struct {
	X          string `json:"x" form:"x" binding:"required"`
	Continuous bool   `json:"continuous" form:"continuous"`
	Color      string `json:"color,omitempty" form:"color"`
	Facet      string `json:"facet,omitempty" form:"facet"`
	LogX       bool   `json:"log_x" form:"log_x"`
}

// Selections expands the request into one selection per charted measure
func (r PlotRequest) Selections() []plot.Selection {
	return plot.Catalogue(r.X, r.Continuous, r.Color, r.Facet, r.LogX)
}

// ExportSummary lists what an export wrote
type ExportSummary struct {
	RunID          core.RunID        `json:"run_id"`
	Dir            string            `json:"dir"`
	Files          []string          `json:"files"`
	Charts         []ports.ChartFile `json:"charts,omitempty"`
	EnrichedHash   core.Hash         `json:"enriched_hash"`
	StatisticsHash core.Hash         `json:"statistics_hash"`
}

// AnalysisService runs the strip pipeline on uploaded datasets and exports
// its tables, charts and report.
type AnalysisService struct {
	reader      ports.TableReaderPort
	profiler    ports.ProfilerPort
	renderer    ports.ChartRendererPort
	charts      ports.ChartBatchPort
	pipeline    *pipeline.Pipeline
	plotOptions plot.Options
	defaults    AnalyzeRequest
	logger      *internal.Logger
}

// NewAnalysisService wires the service
func NewAnalysisService(
	reader ports.TableReaderPort,
	profiler ports.ProfilerPort,
	renderer ports.ChartRendererPort,
	charts ports.ChartBatchPort,
	pipe *pipeline.Pipeline,
	plotOptions plot.Options,
	defaults AnalyzeRequest,
	logger *internal.Logger,
) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		reader:      reader,
		profiler:    profiler,
		renderer:    renderer,
		charts:      charts,
		pipeline:    pipe,
		plotOptions: plotOptions,
		defaults:    defaults,
		logger:      logger.With("analysis"),
	}
}

// Schema resolves the variable schema of a request
func (s *AnalysisService) Schema(req AnalyzeRequest) (assay.VariableSchema, error) {
	if req.Delimiter == "" {
		req.Delimiter = s.defaults.Delimiter
	}
	if req.Variables == "" {
		req.Variables = s.defaults.Variables
	}
	delimiter, err := assay.ParseDelimiter(req.Delimiter)
	if err != nil {
		return assay.VariableSchema{}, errors.Wrap(err, "invalid delimiter")
	}
	schema, err := assay.ParseVariableSchema(delimiter, req.Variables)
	if err != nil {
		return assay.VariableSchema{}, errors.Wrap(err, "invalid variables")
	}
	return schema, nil
}

// Analyze reads a CSV dataset and runs the pipeline on it
func (s *AnalysisService) Analyze(ctx context.Context, in io.Reader, req AnalyzeRequest) (*pipeline.Result, error) {
	schema, err := s.Schema(req)
	if err != nil {
		return nil, err
	}
	raw, err := s.reader.Read(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read dataset")
	}
	return s.run(ctx, raw, schema)
}

// AnalyzeFile is Analyze for a dataset on disk
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, req AnalyzeRequest) (*pipeline.Result, error) {
	schema, err := s.Schema(req)
	if err != nil {
		return nil, err
	}
	raw, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return s.run(ctx, raw, schema)
}

func (s *AnalysisService) run(ctx context.Context, raw *table.Table, schema assay.VariableSchema) (*pipeline.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.pipeline.Run(raw, schema)
	if err != nil {
		return nil, errors.Wrap(err, "analysis failed")
	}
	return result, nil
}

// Profile describes the raw columns of a run
func (s *AnalysisService) Profile(result *pipeline.Result) []profiling.ColumnProfile {
	return s.profiler.ProfileTable(result.Raw)
}

// Figure resolves one chart selection against a run
func (s *AnalysisService) Figure(result *pipeline.Result, sel plot.Selection) (*plot.Figure, error) {
	if sel.Kind == "" {
		sel.Kind = plot.KindBox
	}
	fig, err := plot.Build(result.Enriched, result.Schema, sel, s.plotOptions)
	if err != nil {
		return nil, errors.Wrap(err, "invalid plot selection")
	}
	return fig, nil
}

// RenderPlot writes the PNG of one facet panel. An empty facet value selects
// the first panel.
func (s *AnalysisService) RenderPlot(w io.Writer, result *pipeline.Result, sel plot.Selection, facetValue string) (*plot.Figure, error) {
	fig, err := s.Figure(result, sel)
	if err != nil {
		return nil, err
	}
	if len(fig.Panels) == 0 {
		return nil, errors.InvalidInput("no plottable rows for " + sel.Y)
	}
	panel := fig.Panels[0]
	if facetValue != "" {
		found := false
		for _, p := range fig.Panels {
			if p.Facet == facetValue {
				panel, found = p, true
				break
			}
		}
		if !found {
			return nil, errors.InvalidInput(fmt.Sprintf("facet %q has no value %q", sel.Facet, facetValue))
		}
	}
	if err := s.renderer.RenderPanel(w, fig, panel); err != nil {
		return nil, errors.RenderError(err)
	}
	return fig, nil
}

// Export writes the run into dir/<run id>: normalized and statistics CSVs, the
// workbook, charts when plots is set, and an HTML report linking them.
func (s *AnalysisService) Export(ctx context.Context, result *pipeline.Result, dir string, plots *PlotRequest) (*ExportSummary, error) {
	runDir := filepath.Join(dir, result.RunID.String())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", runDir)
	}
	summary := &ExportSummary{RunID: result.RunID, Dir: runDir}

	statistics, err := result.AggregateTable()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build statistics table")
	}
	if err := csvsource.WriteFile(filepath.Join(runDir, FileEnriched), result.Enriched); err != nil {
		return nil, errors.Wrap(err, "failed to export normalized data")
	}
	if err := csvsource.WriteFile(filepath.Join(runDir, FileStatistics), statistics); err != nil {
		return nil, errors.Wrap(err, "failed to export statistics")
	}
	if summary.EnrichedHash, err = csvsource.Fingerprint(result.Enriched); err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint normalized data")
	}
	if summary.StatisticsHash, err = csvsource.Fingerprint(statistics); err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint statistics")
	}
	if err := excel.WriteFile(filepath.Join(runDir, FileWorkbook), result); err != nil {
		return nil, errors.Wrap(err, "failed to export workbook")
	}
	summary.Files = append(summary.Files, FileEnriched, FileStatistics, FileWorkbook)

	var images []string
	if plots != nil {
		charts, err := s.charts.RenderAll(ctx, filepath.Join(runDir, DirPlots), result.Enriched, result.Schema, plots.Selections())
		if err != nil {
			if core.IsInputError(err) {
				return nil, errors.Wrap(err, "invalid plot selection")
			}
			return nil, errors.RenderError(err)
		}
		for i := range charts {
			rel, err := filepath.Rel(runDir, charts[i].Path)
			if err != nil {
				rel = charts[i].Path
			}
			charts[i].Path = filepath.ToSlash(rel)
			images = append(images, charts[i].Path)
		}
		summary.Charts = charts
	}

	page := report.HTML(result, report.Options{Plots: images, Profile: s.Profile(result)})
	if err := os.WriteFile(filepath.Join(runDir, FileReport), page, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write report")
	}
	summary.Files = append(summary.Files, FileReport)

	s.logger.Info("exported run %s to %s (%d charts)", result.RunID, runDir, len(summary.Charts))
	return summary, nil
}
