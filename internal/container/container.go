package container

import (
	"fmt"

	"lumos/adapters/chart"
	"lumos/adapters/csvsource"
	"lumos/adapters/datareadiness"
	"lumos/adapters/datareadiness/coercer"
	"lumos/app"
	"lumos/internal"
	"lumos/internal/config"
	"lumos/internal/pipeline"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Reader   *csvsource.Reader
	Profiler *datareadiness.Profiler
	Renderer *chart.Renderer
	Charts   *chart.Batch

	// Core
	Pipeline *pipeline.Pipeline
	Analysis *app.AnalysisService
}

// New wires every component from the configuration
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	plotOptions := cfg.PlotOptions()

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Reader:   csvsource.NewReader(logger),
		Profiler: datareadiness.NewProfiler(coercer.NewNumberCoercer(cfg.Coercion())),
		Renderer: chart.NewRenderer(cfg.Output.ChartWidth, cfg.Output.ChartHeight),
		Pipeline: pipeline.New(cfg.PipelineOptions(), logger),
	}
	c.Charts = chart.NewBatch(c.Renderer, plotOptions, cfg.Output.ChartConcurrency, logger)
	c.Analysis = app.NewAnalysisService(
		c.Reader,
		c.Profiler,
		c.Renderer,
		c.Charts,
		c.Pipeline,
		plotOptions,
		app.AnalyzeRequest{Delimiter: cfg.Analysis.Delimiter, Variables: cfg.Analysis.Variables},
		logger,
	)

	logger.Debug("container ready: delimiter %q, variables %q, include area ratios %v",
		cfg.Analysis.Delimiter, cfg.Analysis.Variables, cfg.Analysis.IncludeAreaRatios)
	return c, nil
}
