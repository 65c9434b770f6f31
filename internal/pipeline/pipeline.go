// Package pipeline turns a raw strip-reader table into the enriched table and
// grouped statistics. Stages are pure functions over immutable tables; the
// variable schema is passed to each stage that needs it.
//
// Stage order: Project -> DeriveRatios -> SplitIdentifier -> Summarize.
// Structural problems (missing columns, empty schema) abort a run with a
// schema error. Data-quality problems mark cells NaN/Inf or missing and are
// returned as anomalies alongside a completed result.
package pipeline

import (
	"sort"
	"time"

	"lumos/adapters/datareadiness/coercer"
	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/stage"
	"lumos/domain/table"
	"lumos/internal"
)

// Options configure a pipeline
type Options struct {
	IncludeAreaRatios bool
	Coercion          coercer.CoercionConfig
}

// DefaultOptions aggregates the height ratios and contrasts only
func DefaultOptions() Options {
	return Options{Coercion: coercer.DefaultCoercionConfig()}
}

// Result holds every artifact of one run
type Result struct {
	RunID     core.RunID
	Schema    assay.VariableSchema
	Raw       *table.Table
	Enriched  *table.Table
	Aggregate *Aggregate
	Anomalies []assay.Anomaly
	Audit     []stage.StageAudit
}

// Pipeline runs the four stages in order
type Pipeline struct {
	options Options
	numbers *coercer.NumberCoercer
	logger  *internal.Logger
}

// New creates a pipeline
func New(options Options, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{
		options: options,
		numbers: coercer.NewNumberCoercer(options.Coercion),
		logger:  logger.With("pipeline"),
	}
}

// Measures returns the measures this pipeline aggregates
func (p *Pipeline) Measures() []string {
	return assay.AggregateMeasures(p.options.IncludeAreaRatios)
}

// Run executes the pipeline on raw. It never mutates raw.
func (p *Pipeline) Run(raw *table.Table, schema assay.VariableSchema) (*Result, error) {
	if schema.Len() == 0 {
		return nil, core.ErrEmptySchema
	}

	result := &Result{RunID: core.NewRunID(), Schema: schema, Raw: raw}
	p.logger.Debug("run %s: %d rows, variables %v, delimiter %q", result.RunID, raw.Rows(), schema.Names(), schema.Delimiter().String())

	canonical, err := p.step(result, stage.StageProject, raw.Rows(), func() (*table.Table, []assay.Anomaly, error) {
		return Project(raw, p.numbers)
	})
	if err != nil {
		return nil, err
	}

	derived, err := p.step(result, stage.StageDerive, canonical.Rows(), func() (*table.Table, []assay.Anomaly, error) {
		return DeriveRatios(canonical)
	})
	if err != nil {
		return nil, err
	}

	enriched, err := p.step(result, stage.StageSplit, derived.Rows(), func() (*table.Table, []assay.Anomaly, error) {
		return SplitIdentifier(derived, schema)
	})
	if err != nil {
		return nil, err
	}
	result.Enriched = enriched

	start := time.Now()
	agg, err := Summarize(enriched, schema.Names(), p.Measures())
	if err != nil {
		p.logger.Error("stage %s failed: %v", stage.StageAggregate, err)
		return nil, err
	}
	result.Aggregate = agg
	result.Audit = append(result.Audit, stage.StageAudit{
		StageName:  stage.StageAggregate,
		RunID:      result.RunID,
		RowsIn:     enriched.Rows(),
		RowsOut:    len(agg.Groups) * len(agg.Measures),
		ColumnsOut: agg.Measures,
		ExecutedAt: core.Timestamp(start),
		DurationMs: time.Since(start).Milliseconds(),
	})

	result.Anomalies = sortAnomalies(result.Anomalies)
	counts := assay.CountByKind(result.Anomalies)
	p.logger.Info("run %s complete: %d rows, %d groups, anomalies arithmetic=%d split_shortfall=%d coercion=%d",
		result.RunID, enriched.Rows(), len(agg.Groups),
		counts[assay.AnomalyArithmetic], counts[assay.AnomalySplitShortfall], counts[assay.AnomalyCoercion])
	for _, a := range result.Anomalies {
		p.logger.Trace("%v", a)
	}
	return result, nil
}

// step runs one table stage and records its audit entry and anomalies
func (p *Pipeline) step(result *Result, name stage.StageName, rowsIn int, run func() (*table.Table, []assay.Anomaly, error)) (*table.Table, error) {
	start := time.Now()
	out, anomalies, err := run()
	if err != nil {
		p.logger.Error("stage %s failed: %v", name, err)
		return nil, err
	}
	result.Anomalies = append(result.Anomalies, anomalies...)
	result.Audit = append(result.Audit, stage.StageAudit{
		StageName:  name,
		RunID:      result.RunID,
		RowsIn:     rowsIn,
		RowsOut:    out.Rows(),
		ColumnsOut: out.Names(),
		Anomalies:  len(anomalies),
		ExecutedAt: core.Timestamp(start),
		DurationMs: time.Since(start).Milliseconds(),
	})
	p.logger.Debug("stage %s: %d rows, %d columns, %d anomalies", name, out.Rows(), len(out.Names()), len(anomalies))
	return out, nil
}

// sortAnomalies orders anomalies by row, then column, then kind
func sortAnomalies(anomalies []assay.Anomaly) []assay.Anomaly {
	sort.SliceStable(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Kind < b.Kind
	})
	return anomalies
}

// AggregateTable is a convenience for exports
func (r *Result) AggregateTable() (*table.Table, error) {
	return r.Aggregate.Table()
}
