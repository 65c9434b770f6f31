package stage

import (
	"lumos/domain/core"
)

// StageName represents a named stage in the pipeline
type StageName string

// Pipeline stages, in execution order
const (
	StageProject   StageName = "project"
	StageDerive    StageName = "derive_ratios"
	StageSplit     StageName = "split_identifier"
	StageAggregate StageName = "aggregate"
)

// Order lists the stages as the pipeline runs them
var Order = []StageName{StageProject, StageDerive, StageSplit, StageAggregate}

// StageAudit captures what a stage consumed and produced
type StageAudit struct {
	StageName  StageName      `json:"stage_name"`
	RunID      core.RunID     `json:"run_id"`
	RowsIn     int            `json:"rows_in"`
	RowsOut    int            `json:"rows_out"`
	ColumnsOut []string       `json:"columns_out"`
	Anomalies  int            `json:"anomalies"`
	Warnings   []string       `json:"warnings,omitempty"`
	ExecutedAt core.Timestamp `json:"executed_at"`
	DurationMs int64          `json:"duration_ms"`
}
