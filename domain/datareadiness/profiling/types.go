package profiling

// ColumnProfile summarizes one column of an uploaded dataset before any
// projection, so users can see why a column failed to coerce.
type ColumnProfile struct {
	Name         string       `json:"name"`
	InferredType InferredType `json:"inferred_type"`
	Required     bool         `json:"required"`
	SampleSize   int          `json:"sample_size"`
	MissingStats MissingStats `json:"missing_stats"`
	UniqueCount  int          `json:"unique_count"`
	QualityScore float64      `json:"quality_score"` // 0-1, share of cells usable as the inferred type

	NumericStats     *NumericStats     `json:"numeric_stats,omitempty"`
	CategoricalStats *CategoricalStats `json:"categorical_stats,omitempty"`
}

// InferredType represents the automatically detected data type
type InferredType string

const (
	TypeNumeric     InferredType = "numeric"
	TypeCategorical InferredType = "categorical"
	TypeEmpty       InferredType = "empty"
)

// MissingStats tracks missing value patterns
type MissingStats struct {
	MissingCount       int     `json:"missing_count"`
	MissingRate        float64 `json:"missing_rate"`
	ConsecutiveMissing int     `json:"consecutive_missing"`
}

// NumericStats contains statistics for numeric columns. Invalid counts
// present cells that did not parse.
type NumericStats struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	ZeroCount     int     `json:"zero_count"`
	NegativeCount int     `json:"negative_count"`
	InvalidCount  int     `json:"invalid_count"`
}

// CategoricalStats contains statistics for categorical columns
type CategoricalStats struct {
	Mode          string `json:"mode"`
	ModeFrequency int    `json:"mode_frequency"`
}
