package ports

import (
	"lumos/domain/datareadiness/profiling"
	"lumos/domain/table"
)

// ProfilerPort describes the columns of a raw dataset
type ProfilerPort interface {
	ProfileTable(raw *table.Table) []profiling.ColumnProfile
}
