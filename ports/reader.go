package ports

import (
	"io"

	"lumos/domain/table"
)

// TableReaderPort parses an uploaded dataset into a raw table of labels
type TableReaderPort interface {
	Read(in io.Reader) (*table.Table, error)
	ReadFile(path string) (*table.Table, error)
}
