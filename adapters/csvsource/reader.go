// Package csvsource reads strip-reader CSV exports into tables and writes
// pipeline tables back out as CSV.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"lumos/domain/core"
	"lumos/domain/table"
	"lumos/internal"
)

// Reader parses a CSV export into a raw table of label columns
type Reader struct {
	comma  rune
	logger *internal.Logger
}

// NewReader creates a reader for comma-separated input
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{comma: ',', logger: logger.With("csv")}
}

// ReadFile reads a CSV file from disk
func (r *Reader) ReadFile(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return r.Read(file)
}

// Read parses header + rows. Every column is kept as text; numeric coercion
// happens in the projection stage for the columns that need it.
func (r *Reader) Read(in io.Reader) (*table.Table, error) {
	reader := csv.NewReader(in)
	reader.Comma = r.comma
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: CSV must have at least a header row and one data row", core.ErrEmptyDataset)
	}

	headers := uniqueHeaders(rows[0])
	data := rows[1:]

	cols := make([]table.Column, len(headers))
	for j, header := range headers {
		values := make([]string, len(data))
		present := make([]bool, len(data))
		for i, row := range data {
			if j < len(row) {
				values[i] = strings.TrimSpace(row[j])
				present[i] = values[i] != ""
			}
		}
		cols[j] = table.NewLabelColumn(header, values, present)
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to build table: %w", err)
	}
	r.logger.Info("CSV processed (%d columns, %d rows)", len(headers), t.Rows())
	return t, nil
}

// uniqueHeaders trims names, strips a UTF-8 BOM and suffixes duplicates with
// ".1", ".2", ... so every column stays addressable.
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		headers[i] = name
	}
	return headers
}
