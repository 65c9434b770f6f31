package csvsource

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"lumos/domain/core"
	"lumos/domain/table"
)

// Write encodes a table as CSV. Output is a pure function of the table, so
// identical runs produce identical bytes.
func Write(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteFile writes a table to path, truncating any existing file
func WriteFile(path string, t *table.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Fingerprint hashes the CSV encoding of a table
func Fingerprint(t *table.Table) (core.Hash, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return "", err
	}
	return core.NewHash(buf.Bytes()), nil
}
