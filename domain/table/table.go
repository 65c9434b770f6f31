// Package table provides the immutable column-oriented table every pipeline
// stage consumes and produces. Column identity is resolved at run time by
// name, so user-declared variable columns need no compile-time types.
package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the storage type of a column
type Kind int

const (
	KindNumber Kind = iota
	KindLabel
)

func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "label"
}

// Column is a named, typed, read-only vector. Number columns encode undefined
// cells as NaN or ±Inf; label columns track missing cells explicitly.
type Column struct {
	name   string
	kind   Kind
	nums   []float64
	labels []string
	valid  []bool
}

// NewNumberColumn copies values into a number column
func NewNumberColumn(name string, values []float64) Column {
	nums := make([]float64, len(values))
	copy(nums, values)
	return Column{name: name, kind: KindNumber, nums: nums}
}

// NewLabelColumn copies values into a label column. A nil valid slice marks
// every cell present.
func NewLabelColumn(name string, values []string, valid []bool) Column {
	labels := make([]string, len(values))
	copy(labels, values)
	present := make([]bool, len(values))
	for i := range present {
		present[i] = valid == nil || (i < len(valid) && valid[i])
	}
	return Column{name: name, kind: KindLabel, labels: labels, valid: present}
}

func (c Column) Name() string { return c.name }
func (c Column) Kind() Kind   { return c.kind }

func (c Column) Len() int {
	if c.kind == KindNumber {
		return len(c.nums)
	}
	return len(c.labels)
}

// Number returns the numeric cell; label columns yield NaN
func (c Column) Number(i int) float64 {
	if c.kind != KindNumber {
		return math.NaN()
	}
	return c.nums[i]
}

// Label returns the label cell and whether it is present. Number cells are
// formatted.
func (c Column) Label(i int) (string, bool) {
	if c.kind == KindNumber {
		return FormatNumber(c.nums[i]), !math.IsNaN(c.nums[i])
	}
	return c.labels[i], c.valid[i]
}

// Numbers returns a copy of the numeric vector
func (c Column) Numbers() []float64 {
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Renamed returns the same data under a new name. Storage is shared; both
// columns are read-only.
func (c Column) Renamed(name string) Column {
	c.name = name
	return c
}

// Cell renders a cell for export. Missing labels render empty.
func (c Column) Cell(i int) string {
	if c.kind == KindNumber {
		return FormatNumber(c.nums[i])
	}
	if !c.valid[i] {
		return ""
	}
	return c.labels[i]
}

// FormatNumber renders floats with the shortest round-trip representation so
// exports are stable across runs.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Table is an ordered set of equal-length columns with unique names
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a table, rejecting ragged or duplicate columns
func New(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.name, c.Len(), t.rows)
		}
		t.index[c.name] = i
	}
	t.cols = append([]Column(nil), cols...)
	return t, nil
}

// Rows returns the number of data rows
func (t *Table) Rows() int { return t.rows }

// Names returns column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Columns returns a copy of the column list
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.cols...)
}

// Column looks a column up by name
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Missing returns the subset of names not present, preserving order
func (t *Table) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// With returns a new table with cols appended
func (t *Table) With(cols ...Column) (*Table, error) {
	return New(append(t.Columns(), cols...)...)
}

// Without returns a new table lacking the named columns. Unknown names are
// ignored.
func (t *Table) Without(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var kept []Column
	for _, c := range t.cols {
		if !drop[c.name] {
			kept = append(kept, c)
		}
	}
	// kept columns came from a valid table, so New cannot fail
	out, _ := New(kept...)
	return out
}

// Select returns a new table containing only names, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Cell renders one cell for export
func (t *Table) Cell(row int, name string) string {
	c, ok := t.Column(name)
	if !ok {
		return ""
	}
	return c.Cell(row)
}

// Records renders the table as header + rows of strings
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.Names())
	for r := 0; r < t.rows; r++ {
		row := make([]string, len(t.cols))
		for i, c := range t.cols {
			row[i] = c.Cell(r)
		}
		records = append(records, row)
	}
	return records
}
