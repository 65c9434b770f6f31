package pipeline

import (
	"math"

	"lumos/adapters/datareadiness/coercer"
	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/table"
)

// Project keeps the strip name and the four measurement columns, renamed to
// TLH, CLH, TLA and CLA. Text cells are coerced to numbers; cells that cannot
// be read become NaN and are flagged. Strip names equal to an NA token are
// treated as missing identifiers.
func Project(raw *table.Table, numbers *coercer.NumberCoercer) (*table.Table, []assay.Anomaly, error) {
	if missing := raw.Missing(assay.RequiredColumns()...); len(missing) > 0 {
		return nil, nil, core.NewMissingColumnsError(missing)
	}

	strip, _ := raw.Column(assay.ColumnStripName)
	cols := []table.Column{identifiersOf(strip, numbers)}

	var anomalies []assay.Anomaly
	for _, m := range assay.RenameMapping {
		source, _ := raw.Column(m.Raw)
		if source.Kind() == table.KindNumber {
			cols = append(cols, source.Renamed(m.Canonical))
			continue
		}

		values := make([]float64, source.Len())
		for i := range values {
			cell, present := source.Label(i)
			if !present {
				values[i] = math.NaN()
				anomalies = append(anomalies, assay.Anomaly{
					Kind: assay.AnomalyCoercion, Row: i, Column: m.Canonical, Reason: "missing value",
				})
				continue
			}
			v, outcome := numbers.Coerce(cell)
			values[i] = v
			if outcome != coercer.Parsed {
				anomalies = append(anomalies, assay.Anomaly{
					Kind: assay.AnomalyCoercion, Row: i, Column: m.Canonical, Value: cell,
					Reason: outcome.String() + " value",
				})
			}
		}
		cols = append(cols, table.NewNumberColumn(m.Canonical, values))
	}

	out, err := table.New(cols...)
	if err != nil {
		return nil, nil, err
	}
	return out, anomalies, nil
}

// identifiersOf turns the strip name column into a label column. Empty cells
// and NA tokens are missing.
func identifiersOf(c table.Column, numbers *coercer.NumberCoercer) table.Column {
	values := make([]string, c.Len())
	present := make([]bool, c.Len())
	for i := range values {
		v, ok := c.Label(i)
		if ok && !numbers.IsNA(v) {
			values[i], present[i] = v, true
		}
	}
	return table.NewLabelColumn(c.Name(), values, present)
}
