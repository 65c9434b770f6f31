package pipeline

import (
	"fmt"

	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/table"
)

// SplitIdentifier decodes the strip name into one label column per declared
// variable and drops the strip name. Short identifiers leave the trailing
// variables missing and are flagged; excess tokens are discarded.
func SplitIdentifier(in *table.Table, schema assay.VariableSchema) (*table.Table, []assay.Anomaly, error) {
	if schema.Len() == 0 {
		return nil, nil, core.ErrEmptySchema
	}
	strip, ok := in.Column(assay.ColumnStripName)
	if !ok {
		return nil, nil, core.NewMissingColumnsError([]string{assay.ColumnStripName})
	}

	names := schema.Names()
	for _, name := range names {
		if name != assay.ColumnStripName && in.Has(name) {
			return nil, nil, core.NewVariableError(core.ErrColumnConflict, name)
		}
	}

	n := in.Rows()
	values := make([][]string, len(names))
	present := make([][]bool, len(names))
	for v := range names {
		values[v] = make([]string, n)
		present[v] = make([]bool, n)
	}

	var anomalies []assay.Anomaly
	for i := 0; i < n; i++ {
		identifier, _ := strip.Label(i)
		tokens, found := schema.Split(identifier)

		got := 0
		for v := range names {
			values[v][i] = tokens[v]
			present[v][i] = found[v]
			if found[v] {
				got++
			}
		}
		if got < len(names) {
			anomalies = append(anomalies, assay.Anomaly{
				Kind:   assay.AnomalySplitShortfall,
				Row:    i,
				Column: names[got],
				Value:  identifier,
				Reason: fmt.Sprintf("identifier yields %d of %d tokens", got, len(names)),
			})
		}
	}

	cols := make([]table.Column, len(names))
	for v, name := range names {
		cols[v] = table.NewLabelColumn(name, values[v], present[v])
	}

	out, err := in.Without(assay.ColumnStripName).With(cols...)
	if err != nil {
		return nil, nil, err
	}
	return out, anomalies, nil
}
