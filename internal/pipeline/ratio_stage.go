package pipeline

import (
	"fmt"
	"math"

	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/table"
)

// DeriveRatios appends the four normalized intensities and the three
// contrasts. Division follows IEEE-754: 0/0 is NaN and x/0 is ±Inf. Every
// non-finite derived cell is reported; no row is removed.
func DeriveRatios(canonical *table.Table) (*table.Table, []assay.Anomaly, error) {
	if missing := canonical.Missing(assay.TLH, assay.CLH, assay.TLA, assay.CLA); len(missing) > 0 {
		return nil, nil, core.NewMissingColumnsError(missing)
	}

	tlh := numbersOf(canonical, assay.TLH)
	clh := numbersOf(canonical, assay.CLH)
	tla := numbersOf(canonical, assay.TLA)
	cla := numbersOf(canonical, assay.CLA)

	n := canonical.Rows()
	derived := make(map[string][]float64, 7)
	for _, name := range assay.DerivedColumns() {
		derived[name] = make([]float64, n)
	}

	var anomalies []assay.Anomaly
	flag := func(row int, column string, v float64, reason string) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return
		}
		anomalies = append(anomalies, assay.Anomaly{
			Kind: assay.AnomalyArithmetic, Row: row, Column: column,
			Value: table.FormatNumber(v), Reason: reason,
		})
	}

	for i := 0; i < n; i++ {
		heightSum := tlh[i] + clh[i]
		areaSum := tla[i] + cla[i]

		tn := tlh[i] / heightSum
		cn := clh[i] / heightSum
		ta := tla[i] / areaSum
		ca := cla[i] / areaSum

		derived[assay.TLHNormalized][i] = tn
		derived[assay.CLHNormalized][i] = cn
		derived[assay.TLANormalized][i] = ta
		derived[assay.CLANormalized][i] = ca
		derived[assay.TMinusC][i] = tn - cn
		derived[assay.TOverC][i] = tn / cn
		derived[assay.COverT][i] = cn / tn

		heightReason := denominatorReason(heightSum, "TLH+CLH")
		areaReason := denominatorReason(areaSum, "TLA+CLA")
		flag(i, assay.TLHNormalized, tn, heightReason)
		flag(i, assay.CLHNormalized, cn, heightReason)
		flag(i, assay.TLANormalized, ta, areaReason)
		flag(i, assay.CLANormalized, ca, areaReason)
		flag(i, assay.TMinusC, tn-cn, operandReason(tn, cn))
		flag(i, assay.TOverC, tn/cn, quotientReason(tn, cn, assay.CLHNormalized))
		flag(i, assay.COverT, cn/tn, quotientReason(cn, tn, assay.TLHNormalized))
	}

	cols := make([]table.Column, 0, 7)
	for _, name := range assay.DerivedColumns() {
		cols = append(cols, table.NewNumberColumn(name, derived[name]))
	}
	out, err := canonical.With(cols...)
	if err != nil {
		return nil, nil, err
	}
	return out, anomalies, nil
}

func numbersOf(t *table.Table, name string) []float64 {
	c, _ := t.Column(name)
	if c.Kind() == table.KindNumber {
		return c.Numbers()
	}
	values := make([]float64, c.Len())
	for i := range values {
		values[i] = c.Number(i)
	}
	return values
}

func denominatorReason(sum float64, expr string) string {
	switch {
	case sum == 0:
		return fmt.Sprintf("zero denominator (%s=0)", expr)
	case math.IsNaN(sum):
		return fmt.Sprintf("undefined operand in %s", expr)
	}
	return fmt.Sprintf("non-finite operand in %s", expr)
}

func operandReason(a, b float64) string {
	if math.IsNaN(a) || math.IsNaN(b) {
		return "undefined operand"
	}
	return "non-finite operand"
}

func quotientReason(num, den float64, denName string) string {
	if den == 0 && !math.IsNaN(num) {
		return fmt.Sprintf("zero denominator (%s=0)", denName)
	}
	return operandReason(num, den)
}
