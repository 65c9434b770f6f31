package excel

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"lumos/domain/assay"
	"lumos/domain/table"
	"lumos/internal/pipeline"
)

// Sheet names of an exported run
const (
	SheetRaw        = "Raw Data"
	SheetNormalized = "Normalized Raw Data"
	SheetStatistics = "Descriptive Statistics"
	SheetAnomalies  = "Anomalies"
)

// Sheets lists the workbook sheets in tab order
var Sheets = []string{SheetRaw, SheetNormalized, SheetStatistics, SheetAnomalies}

var anomalyHeaders = []string{"row", "column", "kind", "value", "reason"}

// Build assembles a workbook holding every table of a run. The caller owns
// the returned file and must Close it.
func Build(result *pipeline.Result) (*excelize.File, error) {
	aggregate, err := result.AggregateTable()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetRaw); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	tables := map[string]*table.Table{
		SheetRaw:        result.Raw,
		SheetNormalized: result.Enriched,
		SheetStatistics: aggregate,
	}
	for _, name := range Sheets[:3] {
		if err := writeTable(f, name, tables[name], header); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	if err := writeAnomalies(f, result.Anomalies, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("sheet %q: %w", SheetAnomalies, err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook of a run to w
func Write(w io.Writer, result *pipeline.Result) error {
	f, err := Build(result)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// WriteFile saves the workbook of a run to path
func WriteFile(path string, result *pipeline.Result) error {
	f, err := Build(result)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if len(headers) == 0 {
		return nil
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeTable(f *excelize.File, sheet string, t *table.Table, style int) error {
	if t == nil {
		return nil
	}
	if err := writeHeader(f, sheet, t.Names(), style); err != nil {
		return err
	}
	for c, col := range t.Columns() {
		for r := 0; r < t.Rows(); r++ {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value interface{}
			if col.Kind() == table.KindNumber {
				value = numberCell(col.Number(r))
			} else {
				label, present := col.Label(r)
				if !present {
					continue
				}
				value = label
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// numberCell keeps finite values numeric; spreadsheets have no NaN or Inf so
// those are written as their text markers.
func numberCell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return table.FormatNumber(v)
	}
	return v
}

func writeAnomalies(f *excelize.File, anomalies []assay.Anomaly, style int) error {
	if err := writeHeader(f, SheetAnomalies, anomalyHeaders, style); err != nil {
		return err
	}
	for i, a := range anomalies {
		values := []interface{}{a.Row, a.Column, string(a.Kind), a.Value, a.Reason}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			if err := f.SetCellValue(SheetAnomalies, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
