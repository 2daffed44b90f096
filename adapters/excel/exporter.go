package excel

import (
	"fmt"
	"io"

	"abkpi/domain/experiment"
	"abkpi/domain/grid"

	"github.com/xuri/excelize/v2"
)

const (
	parsedSheet  = "Parsed Data"
	resultsSheet = "Results"
	noticesSheet = "Notices"
)

// ParsedPartition is one partition's data sub-grid and column mapping.
type ParsedPartition struct {
	Partition experiment.Partition
	Data      *grid.Grid
	Mapping   experiment.Mapping
}

// Export is everything written to the workbook.
type Export struct {
	Parsed  []ParsedPartition
	Results []experiment.KPIResult
	Notices []string
}

// WriteWorkbook writes parsed data, results and notices as plain sheets.
func WriteWorkbook(w io.Writer, exp Export) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", parsedSheet); err != nil {
		return err
	}
	if err := writeParsed(f, exp.Parsed); err != nil {
		return fmt.Errorf("failed to write parsed data: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return err
	}
	if err := writeResults(f, exp.Results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if len(exp.Notices) > 0 {
		if _, err := f.NewSheet(noticesSheet); err != nil {
			return err
		}
		for i, n := range exp.Notices {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetCellValue(noticesSheet, cell, n); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func mappingHeaders(m experiment.Mapping) []interface{} {
	var out []interface{}
	for _, g := range m.Groups() {
		out = append(out, g.Segment+" - Control")
		for _, v := range g.Variations {
			if m.MultiVariation() {
				out = append(out, fmt.Sprintf("%s - Variation %d", g.Segment, v.Num))
			} else {
				out = append(out, g.Segment+" - Variation")
			}
		}
	}
	return out
}

func writeParsed(f *excelize.File, parts []ParsedPartition) error {
	row := 1
	for i, p := range parts {
		if i > 0 {
			row++
		}
		header := append([]interface{}{"Report Order", "Country", "Metric"}, mappingHeaders(p.Mapping)...)
		if err := setRow(f, parsedSheet, row, header); err != nil {
			return err
		}
		row++
		for r := 0; r < p.Data.Rows(); r++ {
			values := []interface{}{p.Partition.ReportOrder, p.Partition.Country, p.Data.Label(r)}
			for _, g := range p.Mapping.Groups() {
				values = append(values, cellValue(p.Data, r, g.Control))
				for _, v := range g.Variations {
					values = append(values, cellValue(p.Data, r, v.Column))
				}
			}
			if err := setRow(f, parsedSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func cellValue(g *grid.Grid, row, col int) interface{} {
	if v, ok := g.Float(row, col); ok {
		return v
	}
	return g.Cell(row, col)
}

func optional(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

func writeResults(f *excelize.File, results []experiment.KPIResult) error {
	header := []interface{}{"Report Order", "Country", "KPI", "Segment", "Variation",
		"Control Value", "Variation Value", "Control Rate", "Variation Rate",
		"Uplift %", "Confidence %", "Verdict", "Denominator Size"}
	if err := setRow(f, resultsSheet, 1, header); err != nil {
		return err
	}
	row := 2
	for _, r := range results {
		for _, c := range r.Comparisons() {
			v := ""
			if c.Verdict != nil {
				v = c.Verdict.String()
			}
			values := []interface{}{r.ReportOrder, r.Country, r.KPIName, r.Segment, c.VariationNum,
				optional(c.ControlValue), optional(c.VariationValue), optional(c.ControlRate), optional(c.VariationRate),
				optional(c.Uplift), optional(c.Confidence), v, c.DenominatorSize}
			if err := setRow(f, resultsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
