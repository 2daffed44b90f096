package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"abkpi/domain/experiment"
	"abkpi/domain/verdict"
	"abkpi/internal/layout"
	"abkpi/internal/segments"
	"abkpi/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
)

func workbookBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	content := "\xEF\xBB\xBFTitle\n,PC,\nSegments,Control,Variation\nVisits,\"1,000\",\"1,100\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := NewDataReader().ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Rows())
	assert.Equal(t, "Title", g.Cell(0, 0), "BOM is stripped")
	assert.Equal(t, "1,000", g.Cell(3, 1))
	v, ok := g.Float(3, 2)
	assert.True(t, ok)
	assert.Equal(t, 1100.0, v)
}

func TestReadLegacyEncodedCSV(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("Segments,대조군,실험군\n방문,10,20\n"))
	require.NoError(t, err)

	g, err := NewDataReader().ReadBytes(context.Background(), "report.csv", encoded)
	require.NoError(t, err)
	assert.Equal(t, "대조군", g.Cell(0, 1))
	assert.Equal(t, "방문", g.Label(1))
}

func TestReadWorkbook(t *testing.T) {
	rows := testkit.NewReportBuilder().Segments("PC", "MO").
		Metric("Visits", 1000, 1000, 500, 500).
		Metric("Orders", 100, 120, 50, 40).
		Rows()

	g, err := NewDataReader().ReadBytes(context.Background(), "report.xlsx", workbookBytes(t, rows))
	require.NoError(t, err)
	assert.Equal(t, len(rows), g.Rows())
	assert.Equal(t, "Segments", g.Label(3))

	info, err := layout.Detect(g, layout.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, info.AnchorRow)
	assert.Equal(t, "PC", info.Segments[0].Name)
}

func TestReadRejectsUnknownFormat(t *testing.T) {
	_, err := NewDataReader().ReadBytes(context.Background(), "report.pdf", []byte("x"))
	assert.Error(t, err)

	_, err = NewDataReader().ReadBytes(context.Background(), "empty.csv", nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDataReader().ReadBytes(ctx, "report.csv", []byte("a,b"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteWorkbook(t *testing.T) {
	b := testkit.NewReportBuilder().Metric("Visits", 1000, 1100)
	g := b.Grid()
	info, err := layout.Detect(g, layout.Options{})
	require.NoError(t, err)

	win := verdict.VariationWins
	up := 10.0
	cv, vv := 1000.0, 1100.0
	exp := Export{
		Parsed: []ParsedPartition{{
			Partition: experiment.Partition{ReportOrder: "1st report", Country: "UK"},
			Data:      layout.DataGrid(g, info),
			Mapping:   segments.Default(),
		}},
		Results: []experiment.KPIResult{{
			ReportOrder: "1st report", Country: "UK", KPIName: "Visits", Segment: "All",
			ControlValue: &cv, VariationValue: &vv, Uplift: &up, Verdict: &win,
		}},
		Notices: []string{"1st report (UK) file: metric 'Orders' not found"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, exp))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{parsedSheet, resultsSheet, noticesSheet}, f.GetSheetList())

	parsed, err := f.GetRows(parsedSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Report Order", "Country", "Metric", "All - Control", "All - Variation"}, parsed[0])
	assert.Equal(t, "Visits", parsed[1][2])

	results, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Variation Wins", results[1][11])
}
