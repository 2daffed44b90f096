package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"abkpi/domain/grid"
	"abkpi/internal"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader reads report exports (.xlsx or .csv) into grids.
type DataReader struct {
	sheet  string
	logger *internal.Logger
}

// ReaderOption configures a DataReader.
type ReaderOption func(*DataReader)

// WithSheet reads the named sheet instead of the first one.
func WithSheet(name string) ReaderOption {
	return func(r *DataReader) { r.sheet = name }
}

// WithLogger sets the logger used for read timings.
func WithLogger(l *internal.Logger) ReaderOption {
	return func(r *DataReader) { r.logger = l }
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(opts ...ReaderOption) *DataReader {
	r := &DataReader{logger: internal.DefaultLogger}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithPrefix("DataReader")
	return r
}

func fileType(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return "csv", nil
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", ext)
	}
}

// ReadFile reads a report from disk.
func (r *DataReader) ReadFile(ctx context.Context, path string) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	return r.ReadBytes(ctx, filepath.Base(path), data)
}

// ReadBytes parses an uploaded report; name selects the format by extension.
func (r *DataReader) ReadBytes(ctx context.Context, name string, data []byte) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind, err := fileType(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var rows [][]string
	switch kind {
	case "csv":
		rows, err = readCSV(data)
	default:
		rows, err = r.readWorkbook(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s contains no rows", name)
	}

	g := grid.New(rows)
	r.logger.Debug("%s read in %.2fms (%d rows, %d columns)",
		name, float64(time.Since(start).Nanoseconds())/1e6, g.Rows(), g.Width())
	return g, nil
}

func (r *DataReader) readWorkbook(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// decodeText returns data as UTF-8, trying EUC-KR and then Latin-1 for legacy exports.
func decodeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	if decoded, err := korean.EUCKR.NewDecoder().Bytes(data); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return decoded
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return decoded
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(decodeText(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}
