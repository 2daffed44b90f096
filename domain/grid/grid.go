// Package grid models the raw cell table of a report export.
package grid

import (
	"fmt"
	"strings"
)

// Grid is an immutable row × column table of raw cell text.
// Column 0 holds row labels.
type Grid struct {
	rows  [][]string
	width int
}

// New copies rows into a Grid. Ragged rows are allowed.
func New(rows [][]string) *Grid {
	g := &Grid{rows: make([][]string, len(rows))}
	for i, row := range rows {
		g.rows[i] = append([]string(nil), row...)
		if len(row) > g.width {
			g.width = len(row)
		}
	}
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Width returns the length of the longest row.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// Cell returns the raw text at (row, col), or "" when out of range.
func (g *Grid) Cell(row, col int) string {
	if g == nil || row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.rows[row]) {
		return ""
	}
	return g.rows[row][col]
}

// Label returns the trimmed row label (column 0).
func (g *Grid) Label(row int) string {
	return strings.TrimSpace(g.Cell(row, 0))
}

// Row returns a copy of one row.
func (g *Grid) Row(row int) []string {
	if g == nil || row < 0 || row >= len(g.rows) {
		return nil
	}
	return append([]string(nil), g.rows[row]...)
}

// Float returns the numeric value at (row, col), see ParseNumber.
func (g *Grid) Float(row, col int) (float64, bool) {
	return ParseNumber(g.Cell(row, col))
}

// ColumnLabel formats a zero-based column index as a spreadsheet letter: 0→A, 25→Z, 26→AA.
func ColumnLabel(col int) string {
	if col < 0 {
		return "?"
	}
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// ParseColumnLabel is the inverse of ColumnLabel.
func ParseColumnLabel(label string) (int, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return 0, fmt.Errorf("empty column label")
	}
	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column label %q", label)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, nil
}
