// Package lookup resolves metric labels to values in a report's data sub-grid.
package lookup

import (
	"sync"

	"abkpi/domain/grid"
	"abkpi/internal"
)

// Lookuper resolves (label, column) pairs against one data grid. It is safe
// for concurrent use.
type Lookuper struct {
	data     *grid.Grid
	labels   []string
	matchers []Matcher
	diag     internal.Diagnostics

	mu   sync.Mutex
	rows map[string]int
}

// Option configures a Lookuper.
type Option func(*Lookuper)

// WithMatchers replaces the strategy chain.
func WithMatchers(m ...Matcher) Option {
	return func(l *Lookuper) { l.matchers = m }
}

// WithDiagnostics sets the sink for lookup misses.
func WithDiagnostics(d internal.Diagnostics) Option {
	return func(l *Lookuper) { l.diag = internal.OrNop(d) }
}

// New indexes the normalized row labels of data.
func New(data *grid.Grid, opts ...Option) *Lookuper {
	l := &Lookuper{
		data:     data,
		matchers: DefaultMatchers(),
		diag:     internal.NopDiagnostics{},
		rows:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.labels = make([]string, data.Rows())
	for r := range l.labels {
		l.labels[r] = grid.NormalizeLabel(data.Label(r))
	}
	return l
}

// Row returns the data row a label resolves to.
func (l *Lookuper) Row(label string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.rows[label]; ok {
		return r, r >= 0
	}
	row := -1
	for _, m := range l.matchers {
		if r, ok := m.Match(label, l.labels); ok {
			row = r
			if m.Name() != "normalized" {
				l.diag.Debug("metric %q matched row %q via %s", label, l.data.Label(r), m.Name())
			}
			break
		}
	}
	l.rows[label] = row
	if row < 0 {
		l.diag.Debug("metric %q not found in %d row(s)", label, len(l.labels))
	}
	return row, row >= 0
}

// Find returns the numeric value of label in column col.
func (l *Lookuper) Find(label string, col int) (float64, bool) {
	row, ok := l.Row(label)
	if !ok {
		return 0, false
	}
	v, ok := l.data.Float(row, col)
	if !ok {
		l.diag.Debug("metric %q column %s: %q is not numeric", label, grid.ColumnLabel(col), l.data.Cell(row, col))
	}
	return v, ok
}
