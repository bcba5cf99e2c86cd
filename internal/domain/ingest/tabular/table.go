// Package tabular turns raw statement bytes into a generic row/column table.
// It hides the mess of spreadsheet engines, text encodings and HTML-disguised
// exports behind a single Grid type the extractors can walk.
package tabular

import (
	"fmt"
	"strings"
)

// Grid is a raw decoded table: rows of string cells, no header semantics yet.
// Extractors decide which row (if any) is the header.
type Grid struct {
	rows [][]string
}

// NewGrid wraps pre-decoded rows. Used by decoders and tests.
func NewGrid(rows [][]string) *Grid {
	return &Grid{rows: rows}
}

// RowCount returns the number of rows in the grid.
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// Row returns the raw cells of row i, or nil when out of range.
func (g *Grid) Row(i int) []string {
	if i < 0 || i >= len(g.rows) {
		return nil
	}
	return g.rows[i]
}

// Cell returns the trimmed value at (row, col). The second return is false
// when the cell is out of range or holds a missing/NaN-like value, so callers
// can distinguish "absent" from a present value.
func (g *Grid) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(g.rows) {
		return "", false
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return "", false
	}
	v := strings.TrimSpace(r[col])
	if IsMissing(v) {
		return "", false
	}
	return v, true
}

// IsMissing reports whether a cell value stands for an absent value.
// Spreadsheet engines and upstream exports render empty cells as "", "nan",
// "NaN", "None" or "null" depending on the producer.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	switch strings.ToLower(v) {
	case "nan", "none", "null":
		return true
	}
	return false
}

// Table is a Grid with a designated header row. Data rows start immediately
// after the header.
type Table struct {
	grid   *Grid
	labels []string
	start  int // index of the first data row in the grid
}

// NewTable binds column labels from the given header row. Rows before and
// including headerRow are excluded from the data view.
func NewTable(g *Grid, headerRow int) (*Table, error) {
	if headerRow < 0 || headerRow >= g.RowCount() {
		return nil, fmt.Errorf("header row %d out of range (grid has %d rows)", headerRow, g.RowCount())
	}
	header := g.Row(headerRow)
	labels := make([]string, len(header))
	for i, h := range header {
		labels[i] = strings.TrimSpace(h)
	}
	return &Table{grid: g, labels: labels, start: headerRow + 1}, nil
}

// Columns returns the ordered column labels.
func (t *Table) Columns() []string {
	return t.labels
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return t.grid.RowCount() - t.start
}

// Cell returns the value at (data row, column index); ok is false for
// missing cells.
func (t *Table) Cell(row, col int) (string, bool) {
	return t.grid.Cell(t.start+row, col)
}

// Raw returns the original cells of a data row, untrimmed, for metadata
// capture. May be shorter than the header when trailing cells were empty.
func (t *Table) Raw(row int) []string {
	return t.grid.Row(t.start + row)
}
