package extractor

import (
	"strings"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// Column role keywords, matched case-insensitively as substrings of header
// labels. Order inside each set is the priority order.
var (
	dateKeywords        = []string{"date", "txn", "transaction"}
	descriptionKeywords = []string{"narration", "description", "particulars", "details", "memo"}
	debitKeywords       = []string{"withdrawal", "debit"}
	creditKeywords      = []string{"deposit", "credit"}
	amountKeywords      = []string{"amount", "amt", "value", "sum"}
	indicatorKeywords   = []string{"dr/cr", "drcr", "type", "indicator"}
)

// defaultHeaderScanLimit caps how many leading rows a variable-layout
// extractor inspects before falling back to a fixed offset.
const defaultHeaderScanLimit = 30

// FindColumn returns the index of the first column whose label contains any
// of the keywords (case-insensitive substring), or -1.
func FindColumn(labels []string, keywords ...string) int {
	for i, label := range labels {
		l := strings.ToLower(strings.TrimSpace(label))
		if l == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(l, kw) {
				return i
			}
		}
	}
	return -1
}

// FindHeaderRow scans the first maxScan rows of the grid for one satisfying
// the marker predicate and returns its index, or -1 when no row matches.
func FindHeaderRow(grid *tabular.Grid, maxScan int, marker func(cells []string) bool) int {
	limit := grid.RowCount()
	if maxScan < limit {
		limit = maxScan
	}
	for i := 0; i < limit; i++ {
		if marker(grid.Row(i)) {
			return i
		}
	}
	return -1
}

// statementHeaderMarker reports whether a row's cells jointly contain a
// date-like keyword and an amount-like keyword, the signature of a statement
// header row buried under preamble lines.
func statementHeaderMarker(cells []string) bool {
	hasDate := false
	hasAmount := false
	for _, cell := range cells {
		c := strings.ToLower(strings.TrimSpace(cell))
		if c == "" {
			continue
		}
		if !hasDate && containsAny(c, dateKeywords) {
			hasDate = true
		}
		if !hasAmount && (containsAny(c, amountKeywords) ||
			containsAny(c, debitKeywords) || containsAny(c, creditKeywords)) {
			hasAmount = true
		}
		if hasDate && hasAmount {
			return true
		}
	}
	return false
}

// cellMarker builds a predicate matching rows where any cell contains any of
// the given markers, case-insensitively.
func cellMarker(markers ...string) func(cells []string) bool {
	return func(cells []string) bool {
		for _, cell := range cells {
			c := strings.ToLower(cell)
			for _, m := range markers {
				if strings.Contains(c, m) {
					return true
				}
			}
		}
		return false
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// columnRoles holds the discovered column index per role; -1 means the role
// could not be located.
type columnRoles struct {
	date      int
	desc      int
	debit     int
	credit    int
	amount    int
	indicator int
}

// discoverRoles maps header labels to column roles by keyword matching.
func discoverRoles(labels []string) columnRoles {
	return columnRoles{
		date:      FindColumn(labels, dateKeywords...),
		desc:      FindColumn(labels, descriptionKeywords...),
		debit:     FindColumn(labels, debitKeywords...),
		credit:    FindColumn(labels, creditKeywords...),
		amount:    FindColumn(labels, amountKeywords...),
		indicator: FindColumn(labels, indicatorKeywords...),
	}
}

// required reports whether the roles an extractor cannot work without are
// present.
func (r columnRoles) required() bool {
	return r.date >= 0 && r.desc >= 0
}
