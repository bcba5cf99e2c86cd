package extractor

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// hdfcCardExtractor parses HDFC credit card spreadsheet exports. These
// sheets carry no usable header text: the row holding the
// Domestic/International transaction-type marker anchors the layout, and the
// columns after the marker are positional. Dates come combined with a time
// of day, and direction is a trailing Dr/Cr cell.
type hdfcCardExtractor struct {
	logger *slog.Logger
}

// Column offsets relative to the transaction-type marker cell.
const (
	cardDateOffset      = 1
	cardDescOffset      = 2
	cardAmountOffset    = 3
	cardIndicatorOffset = 4
)

// cardColumns holds resolved positional column indices; indicator may be -1.
type cardColumns struct {
	date      int
	desc      int
	amount    int
	indicator int
}

func (e *hdfcCardExtractor) Parse(grid *tabular.Grid) []ParsedRecord {
	marker := cellMarker("domestic", "international")
	headerRow := FindHeaderRow(grid, defaultHeaderScanLimit, marker)
	if headerRow < 0 {
		e.logger.Warn("transaction type marker not found, nothing extracted")
		return nil
	}

	markerCol := markerColumn(grid.Row(headerRow))
	cols, ok := cardColumnsFromOffsets(grid, headerRow, markerCol)
	if !ok {
		cols, ok = cardColumnsFromShape(grid, headerRow+1)
	}
	if !ok {
		e.logger.Warn("card statement layout not recognized, nothing extracted",
			slog.Int("header_row", headerRow))
		return nil
	}

	var records []ParsedRecord
	for i := headerRow + 1; i < grid.RowCount(); i++ {
		rec, ok := e.extractCardRow(grid, i, cols)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (e *hdfcCardExtractor) extractCardRow(grid *tabular.Grid, row int, cols cardColumns) (ParsedRecord, bool) {
	dateRaw, ok := grid.Cell(row, cols.date)
	if !ok {
		return ParsedRecord{}, false
	}
	descRaw, ok := grid.Cell(row, cols.desc)
	if !ok {
		return ParsedRecord{}, false
	}
	dateToken, clock := splitDateTime(dateRaw)
	date, ok := parseDayFirstDate(dateToken)
	if !ok {
		return ParsedRecord{}, false
	}

	amountRaw, ok := grid.Cell(row, cols.amount)
	if !ok {
		return ParsedRecord{}, false
	}
	indicatorRaw, hasIndicator := "", false
	if cols.indicator >= 0 {
		indicatorRaw, hasIndicator = grid.Cell(row, cols.indicator)
	}
	amount, direction, ok := resolveSingleAmount(amountRaw, indicatorRaw, hasIndicator)
	if !ok {
		return ParsedRecord{}, false
	}

	return ParsedRecord{
		Date:        date,
		Time:        clock,
		Description: strings.TrimSpace(descRaw),
		Amount:      amount,
		Direction:   direction,
		Metadata:    capturePositional(grid.Row(row)),
	}, true
}

// markerColumn returns the column holding the transaction-type marker.
func markerColumn(cells []string) int {
	for i, cell := range cells {
		c := strings.ToLower(cell)
		if strings.Contains(c, "domestic") || strings.Contains(c, "international") {
			return i
		}
	}
	return 0
}

// cardColumnsFromOffsets maps fixed offsets from the marker cell, validated
// against the first data row actually holding a parseable date there.
func cardColumnsFromOffsets(grid *tabular.Grid, headerRow, markerCol int) (cardColumns, bool) {
	cols := cardColumns{
		date:      markerCol + cardDateOffset,
		desc:      markerCol + cardDescOffset,
		amount:    markerCol + cardAmountOffset,
		indicator: markerCol + cardIndicatorOffset,
	}
	for i := headerRow + 1; i < grid.RowCount(); i++ {
		raw, ok := grid.Cell(i, cols.date)
		if !ok {
			continue
		}
		token, _ := splitDateTime(raw)
		if _, ok := parseDayFirstDate(token); ok {
			return cols, true
		}
	}
	return cardColumns{}, false
}

// cardColumnsFromShape infers the layout from the first data row whose cells
// expose a date-like token: a slash-separated token with at least three
// numeric parts marks the date column, a long alphabetic cell the
// description, a numeric cell the amount, and a Dr/Cr cell the indicator.
func cardColumnsFromShape(grid *tabular.Grid, firstDataRow int) (cardColumns, bool) {
	for i := firstDataRow; i < grid.RowCount(); i++ {
		cells := grid.Row(i)
		cols := cardColumns{date: -1, desc: -1, amount: -1, indicator: -1}
		for j, cell := range cells {
			c := strings.TrimSpace(cell)
			if c == "" {
				continue
			}
			switch {
			case cols.date < 0 && looksLikeDateToken(c):
				cols.date = j
			case cols.desc < 0 && looksLikeDescription(c):
				cols.desc = j
			case cols.indicator < 0 && looksLikeIndicator(c):
				cols.indicator = j
			case cols.amount < 0 && looksLikeAmount(c):
				cols.amount = j
			}
		}
		if cols.date >= 0 && cols.desc >= 0 && cols.amount >= 0 {
			return cols, true
		}
	}
	return cardColumns{}, false
}

// looksLikeDateToken matches the first whitespace token against a
// slash-separated numeric date shape.
func looksLikeDateToken(cell string) bool {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return false
	}
	parts := strings.Split(fields[0], "/")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts {
		if p == "" || !allDigits(p) {
			return false
		}
	}
	return true
}

func looksLikeDescription(cell string) bool {
	letters := 0
	for _, r := range cell {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 6
}

func looksLikeAmount(cell string) bool {
	_, ok := parseSignedAmount(cell)
	return ok
}

func looksLikeIndicator(cell string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	return c == "cr" || c == "dr"
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
