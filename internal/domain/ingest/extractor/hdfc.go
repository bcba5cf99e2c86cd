package extractor

import (
	"log/slog"
	"strings"
	"time"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// hdfcHeaderOffsets are the row offsets where HDFC savings-account exports
// place the column header, tried in observed-frequency order before a full
// scan.
var hdfcHeaderOffsets = []int{20, 0, 10, 15}

// hdfcExcelExtractor parses HDFC Bank spreadsheet exports. The header row
// floats under a preamble block of account details, so candidate offsets are
// probed for a row with a date-like label.
type hdfcExcelExtractor struct {
	logger *slog.Logger
}

func (e *hdfcExcelExtractor) Parse(grid *tabular.Grid) []ParsedRecord {
	headerRow := -1
	for _, offset := range hdfcHeaderOffsets {
		if offset >= grid.RowCount() {
			continue
		}
		if FindColumn(grid.Row(offset), "date") >= 0 {
			headerRow = offset
			break
		}
	}
	if headerRow < 0 {
		headerRow = FindHeaderRow(grid, defaultHeaderScanLimit, statementHeaderMarker)
	}
	if headerRow < 0 {
		headerRow = 0
	}
	e.logger.Debug("located statement header", slog.Int("row", headerRow))

	table, err := tabular.NewTable(grid, headerRow)
	if err != nil {
		return nil
	}

	roles := discoverRoles(table.Columns())
	if !roles.required() {
		e.logger.Warn("statement columns not recognized, nothing extracted",
			slog.Any("columns", table.Columns()))
		return nil
	}

	var records []ParsedRecord
	for i := 0; i < table.RowCount(); i++ {
		rec, ok := extractRow(table, i, roles)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// hdfcDelimitedExtractor parses HDFC Bank CSV exports, which carry fixed
// "Date" and "Narration" headers on the first row and dates as dd/mm/yy.
type hdfcDelimitedExtractor struct {
	logger *slog.Logger
}

func (e *hdfcDelimitedExtractor) Parse(grid *tabular.Grid) []ParsedRecord {
	table, err := tabular.NewTable(grid, 0)
	if err != nil {
		return nil
	}

	dateCol := exactColumn(table.Columns(), "Date")
	descCol := exactColumn(table.Columns(), "Narration")
	if dateCol < 0 || descCol < 0 {
		e.logger.Warn("statement columns not recognized, nothing extracted",
			slog.Any("columns", table.Columns()))
		return nil
	}
	debitCol := FindColumn(table.Columns(), debitKeywords...)
	creditCol := FindColumn(table.Columns(), creditKeywords...)

	var records []ParsedRecord
	for i := 0; i < table.RowCount(); i++ {
		dateRaw, ok := table.Cell(i, dateCol)
		if !ok {
			continue
		}
		descRaw, ok := table.Cell(i, descCol)
		if !ok {
			continue
		}
		date, err := time.Parse("2/1/06", strings.TrimSpace(dateRaw))
		if err != nil {
			continue
		}

		debitRaw, debitOK := cellAt(table, i, debitCol)
		creditRaw, creditOK := cellAt(table, i, creditCol)
		amount, direction, ok := resolveDebitCredit(debitRaw, debitOK, creditRaw, creditOK)
		if !ok {
			continue
		}

		records = append(records, ParsedRecord{
			Date:        date,
			Description: strings.TrimSpace(descRaw),
			Amount:      amount,
			Direction:   direction,
			Metadata:    captureRow(table, i),
		})
	}
	return records
}

// exactColumn returns the index of the column whose trimmed label equals
// name, or -1.
func exactColumn(labels []string, name string) int {
	for i, label := range labels {
		if strings.TrimSpace(label) == name {
			return i
		}
	}
	return -1
}
