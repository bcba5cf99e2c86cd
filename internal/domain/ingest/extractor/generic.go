package extractor

import (
	"log/slog"
	"strings"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// genericExtractor handles sources without a dedicated layout. The header
// row is discovered by scanning for date-like plus amount-like keywords, and
// column roles come from keyword matching on the header labels.
type genericExtractor struct {
	logger *slog.Logger
}

func (e *genericExtractor) Parse(grid *tabular.Grid) []ParsedRecord {
	headerRow := FindHeaderRow(grid, defaultHeaderScanLimit, statementHeaderMarker)
	if headerRow < 0 {
		headerRow = 0
	}
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

// extractRow applies the shared per-row policy: skip on missing or
// unparseable date/description, resolve the amount from debit/credit columns
// first and a single amount column second, and drop records whose resolved
// amount is not positive.
func extractRow(table *tabular.Table, row int, roles columnRoles) (ParsedRecord, bool) {
	dateRaw, ok := table.Cell(row, roles.date)
	if !ok {
		return ParsedRecord{}, false
	}
	descRaw, ok := table.Cell(row, roles.desc)
	if !ok {
		return ParsedRecord{}, false
	}

	dateToken, clock := splitDateTime(dateRaw)
	date, ok := parseDayFirstDate(dateToken)
	if !ok {
		return ParsedRecord{}, false
	}

	amount, direction, ok := resolveAmount(table, row, roles)
	if !ok {
		return ParsedRecord{}, false
	}

	return ParsedRecord{
		Date:        date,
		Time:        clock,
		Description: strings.TrimSpace(descRaw),
		Amount:      amount,
		Direction:   direction,
		Metadata:    captureRow(table, row),
	}, true
}

func resolveAmount(table *tabular.Table, row int, roles columnRoles) (float64, Direction, bool) {
	if roles.debit >= 0 || roles.credit >= 0 {
		debitRaw, debitOK := cellAt(table, row, roles.debit)
		creditRaw, creditOK := cellAt(table, row, roles.credit)
		return resolveDebitCredit(debitRaw, debitOK, creditRaw, creditOK)
	}
	if roles.amount >= 0 {
		amountRaw, ok := table.Cell(row, roles.amount)
		if !ok {
			return 0, DirectionDebit, false
		}
		indicatorRaw, hasIndicator := cellAt(table, row, roles.indicator)
		return resolveSingleAmount(amountRaw, indicatorRaw, hasIndicator)
	}
	return 0, DirectionDebit, false
}

func cellAt(table *tabular.Table, row, col int) (string, bool) {
	if col < 0 {
		return "", false
	}
	return table.Cell(row, col)
}
