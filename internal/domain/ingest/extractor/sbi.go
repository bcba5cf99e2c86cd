package extractor

import (
	"log/slog"
	"strings"
	"time"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// sbiExtractor parses SBI statement CSVs. These files open with several
// free-text header lines (account number, branch, statement period); the
// real column row is the first one mentioning "Txn Date". Dates are
// dd-Mon-yy and exactly one of the debit/credit cells is filled per row,
// debit taking precedence when both carry a value.
type sbiExtractor struct {
	logger *slog.Logger
}

func (e *sbiExtractor) Parse(grid *tabular.Grid) []ParsedRecord {
	headerRow := FindHeaderRow(grid, grid.RowCount(), cellMarker("txn date"))
	if headerRow < 0 {
		e.logger.Warn("transaction header line not found, nothing extracted")
		return nil
	}

	table, err := tabular.NewTable(grid, headerRow)
	if err != nil {
		return nil
	}

	dateCol := exactColumn(table.Columns(), "Txn Date")
	descCol := exactColumn(table.Columns(), "Description")
	debitCol := FindColumn(table.Columns(), "debit")
	creditCol := FindColumn(table.Columns(), "credit")
	if dateCol < 0 || descCol < 0 || debitCol < 0 || creditCol < 0 {
		e.logger.Warn("statement columns not recognized, nothing extracted",
			slog.Any("columns", table.Columns()))
		return nil
	}

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
		date, err := time.Parse("2-Jan-06", strings.TrimSpace(dateRaw))
		if err != nil {
			continue
		}

		amount := 0.0
		direction := DirectionDebit
		if raw, ok := table.Cell(i, debitCol); ok {
			if v, parsed := parseSignedAmount(raw); parsed && v != 0 {
				amount = abs(v)
				direction = DirectionDebit
			}
		}
		if amount == 0 {
			if raw, ok := table.Cell(i, creditCol); ok {
				if v, parsed := parseSignedAmount(raw); parsed && v != 0 {
					amount = abs(v)
					direction = DirectionCredit
				}
			}
		}
		if amount <= 0 {
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
