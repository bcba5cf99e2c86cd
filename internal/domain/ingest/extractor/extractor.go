package extractor

import (
	"log/slog"
	"strings"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// Data source identifiers accepted by the import endpoint.
const (
	SourceHDFCBank    = "HDFC_BANK"
	SourceSBIBank     = "SBI_BANK"
	SourceFederalBank = "FEDERAL_BANK"
	SourceHDFCCard    = "HDFC_CC"
	SourceSBICard     = "SBI_CC"
	SourceSCBCard     = "SCB_CC"
	SourceGenericCSV  = "GENERIC_CSV"
)

// Sources lists every supported data source, in display order.
func Sources() []string {
	return []string{
		SourceHDFCBank,
		SourceSBIBank,
		SourceFederalBank,
		SourceHDFCCard,
		SourceSBICard,
		SourceSCBCard,
		SourceGenericCSV,
	}
}

// An Extractor parses one statement layout. Rows that cannot be normalized
// are skipped and logged; Parse never fails the whole grid.
type Extractor interface {
	Parse(grid *tabular.Grid) []ParsedRecord
}

// ForSource picks the extractor for a data source and file class. Sources
// without a dedicated layout fall back to the generic extractor.
func ForSource(source string, class tabular.FileClass, logger *slog.Logger) Extractor {
	switch {
	case source == SourceHDFCBank && class == tabular.ClassSpreadsheet:
		return &hdfcExcelExtractor{logger: logger}
	case source == SourceHDFCBank:
		return &hdfcDelimitedExtractor{logger: logger}
	case strings.HasPrefix(source, "SBI_") && class == tabular.ClassDelimited:
		return &sbiExtractor{logger: logger}
	case source == SourceHDFCCard && class == tabular.ClassSpreadsheet:
		return &hdfcCardExtractor{logger: logger}
	default:
		return &genericExtractor{logger: logger}
	}
}
