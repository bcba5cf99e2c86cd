// Package metrics exposes Prometheus counters for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsImported counts transactions persisted per data source.
	RowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Transactions successfully imported, by data source.",
	}, []string{"data_source"})

	// DuplicatesSkipped counts rows dropped by the duplicate checker.
	DuplicatesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_duplicates_total",
		Help: "Rows skipped as exact duplicates, by data source.",
	}, []string{"data_source"})

	// BatchesFinished counts import batches by terminal status.
	BatchesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_batches_total",
		Help: "Import batches completed, by terminal status.",
	}, []string{"status"})

	// LLMCalls counts inference-endpoint calls by outcome.
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "categorization_llm_calls_total",
		Help: "External inference calls, by outcome (success, unmatched, unparsable, error).",
	}, []string{"outcome"})
)
