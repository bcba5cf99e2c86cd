// Package service drives one uploaded statement through decode, extraction,
// deduplication and categorization, and keeps the batch bookkeeping.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/extractor"
	"github.com/finlytics/finlytics-api/internal/domain/ingest/repository"
	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
	"github.com/finlytics/finlytics-api/pkg/metrics"
)

// CategorizationOutcome is the categorization result folded into a
// transaction before persistence.
type CategorizationOutcome struct {
	CategoryID *string
	Source     string
	Confidence *float64
}

// Categorizer assigns a category to one parsed row. Implementations never
// fail; an empty outcome means uncategorised.
type Categorizer interface {
	Categorize(ctx context.Context, userID, accountID uuid.UUID, description string, amount float64, direction, accountType string) CategorizationOutcome
}

// ImportSummary is what the caller gets back for one uploaded file.
type ImportSummary struct {
	BatchID        uuid.UUID               `json:"batch_id"`
	TotalRows      int                     `json:"total_rows"`
	SuccessCount   int                     `json:"success_count"`
	DuplicateCount int                     `json:"duplicate_count"`
	ErrorCount     int                     `json:"error_count"`
	Status         repository.ImportStatus `json:"status"`
}

// ImportService is the sole entry point of the ingestion pipeline. Rows are
// processed strictly sequentially; the only network call per row is the
// categorizer's inference fallback.
type ImportService struct {
	repo        repository.IngestRepository
	categorizer Categorizer
	logger      *slog.Logger
}

func NewImportService(repo repository.IngestRepository, categorizer Categorizer, logger *slog.Logger) *ImportService {
	return &ImportService{
		repo:        repo,
		categorizer: categorizer,
		logger:      logger,
	}
}

// ImportStatement runs the whole pipeline for one uploaded file. The batch
// record is persisted in every outcome, including whole-file failures. The
// returned error is non-nil only when the import aborted as a whole; per-row
// failures only show up in the counters.
func (s *ImportService) ImportStatement(ctx context.Context, userID, accountID uuid.UUID, dataSource, fileName string, data []byte) (*ImportSummary, error) {
	batch := &repository.ImportBatch{
		ID:         uuid.New(),
		UserID:     userID,
		AccountID:  accountID,
		DataSource: dataSource,
		FileName:   fileName,
		Status:     repository.ImportStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	account, err := s.repo.GetAccount(ctx, userID, accountID)
	if err != nil {
		return s.failBatch(ctx, batch, err), err
	}

	grid, err := tabular.Decode(data, fileName)
	if err != nil {
		return s.failBatch(ctx, batch, err), err
	}

	class := tabular.ClassifyExtension(fileName)
	records := extractor.ForSource(dataSource, class, s.logger).Parse(grid)
	batch.TotalRows = len(records)

	for _, record := range records {
		duplicate, err := s.repo.ExistsDuplicate(ctx, userID, accountID, record.Date, record.Amount, record.Description)
		if err != nil {
			return s.failBatch(ctx, batch, err), err
		}
		if duplicate {
			batch.DuplicateCount++
			metrics.DuplicatesSkipped.WithLabelValues(dataSource).Inc()
			continue
		}

		txn := s.buildTransaction(batch, record)
		outcome := s.categorizer.Categorize(ctx, userID, accountID,
			record.Description, record.Amount, string(record.Direction), string(account.Type))
		txn.CategoryID = outcome.CategoryID
		txn.Source = outcome.Source
		txn.Confidence = outcome.Confidence

		if err := s.repo.InsertTransaction(ctx, txn); err != nil {
			return s.failBatch(ctx, batch, err), err
		}
		batch.SuccessCount++
		metrics.RowsImported.WithLabelValues(dataSource).Inc()
	}

	if batch.SuccessCount > 0 {
		batch.Status = repository.ImportStatusSuccess
	} else {
		batch.Status = repository.ImportStatusFailed
	}
	s.finishBatch(ctx, batch)

	s.logger.Info("import finished",
		slog.String("batch_id", batch.ID.String()),
		slog.String("data_source", dataSource),
		slog.String("status", string(batch.Status)),
		slog.Int("total_rows", batch.TotalRows),
		slog.Int("success_count", batch.SuccessCount),
		slog.Int("duplicate_count", batch.DuplicateCount),
	)
	return summarize(batch), nil
}

// ListImportHistory returns the user's most recent batches.
func (s *ImportService) ListImportHistory(ctx context.Context, userID uuid.UUID, limit int) ([]repository.ImportBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListImportBatches(ctx, userID, limit)
}

func (s *ImportService) buildTransaction(batch *repository.ImportBatch, record extractor.ParsedRecord) *repository.Transaction {
	txn := &repository.Transaction{
		ID:          uuid.New(),
		UserID:      batch.UserID,
		AccountID:   batch.AccountID,
		BatchID:     batch.ID,
		Date:        record.Date,
		Description: record.Description,
		Amount:      record.Amount,
		Direction:   record.Direction,
		Metadata:    record.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if record.Time != "" {
		t := record.Time
		txn.Time = &t
	}
	return txn
}

// failBatch records a whole-file failure: status FAILED with the error text
// verbatim, counters kept at their last values.
func (s *ImportService) failBatch(ctx context.Context, batch *repository.ImportBatch, cause error) *ImportSummary {
	batch.Status = repository.ImportStatusFailed
	msg := cause.Error()
	batch.ErrorLog = &msg
	s.finishBatch(ctx, batch)

	s.logger.Error("import aborted",
		slog.String("batch_id", batch.ID.String()),
		slog.String("data_source", batch.DataSource),
		slog.Any("error", cause),
	)
	return summarize(batch)
}

func (s *ImportService) finishBatch(ctx context.Context, batch *repository.ImportBatch) {
	now := time.Now().UTC()
	batch.CompletedAt = &now
	metrics.BatchesFinished.WithLabelValues(string(batch.Status)).Inc()

	if err := s.repo.InsertImportBatch(ctx, batch); err != nil {
		s.logger.Error("failed to persist import batch",
			slog.String("batch_id", batch.ID.String()),
			slog.Any("error", err),
		)
	}
}

func summarize(batch *repository.ImportBatch) *ImportSummary {
	return &ImportSummary{
		BatchID:        batch.ID,
		TotalRows:      batch.TotalRows,
		SuccessCount:   batch.SuccessCount,
		DuplicateCount: batch.DuplicateCount,
		ErrorCount:     batch.ErrorCount,
		Status:         batch.Status,
	}
}
