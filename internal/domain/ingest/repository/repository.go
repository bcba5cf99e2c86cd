package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finlytics/finlytics-api/pkg/db"
)

// ErrAccountNotFound is returned when the account does not exist or belongs
// to another user.
var ErrAccountNotFound = errors.New("account not found")

// IngestRepository is the persistence surface the import pipeline uses.
type IngestRepository interface {
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*Account, error)
	ExistsDuplicate(ctx context.Context, userID, accountID uuid.UUID, date time.Time, amount float64, description string) (bool, error)
	InsertTransaction(ctx context.Context, txn *Transaction) error
	InsertImportBatch(ctx context.Context, batch *ImportBatch) error
	ListImportBatches(ctx context.Context, userID uuid.UUID, limit int) ([]ImportBatch, error)
}

// PostgresRepository implements IngestRepository on PostgreSQL.
type PostgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

func (r *PostgresRepository) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*Account, error) {
	var account Account
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, account_type
		FROM accounts
		WHERE id = $1 AND user_id = $2`, accountID, userID).
		Scan(&account.ID, &account.UserID, &account.Name, &account.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ExistsDuplicate reports whether a transaction with the exact same date,
// amount and description already exists on the account. No fuzzy matching
// and no time window.
func (r *PostgresRepository) ExistsDuplicate(ctx context.Context, userID, accountID uuid.UUID, date time.Time, amount float64, description string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND account_id = $2
			  AND txn_date = $3 AND amount = $4 AND description = $5
		)`, userID, accountID, date, amount, description).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) InsertTransaction(ctx context.Context, txn *Transaction) error {
	var metadata []byte
	if txn.Metadata != nil {
		var err error
		metadata, err = json.Marshal(txn.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode raw metadata: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (
			id, user_id, account_id, batch_id, txn_date, txn_time,
			description, amount, direction, category_id,
			categorisation_source, confidence_score, raw_metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		txn.ID, txn.UserID, txn.AccountID, txn.BatchID, txn.Date, txn.Time,
		txn.Description, txn.Amount, txn.Direction, txn.CategoryID,
		txn.Source, txn.Confidence, metadata, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// InsertImportBatch writes the batch in its final state. The batch row is
// persisted once, after the row loop finished or aborted.
func (r *PostgresRepository) InsertImportBatch(ctx context.Context, batch *ImportBatch) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO import_batches (
			id, user_id, account_id, data_source, file_name, status,
			total_rows, success_count, duplicate_count, error_count,
			error_log, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		batch.ID, batch.UserID, batch.AccountID, batch.DataSource, batch.FileName,
		batch.Status, batch.TotalRows, batch.SuccessCount, batch.DuplicateCount,
		batch.ErrorCount, batch.ErrorLog, batch.CreatedAt, batch.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert import batch: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListImportBatches(ctx context.Context, userID uuid.UUID, limit int) ([]ImportBatch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, account_id, data_source, file_name, status,
		       total_rows, success_count, duplicate_count, error_count,
		       error_log, created_at, completed_at
		FROM import_batches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	var batches []ImportBatch
	for rows.Next() {
		var b ImportBatch
		if err := rows.Scan(&b.ID, &b.UserID, &b.AccountID, &b.DataSource, &b.FileName,
			&b.Status, &b.TotalRows, &b.SuccessCount, &b.DuplicateCount, &b.ErrorCount,
			&b.ErrorLog, &b.CreatedAt, &b.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import batches: %w", err)
	}
	return batches, nil
}
