// Package repository persists imported transactions and their batch
// bookkeeping.
package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/extractor"
)

// AccountType distinguishes bank accounts from credit cards; the smart
// pattern layer keys on it.
type AccountType string

const (
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
)

// Account is the slice of the accounts table the pipeline needs.
type Account struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Type   AccountType
}

// ImportStatus is the lifecycle state of an import batch.
type ImportStatus string

const (
	ImportStatusPending ImportStatus = "PENDING"
	ImportStatusSuccess ImportStatus = "SUCCESS"
	ImportStatusFailed  ImportStatus = "FAILED"
	// ImportStatusPartial is a declared state no current flow assigns; a
	// batch with some failed rows and some successes still ends as SUCCESS.
	ImportStatusPartial ImportStatus = "PARTIAL"
)

// ImportBatch is the per-upload bookkeeping record.
type ImportBatch struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AccountID      uuid.UUID
	DataSource     string
	FileName       string
	Status         ImportStatus
	TotalRows      int
	SuccessCount   int
	DuplicateCount int
	ErrorCount     int
	ErrorLog       *string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// Transaction is the persisted form of one parsed statement row plus its
// categorization outcome. Rows are never mutated by the pipeline after
// insertion.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	BatchID     uuid.UUID
	Date        time.Time
	Time        *string
	Description string
	Amount      float64
	Direction   extractor.Direction
	CategoryID  *string
	Source      string
	Confidence  *float64
	Metadata    *extractor.RawMetadata
	CreatedAt   time.Time
}
