package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/repository"
)

type fakeRepo struct {
	account      *repository.Account
	accountErr   error
	transactions []*repository.Transaction
	batches      []*repository.ImportBatch
	insertErr    error
	dupErr       error
}

func (f *fakeRepo) GetAccount(_ context.Context, _, _ uuid.UUID) (*repository.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.account, nil
}

func (f *fakeRepo) ExistsDuplicate(_ context.Context, _, accountID uuid.UUID, date time.Time, amount float64, description string) (bool, error) {
	if f.dupErr != nil {
		return false, f.dupErr
	}
	for _, txn := range f.transactions {
		if txn.AccountID == accountID && txn.Date.Equal(date) &&
			txn.Amount == amount && txn.Description == description {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) InsertTransaction(_ context.Context, txn *repository.Transaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.transactions = append(f.transactions, txn)
	return nil
}

func (f *fakeRepo) InsertImportBatch(_ context.Context, batch *repository.ImportBatch) error {
	copied := *batch
	f.batches = append(f.batches, &copied)
	return nil
}

func (f *fakeRepo) ListImportBatches(_ context.Context, _ uuid.UUID, limit int) ([]repository.ImportBatch, error) {
	out := make([]repository.ImportBatch, 0, len(f.batches))
	for _, b := range f.batches {
		out = append(out, *b)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixedCategorizer struct {
	outcome CategorizationOutcome
}

func (c fixedCategorizer) Categorize(_ context.Context, _, _ uuid.UUID, _ string, _ float64, _, _ string) CategorizationOutcome {
	return c.outcome
}

func uncategorised() fixedCategorizer {
	return fixedCategorizer{outcome: CategorizationOutcome{Source: "UNCATEGORISED"}}
}

func newTestService(repo *fakeRepo, cat Categorizer) *ImportService {
	return NewImportService(repo, cat, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const sampleStatement = `Date,Description,Withdrawal Amt.,Deposit Amt.
02/01/2024,UPI-ZOMATO,450.00,
03/01/2024,SALARY CREDIT,,85000.00
bad row,JUNK,,
`

func bankAccount(userID uuid.UUID) *repository.Account {
	return &repository.Account{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Salary Account",
		Type:   repository.AccountTypeBank,
	}
}

func TestImportStatement(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("successful import", func(t *testing.T) {
		account := bankAccount(userID)
		repo := &fakeRepo{account: account}
		categoryID := "cat-food"
		confidence := 1.0
		svc := newTestService(repo, fixedCategorizer{outcome: CategorizationOutcome{
			CategoryID: &categoryID, Source: "RULE", Confidence: &confidence,
		}})

		summary, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "statement.csv", []byte(sampleStatement))
		require.NoError(t, err)

		assert.Equal(t, 2, summary.TotalRows)
		assert.Equal(t, 2, summary.SuccessCount)
		assert.Equal(t, 0, summary.DuplicateCount)
		assert.Equal(t, repository.ImportStatusSuccess, summary.Status)

		require.Len(t, repo.transactions, 2)
		assert.Equal(t, "cat-food", *repo.transactions[0].CategoryID)
		assert.Equal(t, "RULE", repo.transactions[0].Source)
		assert.Equal(t, summary.BatchID, repo.transactions[0].BatchID)

		require.Len(t, repo.batches, 1)
		assert.Equal(t, repository.ImportStatusSuccess, repo.batches[0].Status)
		assert.NotNil(t, repo.batches[0].CompletedAt)
	})

	t.Run("importing the same file twice deduplicates fully", func(t *testing.T) {
		account := bankAccount(userID)
		repo := &fakeRepo{account: account}
		svc := newTestService(repo, uncategorised())

		first, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "statement.csv", []byte(sampleStatement))
		require.NoError(t, err)
		require.Equal(t, 2, first.SuccessCount)

		second, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "statement.csv", []byte(sampleStatement))
		require.NoError(t, err)

		assert.Equal(t, 2, second.TotalRows)
		assert.Equal(t, 0, second.SuccessCount)
		assert.Equal(t, 2, second.DuplicateCount)
		assert.Equal(t, repository.ImportStatusFailed, second.Status)
		assert.Len(t, repo.transactions, 2)
	})

	t.Run("zero extracted rows is a failed batch", func(t *testing.T) {
		account := bankAccount(userID)
		repo := &fakeRepo{account: account}
		svc := newTestService(repo, uncategorised())

		summary, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "empty.csv",
			[]byte("Foo,Bar\n1,2\n"))
		require.NoError(t, err)

		assert.Equal(t, 0, summary.TotalRows)
		assert.Equal(t, repository.ImportStatusFailed, summary.Status)
	})

	t.Run("account lookup failure aborts with error log", func(t *testing.T) {
		repo := &fakeRepo{accountErr: repository.ErrAccountNotFound}
		svc := newTestService(repo, uncategorised())

		summary, err := svc.ImportStatement(ctx, userID, uuid.New(), "GENERIC_CSV", "statement.csv", []byte(sampleStatement))
		require.ErrorIs(t, err, repository.ErrAccountNotFound)

		assert.Equal(t, repository.ImportStatusFailed, summary.Status)
		require.Len(t, repo.batches, 1)
		require.NotNil(t, repo.batches[0].ErrorLog)
		assert.Equal(t, "account not found", *repo.batches[0].ErrorLog)
	})

	t.Run("undecodable file aborts and persists the batch", func(t *testing.T) {
		account := bankAccount(userID)
		repo := &fakeRepo{account: account}
		svc := newTestService(repo, uncategorised())

		summary, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "statement.csv", nil)
		require.Error(t, err)

		assert.Equal(t, repository.ImportStatusFailed, summary.Status)
		require.Len(t, repo.batches, 1)
		assert.NotNil(t, repo.batches[0].ErrorLog)
	})

	t.Run("persistence failure aborts keeping earlier counts", func(t *testing.T) {
		account := bankAccount(userID)
		repo := &fakeRepo{account: account, insertErr: errors.New("disk full")}
		svc := newTestService(repo, uncategorised())

		summary, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "statement.csv", []byte(sampleStatement))
		require.Error(t, err)

		assert.Equal(t, repository.ImportStatusFailed, summary.Status)
		assert.Equal(t, 0, summary.SuccessCount)
		require.Len(t, repo.batches, 1)
		require.NotNil(t, repo.batches[0].ErrorLog)
		assert.Equal(t, "disk full", *repo.batches[0].ErrorLog)
	})

	t.Run("uncategorised outcome persists with nil category", func(t *testing.T) {
		account := bankAccount(userID)
		repo := &fakeRepo{account: account}
		svc := newTestService(repo, uncategorised())

		_, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "statement.csv", []byte(sampleStatement))
		require.NoError(t, err)

		require.Len(t, repo.transactions, 2)
		for _, txn := range repo.transactions {
			assert.Nil(t, txn.CategoryID)
			assert.Equal(t, "UNCATEGORISED", txn.Source)
			assert.Nil(t, txn.Confidence)
		}
	})
}

func TestListImportHistory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	account := bankAccount(userID)
	repo := &fakeRepo{account: account}
	svc := newTestService(repo, uncategorised())

	for i := 0; i < 3; i++ {
		statement := fmt.Sprintf("Date,Description,Amount\n0%d/01/2024,TXN %d,100.00\n", i+1, i)
		_, err := svc.ImportStatement(ctx, userID, account.ID, "GENERIC_CSV", "s.csv", []byte(statement))
		require.NoError(t, err)
	}

	batches, err := svc.ListImportHistory(ctx, userID, 2)
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	all, err := svc.ListImportHistory(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
