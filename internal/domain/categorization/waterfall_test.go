package categorization

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	rules      []CategoryRule
	categories []Category
	rulesErr   error
	catsErr    error
}

func (s *stubStore) ListActiveRules(_ context.Context, _ uuid.UUID, _ *uuid.UUID) ([]CategoryRule, error) {
	return s.rules, s.rulesErr
}

func (s *stubStore) ListCategories(_ context.Context, _ uuid.UUID) ([]Category, error) {
	return s.categories, s.catsErr
}

type stubInferencer struct {
	result Result
	ok     bool
	called bool
}

func (s *stubInferencer) Categorize(_ context.Context, _ Input, _ []Category) (Result, bool) {
	s.called = true
	return s.result, s.ok
}

func TestWaterfall(t *testing.T) {
	smart := NewSmartMatcher(testCategorizationConfig())
	baseInput := Input{
		UserID:      uuid.New(),
		AccountID:   uuid.New(),
		Description: "UPI-ZOMATO FOOD ORDER",
		Amount:      450,
		Direction:   "DEBIT",
		AccountType: AccountTypeBank,
	}

	t.Run("smart pattern wins over matching rule", func(t *testing.T) {
		store := &stubStore{rules: []CategoryRule{
			{Pattern: "atm", MatchType: MatchContains, CategoryID: "cat-rule", Priority: 100},
		}}
		llm := &stubInferencer{}
		w := NewWaterfall(smart, store, llm, testLogger())

		in := baseInput
		in.Description = "ATM WDL MG ROAD"
		result := w.Categorize(context.Background(), in)

		assert.Equal(t, SourceSmartPattern, result.Source)
		assert.Equal(t, "sys-cash-withdrawal", *result.CategoryID)
		assert.False(t, llm.called)
	})

	t.Run("rule layer wins before inference", func(t *testing.T) {
		store := &stubStore{rules: []CategoryRule{
			{Pattern: "ZOMATO", MatchType: MatchContains, CategoryID: "cat-food", Priority: 10},
		}}
		llm := &stubInferencer{}
		w := NewWaterfall(smart, store, llm, testLogger())

		result := w.Categorize(context.Background(), baseInput)

		assert.Equal(t, SourceRule, result.Source)
		assert.Equal(t, "cat-food", *result.CategoryID)
		assert.False(t, llm.called)
	})

	t.Run("inference fallback", func(t *testing.T) {
		confidence := 0.7
		categoryID := "sys-food"
		store := &stubStore{categories: testCategories()}
		llm := &stubInferencer{
			result: Result{CategoryID: &categoryID, Source: SourceLLM, Confidence: &confidence},
			ok:     true,
		}
		w := NewWaterfall(smart, store, llm, testLogger())

		result := w.Categorize(context.Background(), baseInput)

		require.True(t, llm.called)
		assert.Equal(t, SourceLLM, result.Source)
		assert.Equal(t, "sys-food", *result.CategoryID)
	})

	t.Run("everything empty is uncategorised", func(t *testing.T) {
		store := &stubStore{categories: testCategories()}
		w := NewWaterfall(smart, store, &stubInferencer{}, testLogger())

		result := w.Categorize(context.Background(), baseInput)

		assert.Equal(t, SourceUncategorised, result.Source)
		assert.Nil(t, result.CategoryID)
		assert.Nil(t, result.Confidence)
	})

	t.Run("rule lookup failure degrades to inference", func(t *testing.T) {
		store := &stubStore{rulesErr: errors.New("db down"), categories: testCategories()}
		llm := &stubInferencer{}
		w := NewWaterfall(smart, store, llm, testLogger())

		result := w.Categorize(context.Background(), baseInput)

		assert.True(t, llm.called)
		assert.Equal(t, SourceUncategorised, result.Source)
	})

	t.Run("category lookup failure is uncategorised", func(t *testing.T) {
		store := &stubStore{catsErr: errors.New("db down")}
		llm := &stubInferencer{}
		w := NewWaterfall(smart, store, llm, testLogger())

		result := w.Categorize(context.Background(), baseInput)

		assert.False(t, llm.called)
		assert.Equal(t, SourceUncategorised, result.Source)
	})
}
