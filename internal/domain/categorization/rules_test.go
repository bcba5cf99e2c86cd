package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRules(t *testing.T) {
	t.Run("contains match is case insensitive", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: "ZOMATO", MatchType: MatchContains, CategoryID: "cat-food", Priority: 10},
		}
		result, ok := EvaluateRules(rules, "zomato food order")
		require.True(t, ok)
		assert.Equal(t, "cat-food", *result.CategoryID)
		assert.Equal(t, SourceRule, result.Source)
		assert.InDelta(t, 1.0, *result.Confidence, 1e-9)
	})

	t.Run("higher priority evaluated first", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: "uber", MatchType: MatchContains, CategoryID: "cat-transport", Priority: 1},
			{Pattern: "uber eats", MatchType: MatchContains, CategoryID: "cat-food", Priority: 20},
		}
		result, ok := EvaluateRules(rules, "UBER EATS ORDER 42")
		require.True(t, ok)
		assert.Equal(t, "cat-food", *result.CategoryID)
	})

	t.Run("priority ties keep store order", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: "store", MatchType: MatchContains, CategoryID: "cat-first", Priority: 5},
			{Pattern: "store", MatchType: MatchContains, CategoryID: "cat-second", Priority: 5},
		}
		result, ok := EvaluateRules(rules, "BOOK STORE")
		require.True(t, ok)
		assert.Equal(t, "cat-first", *result.CategoryID)
	})

	t.Run("starts with", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: "upi-", MatchType: MatchStartsWith, CategoryID: "cat-upi", Priority: 1},
		}
		_, ok := EvaluateRules(rules, "NEFT UPI-SETTLEMENT")
		assert.False(t, ok)
		result, ok := EvaluateRules(rules, "UPI-GROCERY")
		require.True(t, ok)
		assert.Equal(t, "cat-upi", *result.CategoryID)
	})

	t.Run("ends with", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: "emi", MatchType: MatchEndsWith, CategoryID: "cat-loan", Priority: 1},
		}
		result, ok := EvaluateRules(rules, "HOME LOAN EMI")
		require.True(t, ok)
		assert.Equal(t, "cat-loan", *result.CategoryID)
	})

	t.Run("regex match", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: `^pos \d+`, MatchType: MatchRegex, CategoryID: "cat-pos", Priority: 1},
		}
		result, ok := EvaluateRules(rules, "POS 443211 SUPERMARKET")
		require.True(t, ok)
		assert.Equal(t, "cat-pos", *result.CategoryID)
	})

	t.Run("malformed regex skipped", func(t *testing.T) {
		rules := []CategoryRule{
			{Pattern: `([`, MatchType: MatchRegex, CategoryID: "cat-bad", Priority: 10},
			{Pattern: "market", MatchType: MatchContains, CategoryID: "cat-grocery", Priority: 1},
		}
		result, ok := EvaluateRules(rules, "SUPERMARKET")
		require.True(t, ok)
		assert.Equal(t, "cat-grocery", *result.CategoryID)
	})

	t.Run("no rules", func(t *testing.T) {
		_, ok := EvaluateRules(nil, "ANYTHING")
		assert.False(t, ok)
	})
}
