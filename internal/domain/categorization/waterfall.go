package categorization

import (
	"context"
	"log/slog"
)

// Inferencer is the external model layer of the waterfall. Satisfied by
// InferenceClient; tests substitute their own.
type Inferencer interface {
	Categorize(ctx context.Context, in Input, categories []Category) (Result, bool)
}

// Waterfall runs the three categorization layers in fixed order: smart
// patterns, user rules, external inference. The first layer producing a
// result wins. Categorize never returns an error; every layer failure
// degrades to the next layer and finally to UNCATEGORISED.
type Waterfall struct {
	smart  *SmartMatcher
	store  Store
	llm    Inferencer
	logger *slog.Logger
}

func NewWaterfall(smart *SmartMatcher, store Store, llm Inferencer, logger *slog.Logger) *Waterfall {
	return &Waterfall{
		smart:  smart,
		store:  store,
		llm:    llm,
		logger: logger,
	}
}

// Categorize assigns a category to one transaction.
func (w *Waterfall) Categorize(ctx context.Context, in Input) Result {
	if result, ok := w.smart.Match(in); ok {
		return result
	}

	accountID := in.AccountID
	rules, err := w.store.ListActiveRules(ctx, in.UserID, &accountID)
	if err != nil {
		w.logger.Warn("rule lookup failed, skipping rule layer",
			slog.String("user_id", in.UserID.String()),
			slog.Any("error", err))
	} else if result, ok := EvaluateRules(rules, in.Description); ok {
		return result
	}

	categories, err := w.store.ListCategories(ctx, in.UserID)
	if err != nil {
		w.logger.Warn("category lookup failed, skipping inference layer",
			slog.String("user_id", in.UserID.String()),
			slog.Any("error", err))
		return Uncategorised()
	}
	if w.llm != nil {
		if result, ok := w.llm.Categorize(ctx, in, categories); ok {
			return result
		}
	}

	return Uncategorised()
}
