package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/finlytics/finlytics-api/internal/domain/categorization"
	ingestservice "github.com/finlytics/finlytics-api/internal/domain/ingest/service"
)

// categorizationAdapter adapts the categorization waterfall to the import
// service's Categorizer interface so the two domains stay decoupled.
type categorizationAdapter struct {
	waterfall *categorization.Waterfall
}

func newCategorizationAdapter(w *categorization.Waterfall) ingestservice.Categorizer {
	return &categorizationAdapter{waterfall: w}
}

// Categorize implements ingestservice.Categorizer
func (a *categorizationAdapter) Categorize(ctx context.Context, userID, accountID uuid.UUID, description string, amount float64, direction, accountType string) ingestservice.CategorizationOutcome {
	result := a.waterfall.Categorize(ctx, categorization.Input{
		UserID:      userID,
		AccountID:   accountID,
		Description: description,
		Amount:      amount,
		Direction:   direction,
		AccountType: accountType,
	})

	return ingestservice.CategorizationOutcome{
		CategoryID: result.CategoryID,
		Source:     string(result.Source),
		Confidence: result.Confidence,
	}
}
