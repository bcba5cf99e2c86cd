package categorization

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finlytics/finlytics-api/pkg/db"
)

// Store is the read-only lookup surface the waterfall needs. Rules and
// categories are owned and mutated elsewhere; this core only reads them.
type Store interface {
	ListActiveRules(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]CategoryRule, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error)
}

// RepositoryPostgres implements Store on PostgreSQL.
type RepositoryPostgres struct {
	db db.Querier
}

func NewRepositoryPostgres(q db.Querier) *RepositoryPostgres {
	return &RepositoryPostgres{db: q}
}

// ListActiveRules returns the user's active rules ordered by priority
// descending. When accountID is given the result keeps both account-scoped
// and unscoped rules.
func (r *RepositoryPostgres) ListActiveRules(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]CategoryRule, error) {
	query := `
		SELECT id, pattern, match_type, account_id, category_id, priority, is_active
		FROM category_rules
		WHERE user_id = $1 AND is_active = TRUE`
	args := []any{userID}
	if accountID != nil {
		query += ` AND (account_id = $2 OR account_id IS NULL)`
		args = append(args, *accountID)
	}
	query += ` ORDER BY priority DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list category rules: %w", err)
	}
	defer rows.Close()

	var rules []CategoryRule
	for rows.Next() {
		var rule CategoryRule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.MatchType, &rule.AccountID,
			&rule.CategoryID, &rule.Priority, &rule.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan category rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category rules: %w", err)
	}
	return rules, nil
}

// ListCategories returns system categories plus the user's own.
func (r *RepositoryPostgres) ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, type
		FROM categories
		WHERE is_system = TRUE OR user_id = $1
		ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}
