package categorization

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// CachingStore wraps a Store and keeps per-user rules and categories in
// memory. Imports hit the lookup surface once per row, so without a cache a
// thousand-row statement would issue a thousand identical queries.
//
// Entries are filled on first use and refreshed wholesale by a scheduled
// job; a stale window between rule edits and the next refresh is accepted.
type CachingStore struct {
	store  Store
	logger *slog.Logger

	mu         sync.RWMutex
	rules      map[ruleKey][]CategoryRule
	categories map[uuid.UUID][]Category
}

type ruleKey struct {
	userID    uuid.UUID
	accountID uuid.UUID // uuid.Nil for unscoped lookups
}

func NewCachingStore(store Store, logger *slog.Logger) *CachingStore {
	return &CachingStore{
		store:      store,
		logger:     logger,
		rules:      make(map[ruleKey][]CategoryRule),
		categories: make(map[uuid.UUID][]Category),
	}
}

func (c *CachingStore) ListActiveRules(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]CategoryRule, error) {
	key := ruleKey{userID: userID}
	if accountID != nil {
		key.accountID = *accountID
	}

	c.mu.RLock()
	cached, ok := c.rules[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	rules, err := c.store.ListActiveRules(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rules[key] = rules
	c.mu.Unlock()
	return rules, nil
}

func (c *CachingStore) ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	c.mu.RLock()
	cached, ok := c.categories[userID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	categories, err := c.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.categories[userID] = categories
	c.mu.Unlock()
	return categories, nil
}

// Refresh reloads every cached key from the backing store. Keys whose reload
// fails keep their previous value.
func (c *CachingStore) Refresh(ctx context.Context) {
	c.mu.RLock()
	ruleKeys := make([]ruleKey, 0, len(c.rules))
	for k := range c.rules {
		ruleKeys = append(ruleKeys, k)
	}
	userIDs := make([]uuid.UUID, 0, len(c.categories))
	for id := range c.categories {
		userIDs = append(userIDs, id)
	}
	c.mu.RUnlock()

	for _, key := range ruleKeys {
		var accountID *uuid.UUID
		if key.accountID != uuid.Nil {
			id := key.accountID
			accountID = &id
		}
		rules, err := c.store.ListActiveRules(ctx, key.userID, accountID)
		if err != nil {
			c.logger.Warn("rule cache refresh failed",
				slog.String("user_id", key.userID.String()),
				slog.Any("error", err))
			continue
		}
		c.mu.Lock()
		c.rules[key] = rules
		c.mu.Unlock()
	}

	for _, userID := range userIDs {
		categories, err := c.store.ListCategories(ctx, userID)
		if err != nil {
			c.logger.Warn("category cache refresh failed",
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
			continue
		}
		c.mu.Lock()
		c.categories[userID] = categories
		c.mu.Unlock()
	}

	c.logger.Debug("categorization cache refreshed",
		slog.Int("rule_keys", len(ruleKeys)),
		slog.Int("users", len(userIDs)))
}
