// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finlytics/finlytics-api/internal/domain/categorization"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron        *cron.Cron
	cache       *categorization.CachingStore
	refreshSpec string
	logger      *slog.Logger
}

// NewScheduler creates a new job scheduler. refreshSpec is a standard
// 5-field cron expression.
func NewScheduler(cache *categorization.CachingStore, refreshSpec string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:        c,
		cache:       cache,
		refreshSpec: refreshSpec,
		logger:      logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.refreshSpec, s.refreshCategorizationCache)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("refresh_spec", s.refreshSpec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the cache refresh (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.refreshCategorizationCache()
}

// refreshCategorizationCache reloads cached rules and categories so edits
// made through the management surface reach running imports.
func (s *Scheduler) refreshCategorizationCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Debug("starting categorization cache refresh")
	s.cache.Refresh(ctx)
}
