package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/finlytics/finlytics-api/internal/domain/categorization"
	ingesthandler "github.com/finlytics/finlytics-api/internal/domain/ingest/handler"
	ingestrepo "github.com/finlytics/finlytics-api/internal/domain/ingest/repository"
	ingestservice "github.com/finlytics/finlytics-api/internal/domain/ingest/service"
	"github.com/finlytics/finlytics-api/pkg/config"
	"github.com/finlytics/finlytics-api/pkg/cron"
	"github.com/finlytics/finlytics-api/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	IngestRepo         ingestrepo.IngestRepository
	CategorizationRepo categorization.Store

	// Services
	CategorizationCache *categorization.CachingStore
	Waterfall           *categorization.Waterfall
	ImportService       *ingestservice.ImportService
	Scheduler           *cron.Scheduler

	// Handlers
	ImportHandler *ingesthandler.ImportHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database
	d.Logger.Info("database connected")
	return nil
}

func (d *Dependencies) initRepositories() {
	d.IngestRepo = ingestrepo.NewPostgresRepository(d.DB.Pool)
	d.CategorizationRepo = categorization.NewRepositoryPostgres(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices() {
	// Rule and category lookups are cached per user; the scheduler refreshes
	// the cache so rule edits reach running imports.
	d.CategorizationCache = categorization.NewCachingStore(d.CategorizationRepo, d.Logger)

	smart := categorization.NewSmartMatcher(d.Config.Categorization)
	llm := categorization.NewInferenceClient(d.Config.Ollama, d.Logger)
	d.Waterfall = categorization.NewWaterfall(smart, d.CategorizationCache, llm, d.Logger)

	d.ImportService = ingestservice.NewImportService(d.IngestRepo, newCategorizationAdapter(d.Waterfall), d.Logger)

	d.Scheduler = cron.NewScheduler(d.CategorizationCache, d.Config.Categorization.RuleCacheRefreshSpec, d.Logger)

	d.Logger.Info("services initialized")
}

func (d *Dependencies) initHandlers() {
	d.ImportHandler = ingesthandler.NewImportHandler(d.ImportService, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
