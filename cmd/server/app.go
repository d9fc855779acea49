package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/verdantlabs/flora-api/internal/config"
	"github.com/verdantlabs/flora-api/internal/generation"
	"github.com/verdantlabs/flora-api/internal/images"
	"github.com/verdantlabs/flora-api/internal/platform/gemini"
	"github.com/verdantlabs/flora-api/internal/platform/postgres"
	"github.com/verdantlabs/flora-api/internal/service"
	"github.com/verdantlabs/flora-api/internal/store"
	"github.com/verdantlabs/flora-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	speciesStore store.SpeciesStore
	generator    generation.Generator
	aggregator   *images.Aggregator

	resolutionService *service.ResolutionService

	taskRunner *task.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies (configuration, logger, database) must be
// established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.speciesStore = postgres.NewPostgresSpeciesStore(db, logger)

	var err error
	app.generator, err = gemini.NewGeminiGenerator(
		ctx,
		logger.With("component", "llm_generator"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize detail generator: %w", err)
	}
	logger.Info("Detail generator initialized", "model", cfg.LLM.ModelName)

	app.aggregator = images.NewAggregator(logger, cfg.Images)

	app.taskRunner = task.NewRunner(task.DefaultRunnerConfig(), logger)
	app.taskRunner.Start()

	// Writes run inside their own transaction via the repository adapter.
	speciesRepo := service.NewSpeciesRepositoryAdapter(app.speciesStore, db)

	app.resolutionService, err = service.NewResolutionService(
		logger,
		speciesRepo,
		app.generator,
		app.aggregator,
		app.taskRunner,
		cfg.Webhook,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
