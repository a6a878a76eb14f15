package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/Apurer/lecturer-recruitment/internal/app/bootstrap"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
	"github.com/Apurer/lecturer-recruitment/internal/platform/migrations"
	platformobservability "github.com/Apurer/lecturer-recruitment/internal/platform/observability"
	platformpostgres "github.com/Apurer/lecturer-recruitment/internal/platform/postgres"
)

func main() {
	obsSettings, err := platformobservability.SettingsFromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := platformobservability.NewLogger(os.Stdout, obsSettings)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger = logger.With(slog.String("service", "lecturer-recruitment-projection-rebuild"))
	cfg, err := loadSettings()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	code := run(ctx, cfg, logger)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, cfg settings, logger *slog.Logger) int {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		logger.Error("POSTGRES_DSN not set or connection failed; cannot rebuild the enrollment projection")
		return 1
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("failed to migrate schema", slog.String("error", err.Error()))
		return 1
	}

	stores := bootstrap.NewStores(db)
	projector := readmodel.NewProjector(stores.ReadModels, stores.Events, stores.Trainings, stores.Campaigns,
		readmodel.WithLogger(logger),
	)
	runner := readmodel.NewRunner(projector, stores.Events, stores.ReadModels,
		readmodel.WithBatchSize(cfg.BatchSize),
		readmodel.WithRunnerLogger(logger),
	)
	applied, err := runner.Rebuild(ctx)
	if err != nil {
		logger.Error("projection rebuild failed", slog.Int("applied", applied), slog.String("error", err.Error()))
		return 1
	}
	logger.Info("projection rebuild completed", slog.Int("applied", applied))
	return 0
}
