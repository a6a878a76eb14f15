package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Apurer/lecturer-recruitment/internal/app/bootstrap"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/http/handlers"
	enrollmentobs "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/observability"
	enrollmentworkflows "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/workflows"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
	platformclock "github.com/Apurer/lecturer-recruitment/internal/platform/clock"
	"github.com/Apurer/lecturer-recruitment/internal/platform/migrations"
	platformobservability "github.com/Apurer/lecturer-recruitment/internal/platform/observability"
	platformpostgres "github.com/Apurer/lecturer-recruitment/internal/platform/postgres"
)

const serviceName = "lecturer-recruitment-api"

// Run boots the enrollment HTTP API and the projection loop until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	clock, err := platformclock.LoadSystem(cfg.TimeZone)
	if err != nil {
		return err
	}
	db, cleanupDB := OpenDatabase(ctx, cfg, logger)
	defer cleanupDB()
	stores := bootstrap.NewStores(db)
	seeded, err := stores.SeedCatalog(ctx, cfg.CatalogSeedFile)
	if err != nil {
		return err
	}
	if seeded > 0 {
		logger.Info("catalog seeded", slog.Int("campaigns", seeded), slog.String("file", cfg.CatalogSeedFile))
	}

	projector := readmodel.NewProjector(
		stores.ReadModels, stores.Events, stores.Trainings, stores.Campaigns,
		readmodel.WithLogger(logger),
		readmodel.WithMeter(instruments.Meter("internal.enrollment.readmodel")),
		readmodel.WithClock(clock.Now),
	)
	runner := readmodel.NewRunner(projector, stores.Events, stores.ReadModels,
		readmodel.WithPollInterval(cfg.ProjectionPollInterval),
		readmodel.WithRunnerLogger(logger),
	)
	queries := readmodel.NewQueries(stores.ReadModels, stores.Campaigns, clock)

	mailer, err := bootstrap.NewMailer(cfg.MailRelay(), logger)
	if err != nil {
		return fmt.Errorf("failed to configure mail: %w", err)
	}

	var scheduler ports.Scheduler
	inline := enrollmentworkflows.NewInlineScheduler(clock, logger)
	defer inline.Stop()
	if temporalClient, err := ConnectTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, scheduling reminders in-process", slog.String("error", err.Error()))
		scheduler = inline
	} else {
		defer temporalClient.Close()
		scheduler = enrollmentworkflows.NewTemporalScheduler(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	core := application.NewService(
		application.Dependencies{
			Events:    stores.Events,
			Trainings: stores.Trainings,
			Campaigns: stores.Campaigns,
			Clock:     clock,
			Queries:   queries,
		},
		application.WithMailer(mailer),
		application.WithScheduler(scheduler),
		application.WithIdempotencyStore(stores.Idempotency),
		application.WithRetryLimit(cfg.CommandRetryLimit),
		application.WithReminderLead(cfg.ReminderLead()),
		application.WithCommitHook(runner.Notify),
		application.WithLogger(logger),
	)
	service := enrollmentobs.New(
		core,
		enrollmentobs.WithLogger(logger),
		enrollmentobs.WithTracer(instruments.Tracer("internal.enrollment.application")),
		enrollmentobs.WithMeter(instruments.Meter("internal.enrollment.application")),
	)
	inline.Attach(service)

	router := handlers.NewRouter(serviceName, handlers.NewEnrollmentAPI(service))
	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("enrollment API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		return bootstrap.PurgeIdempotencyKeys(gctx, stores.Idempotency, cfg.IdempotencyRetention, cfg.IdempotencyPurgeEvery, clock.Now, logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("enrollment API exited", slog.String("error", err.Error()))
		return err
	}
	logger.Info("enrollment API stopped")
	return nil
}

// OpenDatabase connects and migrates PostgreSQL. A nil DB means the caller should use in-memory stores.
func OpenDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory stores")
		return nil, func() {}
	}
	settings, err := platformpostgres.SettingsFromEnv()
	if err != nil {
		logger.Warn("invalid postgres settings, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	settings.DSN = cfg.PostgresDSN
	db, err := platformpostgres.Connect(ctx, settings)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate postgres schema, falling back to memory", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return nil, func() {}
	}
	logger.Info("enrollment stores configured with postgres")
	return db, func() { _ = sqlDB.Close() }
}

// ConnectTemporal dials Temporal with tracing and structured logging.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
