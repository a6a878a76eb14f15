package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/lecturer-recruitment/internal/app/api"
	"github.com/Apurer/lecturer-recruitment/internal/app/bootstrap"
	enrollmentobs "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/observability"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
	platformclock "github.com/Apurer/lecturer-recruitment/internal/platform/clock"
	platformobservability "github.com/Apurer/lecturer-recruitment/internal/platform/observability"
	enrollmentactivities "github.com/Apurer/lecturer-recruitment/internal/platform/temporal/activities/enrollment"
	enrollmentworkflows "github.com/Apurer/lecturer-recruitment/internal/platform/temporal/workflows/enrollment"
)

func main() {
	ctx := context.Background()
	const serviceName = "lecturer-recruitment-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
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
		logger.Error("failed to load time zone", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db, cleanupDB := api.OpenDatabase(ctx, cfg, logger)
	defer cleanupDB()
	stores := bootstrap.NewStores(db)
	if !stores.Durable {
		logger.Warn("worker is using in-memory stores; reminders will not see enrollments written by the API")
	}
	mailer, err := bootstrap.NewMailer(cfg.MailRelay(), logger)
	if err != nil {
		logger.Error("failed to configure mail", slog.String("error", err.Error()))
		os.Exit(1)
	}

	core := application.NewService(
		application.Dependencies{
			Events:    stores.Events,
			Trainings: stores.Trainings,
			Campaigns: stores.Campaigns,
			Clock:     clock,
			Queries:   readmodel.NewQueries(stores.ReadModels, stores.Campaigns, clock),
		},
		application.WithMailer(mailer),
		application.WithRetryLimit(cfg.CommandRetryLimit),
		application.WithLogger(logger),
	)
	service := enrollmentobs.New(
		core,
		enrollmentobs.WithLogger(logger),
		enrollmentobs.WithTracer(instruments.Tracer("internal.enrollment.application")),
		enrollmentobs.WithMeter(instruments.Meter("internal.enrollment.application")),
	)
	reminderActivities := enrollmentactivities.NewActivities(service)

	temporalClient, err := api.ConnectTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, enrollmentworkflows.TrainingReminderTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(enrollmentworkflows.TrainingReminderWorkflow, workflow.RegisterOptions{Name: enrollmentworkflows.TrainingReminderWorkflowName})
	w.RegisterActivityWithOptions(reminderActivities.SendTrainingReminder, activity.RegisterOptions{Name: enrollmentactivities.SendTrainingReminderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", enrollmentworkflows.TrainingReminderTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
