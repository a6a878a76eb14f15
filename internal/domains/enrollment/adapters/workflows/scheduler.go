package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	reminderworkflows "github.com/Apurer/lecturer-recruitment/internal/platform/temporal/workflows/enrollment"
)

var (
	_ ports.Scheduler = (*TemporalScheduler)(nil)
	_ ports.Scheduler = (*InlineScheduler)(nil)
)

// TemporalScheduler starts one durable reminder workflow per enrollment and training.
type TemporalScheduler struct {
	client    client.Client
	taskQueue string
}

// NewTemporalScheduler wires a Temporal client into the scheduler.
func NewTemporalScheduler(c client.Client) *TemporalScheduler {
	return &TemporalScheduler{client: c, taskQueue: reminderworkflows.TrainingReminderTaskQueue}
}

// ScheduleTrainingReminder starts the reminder workflow; a reminder already pending for the
// same enrollment and training is kept.
func (s *TemporalScheduler) ScheduleTrainingReminder(ctx context.Context, at time.Time, cmd domain.SendTrainingReminder) error {
	if s == nil || s.client == nil {
		return errors.New("temporal scheduler not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                       ReminderWorkflowID(cmd),
		TaskQueue:                s.taskQueue,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
	}
	_, err := s.client.ExecuteWorkflow(ctx, options, reminderworkflows.TrainingReminderWorkflowName, reminderworkflows.TrainingReminderWorkflowInput{
		Command: cmd,
		SendAt:  at,
		TraceID: workflowTraceID(ctx),
	})
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return nil
	}
	return err
}

// ReminderWorkflowID is deterministic so retries of an acceptance do not duplicate reminders.
func ReminderWorkflowID(cmd domain.SendTrainingReminder) string {
	return fmt.Sprintf("training-reminder-%s-%d", cmd.EnrollmentID, int64(cmd.TrainingID))
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// ReminderSender delivers a due reminder.
type ReminderSender interface {
	SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error)
}

// InlineScheduler keeps reminders in process timers. Pending reminders are lost on restart,
// which makes it a development and test fallback only.
type InlineScheduler struct {
	mu      sync.Mutex
	sender  ReminderSender
	clock   ports.Clock
	logger  *slog.Logger
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewInlineScheduler builds a scheduler; call Attach before the first reminder is due.
func NewInlineScheduler(clock ports.Clock, logger *slog.Logger) *InlineScheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &InlineScheduler{clock: clock, logger: logger, timers: map[string]*time.Timer{}}
}

// Attach sets the service that sends reminders. It breaks the construction cycle with the service.
func (s *InlineScheduler) Attach(sender ReminderSender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

func (s *InlineScheduler) ScheduleTrainingReminder(_ context.Context, at time.Time, cmd domain.SendTrainingReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return errors.New("inline scheduler stopped")
	}
	id := ReminderWorkflowID(cmd)
	if _, pending := s.timers[id]; pending {
		return nil
	}
	delay := at.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	s.wg.Add(1)
	s.timers[id] = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.fire(id, cmd)
	})
	return nil
}

// Pending reports how many reminders are waiting.
func (s *InlineScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels pending reminders and waits for running ones.
func (s *InlineScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, timer := range s.timers {
		if timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *InlineScheduler) fire(id string, cmd domain.SendTrainingReminder) {
	s.mu.Lock()
	delete(s.timers, id)
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		s.logger.Warn("training reminder dropped, no sender attached", slog.String("enrollment.id", cmd.EnrollmentID.String()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	result, err := sender.SendTrainingReminder(ctx, cmd)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "training reminder not sent",
			slog.String("enrollment.id", cmd.EnrollmentID.String()),
			slog.String("training.id", cmd.TrainingID.String()),
			slog.String("error", err.Error()))
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "training reminder processed",
		slog.String("enrollment.id", cmd.EnrollmentID.String()),
		slog.Bool("sent", result.Sent))
}
