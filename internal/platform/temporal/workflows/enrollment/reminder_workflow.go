package enrollment

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/platform/temporal/sequences"
)

const (
	// TrainingReminderWorkflowName is the public identifier for registering the workflow.
	TrainingReminderWorkflowName = "enrollment.workflows.TrainingReminder"
	// TrainingReminderTaskQueue is the queue consumed by the worker sending reminders.
	TrainingReminderTaskQueue = "ENROLLMENT_REMINDERS"
)

// TrainingReminderWorkflowInput says which reminder to send and when.
type TrainingReminderWorkflowInput struct {
	Command domain.SendTrainingReminder
	SendAt  time.Time
	TraceID string
}

// TrainingReminderWorkflow sleeps until the reminder is due and then sends it.
func TrainingReminderWorkflow(ctx workflow.Context, input TrainingReminderWorkflowInput) (*types.ReminderResult, error) {
	logger := workflow.GetLogger(ctx)
	enrollmentID := input.Command.EnrollmentID.String()
	logger.Info("TrainingReminderWorkflow started", withTraceID(input.TraceID, "enrollmentId", enrollmentID, "sendAt", input.SendAt)...)
	result, err := sequences.RunTrainingReminderSequence(ctx, input.Command, input.SendAt)
	if err != nil {
		logger.Error("TrainingReminderWorkflow failed", withTraceID(input.TraceID, "enrollmentId", enrollmentID, "error", err)...)
		return nil, err
	}
	logger.Info("TrainingReminderWorkflow completed", withTraceID(input.TraceID, "enrollmentId", enrollmentID, "sent", result.Sent)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
