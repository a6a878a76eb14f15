package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	enrollmentactivities "github.com/Apurer/lecturer-recruitment/internal/platform/temporal/activities/enrollment"
)

// RunTrainingReminderSequence waits until sendAt and then executes the reminder activity.
func RunTrainingReminderSequence(ctx workflow.Context, cmd domain.SendTrainingReminder, sendAt time.Time) (*types.ReminderResult, error) {
	logger := workflow.GetLogger(ctx)
	enrollmentID := cmd.EnrollmentID.String()

	if wait := sendAt.Sub(workflow.Now(ctx)); wait > 0 {
		logger.Info("training reminder sequence sleeping", "enrollmentId", enrollmentID, "wait", wait)
		if err := workflow.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{enrollmentactivities.ErrTypeReminderRejected},
		},
	}
	var result types.ReminderResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), enrollmentactivities.SendTrainingReminderActivityName, cmd).Get(ctx, &result)
	if err != nil {
		logger.Error("training reminder sequence failed", "enrollmentId", enrollmentID, "error", err)
		return nil, err
	}
	logger.Info("training reminder sequence completed", "enrollmentId", enrollmentID, "sent", result.Sent)
	return &result, nil
}
