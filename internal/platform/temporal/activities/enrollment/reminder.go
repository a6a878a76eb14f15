package enrollment

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

const (
	// SendTrainingReminderActivityName mails the reminder and records its outcome.
	SendTrainingReminderActivityName = "enrollment.activities.SendTrainingReminder"
	// ErrTypeReminderRejected marks reminders the enrollment refused; they are never retried.
	ErrTypeReminderRejected = "ReminderRejected"
)

// ReminderSender is the slice of the enrollment service the activity needs.
type ReminderSender interface {
	SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error)
}

// Activities groups activities that operate on enrollments.
type Activities struct {
	sender ReminderSender
}

func NewActivities(sender ReminderSender) *Activities {
	return &Activities{sender: sender}
}

// SendTrainingReminder delivers one reminder. Rule violations such as a resignation or a
// changed selection become non-retryable; infrastructure errors are retried.
func (a *Activities) SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error) {
	logger := activity.GetLogger(ctx)
	enrollmentID := cmd.EnrollmentID.String()
	if a == nil || a.sender == nil {
		logger.Error("reminder activity not initialized", "enrollmentId", enrollmentID)
		return nil, errors.New("reminder activity not initialized")
	}
	logger.Info("SendTrainingReminder activity started", "enrollmentId", enrollmentID, "trainingId", int64(cmd.TrainingID))
	result, err := a.sender.SendTrainingReminder(ctx, cmd)
	if err != nil {
		if derr, ok := domain.AsError(err); ok {
			logger.Warn("SendTrainingReminder rejected", "enrollmentId", enrollmentID, "code", derr.Code, "error", err)
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeReminderRejected, err)
		}
		logger.Error("SendTrainingReminder activity failed", "enrollmentId", enrollmentID, "error", err)
		return nil, err
	}
	logger.Info("SendTrainingReminder activity completed", "enrollmentId", enrollmentID, "sent", result.Sent)
	return result, nil
}
