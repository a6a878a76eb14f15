package enrollment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

type senderFunc func(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error)

func (f senderFunc) SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error) {
	return f(ctx, cmd)
}

func runActivity(t *testing.T, sender ReminderSender) (*types.ReminderResult, error) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	activities := NewActivities(sender)
	env.RegisterActivity(activities.SendTrainingReminder)

	cmd := domain.SendTrainingReminder{EnrollmentID: domain.NewEnrollmentID(), TrainingID: 12}
	val, err := env.ExecuteActivity(activities.SendTrainingReminder, cmd)
	if err != nil {
		return nil, err
	}
	var result types.ReminderResult
	require.NoError(t, val.Get(&result))
	return &result, nil
}

func TestSendTrainingReminderReturnsResult(t *testing.T) {
	result, err := runActivity(t, senderFunc(func(_ context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error) {
		return &types.ReminderResult{EnrollmentID: cmd.EnrollmentID, TrainingID: cmd.TrainingID, Sent: true}, nil
	}))
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Equal(t, domain.TrainingID(12), result.TrainingID)
}

func TestSendTrainingReminderMarksRuleViolationsNonRetryable(t *testing.T) {
	_, err := runActivity(t, senderFunc(func(context.Context, domain.SendTrainingReminder) (*types.ReminderResult, error) {
		return nil, &domain.Error{Kind: domain.KindDomain, Code: "CandidateResigned", Message: "candidate resigned"}
	}))
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, ErrTypeReminderRejected, appErr.Type())
}

func TestSendTrainingReminderKeepsInfrastructureErrorsRetryable(t *testing.T) {
	_, err := runActivity(t, senderFunc(func(context.Context, domain.SendTrainingReminder) (*types.ReminderResult, error) {
		return nil, errors.New("smtp: connection reset")
	}))
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		assert.False(t, appErr.NonRetryable())
	}
}
