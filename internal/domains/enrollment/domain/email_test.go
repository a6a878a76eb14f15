package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanSendTrainingReminder(t *testing.T) {
	t1 := testTraining(1, 72*time.Hour)
	t2 := testTraining(2, 96*time.Hour)
	e, history := submittedEnrollment(t, t1, t2)
	cmd := SendTrainingReminder{EnrollmentID: testID, TrainingID: 1}
	inWindow := t1.StartAt.Add(-2 * time.Hour)

	requireDomainError(t, e.CanSendTrainingReminder(cmd, &t1, DefaultReminderLead, inWindow), ErrCandidateNotInvitedToTraining)

	history = acceptTraining(t, e, t1, history)
	require.NoError(t, e.CanSendTrainingReminder(cmd, &t1, DefaultReminderLead, inWindow))
	require.NoError(t, e.CanSendTrainingReminder(cmd, &t1, DefaultReminderLead, t1.StartAt.Add(-DefaultReminderLead)))
	requireDomainError(t, e.CanSendTrainingReminder(cmd, &t1, DefaultReminderLead, t1.StartAt.Add(-25*time.Hour)), ErrReminderOutsideWindow)
	requireDomainError(t, e.CanSendTrainingReminder(cmd, &t1, DefaultReminderLead, t1.StartAt), ErrReminderOutsideWindow)
	requireDomainError(t, e.CanSendTrainingReminder(cmd, nil, DefaultReminderLead, inWindow), ErrTrainingNotFound)
	require.ErrorIs(t, e.CanSendTrainingReminder(cmd, &t2, DefaultReminderLead, inWindow), ErrContractViolation)

	require.NoError(t, e.RecordResignation(RecordResignation{
		EnrollmentID: testID, Channel: ChannelIncomingEmail, ResignationType: ResignationTypePermanent,
	}, coordinator, testNow))
	commit(e, history)
	requireDomainError(t, e.CanSendTrainingReminder(cmd, &t1, DefaultReminderLead, inWindow), ErrCandidateHasResigned)
	require.Empty(t, e.Uncommitted())
}

func TestRecordEmailOutcome(t *testing.T) {
	requireDomainError(t, NewEnrollment(testID).RecordEmailSent(EmailMessage{}, testNow), ErrCandidateNotFound)

	t1 := testTraining(1, 72*time.Hour)
	e := NewEnrollment(testID)
	require.NoError(t, e.SubmitRecruitmentForm(validForm(1), []Training{t1}, testCampaign(t1), testNow))
	require.NoError(t, e.RecordEmailSendingFailed(EmailMessage{Recipient: "anna@example.com"}, "smtp: connection refused", testNow))

	events := e.Uncommitted()
	require.Equal(t, []string{EventRecruitmentFormSubmitted, EventEmailSendingFailed}, eventNames(events))
	require.Equal(t, uint64(2), events[1].Sequence)
	failed, ok := events[1].Payload.(EmailSendingFailed)
	require.True(t, ok)
	require.Equal(t, "smtp: connection refused", failed.Reason)
}
