package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAcceptedTrainingInvitation_RequiresCandidate(t *testing.T) {
	t1 := testTraining(1, 48*time.Hour)

	err := NewEnrollment(testID).RecordAcceptedTrainingInvitation(RecordAcceptedTrainingInvitation{
		EnrollmentID:       testID,
		Channel:            ChannelOutgoingPhone,
		SelectedTrainingID: 1,
	}, coordinator, []Training{t1}, testNow)

	requireDomainError(t, err, ErrCandidateNotFound)
}

func TestRecordAcceptedTrainingInvitation_Validation(t *testing.T) {
	t1 := testTraining(1, 48*time.Hour)
	e, _ := submittedEnrollment(t, t1)

	err := e.RecordAcceptedTrainingInvitation(RecordAcceptedTrainingInvitation{
		EnrollmentID:       testID,
		SelectedTrainingID: 9,
	}, coordinator, []Training{t1}, testNow)

	require.ErrorIs(t, err, ErrValidationFailed)
	domainErr, _ := AsError(err)
	require.Len(t, domainErr.Fields, 2)
	require.Empty(t, e.Uncommitted())
}

func TestRecordAcceptedTrainingInvitation_TrainingChecks(t *testing.T) {
	t1 := testTraining(1, 48*time.Hour)
	e, _ := submittedEnrollment(t, t1)
	cmd := RecordAcceptedTrainingInvitation{EnrollmentID: testID, Channel: ChannelIncomingEmail, SelectedTrainingID: 1}

	requireDomainError(t, e.RecordAcceptedTrainingInvitation(cmd, coordinator, nil, testNow), ErrTrainingNotFound)
	requireDomainError(t, e.RecordAcceptedTrainingInvitation(cmd, coordinator, []Training{t1}, t1.StartAt), ErrTrainingTimeAlreadyPassed)
	require.Empty(t, e.Uncommitted())
	require.False(t, e.State().HasSignedUpForTraining())
}

func TestInvitation_AcceptRefuseAccept(t *testing.T) {
	t1 := testTraining(1, 48*time.Hour)
	e, history := submittedEnrollment(t, t1)
	available := []Training{t1}
	accept := RecordAcceptedTrainingInvitation{EnrollmentID: testID, Channel: ChannelOutgoingPhone, SelectedTrainingID: 1}

	require.NoError(t, e.RecordAcceptedTrainingInvitation(accept, coordinator, available, testNow))
	history = commit(e, history)
	require.True(t, e.State().HasSignedUpForTraining())

	require.NoError(t, e.RecordRefusedTrainingInvitation(RecordRefusedTrainingInvitation{
		EnrollmentID: testID, Channel: ChannelIncomingPhone, RefusalReason: "busy",
	}, coordinator, available, testNow.Add(time.Hour)))
	history = commit(e, history)
	require.False(t, e.State().HasSignedUpForTraining())
	resp, ok := e.State().LatestResponse(1)
	require.True(t, ok)
	require.Equal(t, ResponseRefused, resp)

	require.NoError(t, e.RecordAcceptedTrainingInvitation(accept, coordinator, available, testNow.Add(2*time.Hour)))
	history = commit(e, history)
	require.True(t, e.State().HasSignedUpForTraining())
	require.Equal(t, TrainingID(1), *e.State().SelectedTrainingID)

	require.False(t, Project(history[:3]).HasSignedUpForTraining())
	require.True(t, Project(history[:4]).HasSignedUpForTraining())
}

func TestRecordRefusedTrainingInvitation_AfterAllTrainingsStarted(t *testing.T) {
	t1 := testTraining(1, 48*time.Hour)
	t2 := testTraining(2, 96*time.Hour)
	available := []Training{t1, t2}
	refuse := RecordRefusedTrainingInvitation{EnrollmentID: testID, Channel: ChannelOutgoingEmail}

	e, _ := submittedEnrollment(t, t1, t2)
	require.NoError(t, e.RecordRefusedTrainingInvitation(refuse, coordinator, available, t1.StartAt.Add(time.Hour)))
	require.Len(t, e.Uncommitted(), 1)

	e, _ = submittedEnrollment(t, t1, t2)
	requireDomainError(t, e.RecordRefusedTrainingInvitation(refuse, coordinator, available, t2.StartAt), ErrRefusalAfterAllTrainingsStarted)

	e, _ = submittedEnrollment(t, t1, t2)
	require.NoError(t, e.RecordAcceptedTrainingInvitation(RecordAcceptedTrainingInvitation{
		EnrollmentID: testID, Channel: ChannelOutgoingPhone, SelectedTrainingID: 1,
	}, coordinator, available, testNow))
	e.MarkCommitted()
	requireDomainError(t, e.RecordRefusedTrainingInvitation(refuse, coordinator, available, t1.StartAt.Add(time.Minute)), ErrRefusalAfterAllTrainingsStarted)
}
