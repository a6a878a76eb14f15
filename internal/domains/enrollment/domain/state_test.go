package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fullHistory(t *testing.T) []DomainEvent {
	t.Helper()
	t1 := testTraining(1, 24*time.Hour)
	t2 := testTraining(2, 72*time.Hour)
	e, history := submittedEnrollment(t, t1, t2)
	history = acceptTraining(t, e, t1, history)
	require.NoError(t, e.RecordRefusedTrainingInvitation(RecordRefusedTrainingInvitation{
		EnrollmentID: testID, Channel: ChannelIncomingSMS, AdditionalNotes: "changed plans",
	}, coordinator, []Training{t1, t2}, testNow.Add(time.Hour)))
	history = commit(e, history)
	resume := DateOf(testNow).AddDays(14)
	require.NoError(t, e.RecordResignation(RecordResignation{
		EnrollmentID: testID, Channel: ChannelIncomingPhone, ResignationType: ResignationTypeTemporary, ResumeDate: &resume,
	}, coordinator, testNow.Add(2*time.Hour)))
	return commit(e, history)
}

func TestProject_IsDeterministic(t *testing.T) {
	history := fullHistory(t)

	for n := 0; n <= len(history); n++ {
		require.Equal(t, Project(history[:n]), Project(history[:n]))
	}
}

func TestEvolve_DoesNotMutateInput(t *testing.T) {
	history := fullHistory(t)
	before := Project(history[:2])
	snapshot := before.Clone()

	_ = Evolve(before, history[2])

	require.Equal(t, snapshot, before)
	require.NotNil(t, before.SelectedTrainingID)
}

func TestRehydrate_MatchesCommittedState(t *testing.T) {
	t1 := testTraining(1, 24*time.Hour)
	t2 := testTraining(2, 72*time.Hour)
	e, history := submittedEnrollment(t, t1, t2)
	history = acceptTraining(t, e, t1, history)

	replayed, err := Rehydrate(testID, history)
	require.NoError(t, err)
	require.Equal(t, e.State(), replayed.State())
	require.Equal(t, Project(history), replayed.State())
}

func TestApplyEvents_RejectsGapsAndForeignEvents(t *testing.T) {
	history := fullHistory(t)

	_, err := Rehydrate(testID, []DomainEvent{history[0], history[2]})
	require.ErrorIs(t, err, ErrEventOutOfOrder)

	_, err = Rehydrate(NewEnrollmentID(), history)
	require.ErrorIs(t, err, ErrContractViolation)
}

func TestRefusal_MarksEveryPreferredTraining(t *testing.T) {
	state := Project(fullHistory(t))

	for _, id := range []TrainingID{1, 2} {
		resp, ok := state.LatestResponse(id)
		require.True(t, ok)
		require.Equal(t, ResponseRefused, resp)
	}
	require.Nil(t, state.SelectedTrainingID)
	require.Len(t, state.AdditionalNotes, 1)
	require.Equal(t, uint64(3), state.AdditionalNotes[0].Sequence)
}

func TestEvolve_NilPayloadOnlyAdvancesVersion(t *testing.T) {
	history := fullHistory(t)
	state := Project(history)

	next := Evolve(state, DomainEvent{AggregateID: testID, Sequence: state.Version + 1, Timestamp: testNow})

	require.Equal(t, state.Version+1, next.Version)
	next.Version = state.Version
	require.Equal(t, state, next)
}
