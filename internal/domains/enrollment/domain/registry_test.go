package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_RestoresHistory(t *testing.T) {
	history := fullHistory(t)

	restored := make([]DomainEvent, 0, len(history))
	for _, evt := range history {
		name, data, err := EncodeEvent(evt.Payload)
		require.NoError(t, err)
		payload, err := DecodeEvent(name, data)
		require.NoError(t, err)
		evt.Payload = payload
		restored = append(restored, evt)
	}

	want, got := Project(history), Project(restored)
	require.True(t, want.SubmittedAt.Equal(got.SubmittedAt))
	got.SubmittedAt = want.SubmittedAt
	require.Equal(t, want, got)
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	_, err := DecodeEvent("enrollment.something_new", []byte(`{}`))

	require.ErrorIs(t, err, ErrUnknownEventType)
}

func TestEventNames_CoversEveryVariant(t *testing.T) {
	resume := NewDate(2026, time.May, 1)
	variants := []Event{
		RecruitmentFormSubmitted{},
		CandidateAcceptedTrainingInvitation{},
		CandidateRefusedTrainingInvitation{},
		CandidateAttendedTraining{},
		CandidateObtainedLecturerRights{},
		CandidateWasAbsentFromTraining{},
		CandidateResignedPermanently{},
		CandidateResignedTemporarily{ResumeDate: &resume},
		ContactOccured{},
		EmailSent{},
		EmailSendingFailed{},
	}

	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.EventName())
	}
	require.ElementsMatch(t, EventNames(), names)
}
