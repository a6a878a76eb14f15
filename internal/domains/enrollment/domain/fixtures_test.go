package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	testLoc     = time.FixedZone("CET", 3600)
	testNow     = time.Date(2026, time.March, 10, 12, 0, 0, 0, testLoc)
	testID      = MustParseEnrollmentID("6f1c2a4e-8d7b-4f3a-9c1e-2b5d7a9e0f11")
	coordinator = UserID(42)
)

func testTraining(id TrainingID, startIn time.Duration) Training {
	start := testNow.Add(startIn)
	return Training{
		ID:            id,
		City:          "Kraków",
		Address:       "Rynek Główny 1",
		StartAt:       start,
		EndAt:         start.Add(4 * time.Hour),
		CoordinatorID: coordinator,
		CampaignID:    7,
	}
}

func testCampaign(trainings ...Training) *Campaign {
	return &Campaign{
		ID:        7,
		Name:      "Spring 2026",
		StartAt:   testNow.AddDate(0, -1, 0),
		EndAt:     testNow.AddDate(0, 2, 0),
		Trainings: trainings,
	}
}

func validForm(ids ...TrainingID) SubmitRecruitmentForm {
	return SubmitRecruitmentForm{
		EnrollmentID:             testID,
		FullName:                 "Anna Kowalska",
		Email:                    "anna@example.com",
		PhoneNumber:              "+48 600 100 200",
		AboutMe:                  "Physics teacher",
		Region:                   "Małopolska",
		PreferredLecturingCities: []string{"Kraków", "Tarnów"},
		PreferredTrainingIDs:     ids,
		GdprConsentGiven:         true,
	}
}

// submittedEnrollment returns a committed aggregate together with its history.
func submittedEnrollment(t *testing.T, trainings ...Training) (*Enrollment, []DomainEvent) {
	t.Helper()
	ids := make([]TrainingID, 0, len(trainings))
	for _, tr := range trainings {
		ids = append(ids, tr.ID)
	}
	e := NewEnrollment(testID)
	require.NoError(t, e.SubmitRecruitmentForm(validForm(ids...), trainings, testCampaign(trainings...), testNow))
	return e, commit(e, nil)
}

func commit(e *Enrollment, history []DomainEvent) []DomainEvent {
	history = append(history, e.Uncommitted()...)
	e.MarkCommitted()
	return history
}

func eventNames(events []DomainEvent) []string {
	names := make([]string, 0, len(events))
	for _, evt := range events {
		names = append(names, evt.Name())
	}
	return names
}

func requireDomainError(t *testing.T, err error, want *Error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, want)
	got, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, want.Code, got.Code)
}
