package domain

import (
	"strings"
	"time"
)

// SubmitRecruitmentForm validates a new form against the candidate's chosen trainings and
// their campaign.
func (e *Enrollment) SubmitRecruitmentForm(cmd SubmitRecruitmentForm, candidateTrainings []Training, campaign *Campaign, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}

	var checks fieldChecks
	checks.requireText(cmd.FullName, "fullName")
	checks.requireText(cmd.Email, "email")
	if strings.TrimSpace(cmd.Email) != "" {
		checks.require(strings.Contains(cmd.Email, "@"), "email", "value is not a valid email address")
	}
	checks.requireText(cmd.PhoneNumber, "phoneNumber")
	checks.requireText(cmd.Region, "region")
	checks.require(len(cmd.PreferredLecturingCities) > 0, "preferredLecturingCities", "at least one city is required")
	for _, city := range cmd.PreferredLecturingCities {
		if strings.TrimSpace(city) == "" {
			checks.require(false, "preferredLecturingCities", "city names cannot be empty")
			break
		}
	}
	checks.require(!hasDuplicateStrings(cmd.PreferredLecturingCities), "preferredLecturingCities", "cities must not repeat")
	checks.require(len(cmd.PreferredTrainingIDs) > 0, "preferredTrainingIds", "at least one training is required")
	checks.require(!hasDuplicateTrainings(cmd.PreferredTrainingIDs), "preferredTrainingIds", "trainings must not repeat")
	checks.require(cmd.GdprConsentGiven, "gdprConsentGiven", "consent is required")
	if err := checks.err(); err != nil {
		return err
	}

	selected := make([]Training, 0, len(cmd.PreferredTrainingIDs))
	for _, id := range cmd.PreferredTrainingIDs {
		t, ok := findTraining(candidateTrainings, id)
		if !ok {
			return ErrTrainingNotFound
		}
		selected = append(selected, t)
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}

	if e.state.Submitted || len(e.uncommitted) > 0 {
		return ErrEnrollmentAlreadySubmitted
	}
	for _, t := range selected {
		if t.CampaignID != campaign.ID {
			return ErrPreferredTrainingsMustBelongToSameCampaign
		}
	}
	for _, t := range selected {
		if !t.StartAt.After(now) {
			return ErrPreferredTrainingsMustOccurInFuture
		}
	}
	if !campaign.Contains(now) {
		return ErrSubmissionMustOccurDuringCampaign
	}

	cities := make([]string, 0, len(cmd.PreferredLecturingCities))
	for _, c := range cmd.PreferredLecturingCities {
		cities = append(cities, strings.TrimSpace(c))
	}
	e.raise(now, RecruitmentFormSubmitted{
		FullName:                 strings.TrimSpace(cmd.FullName),
		Email:                    strings.TrimSpace(cmd.Email),
		PhoneNumber:              strings.TrimSpace(cmd.PhoneNumber),
		AboutMe:                  cmd.AboutMe,
		Region:                   strings.TrimSpace(cmd.Region),
		PreferredLecturingCities: cities,
		PreferredTrainingIDs:     append([]TrainingID(nil), cmd.PreferredTrainingIDs...),
		CampaignID:               campaign.ID,
		GdprConsentGiven:         cmd.GdprConsentGiven,
		SubmittedAt:              now,
	})
	return nil
}
