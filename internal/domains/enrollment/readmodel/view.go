package readmodel

import (
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// EnrollmentView is a read model evaluated at one instant.
type EnrollmentView struct {
	ID                       domain.EnrollmentID
	FullName                 string
	Email                    string
	PhoneNumber              string
	AboutMe                  string
	Region                   string
	PreferredLecturingCities []string
	PreferredTrainings       []TrainingSummary
	SelectedTraining         *TrainingSummary
	Campaign                 *CampaignSummary
	SubmittedAt              time.Time
	HasSignedUpForTraining   bool
	HasLecturerRights        bool
	HasResignedPermanently   bool
	HasResignedTemporarily   bool
	ResumeDate               *domain.Date
	IsCurrentSubmission      bool
	IsOldSubmission          bool
	AdditionalNotes          []domain.Note
	LastSequence             uint64
}

// HasResigned reports an effective resignation at the evaluation instant.
func (v EnrollmentView) HasResigned() bool {
	return v.HasResignedPermanently || v.HasResignedTemporarily
}

// LatestCampaign picks the campaign with the latest start among those already started at asOf.
func LatestCampaign(campaigns []domain.Campaign, asOf time.Time) *domain.Campaign {
	var latest *domain.Campaign
	for i := range campaigns {
		c := campaigns[i]
		if c.StartAt.After(asOf) {
			continue
		}
		if latest == nil || c.StartAt.After(latest.StartAt) {
			latest = &c
		}
	}
	return latest
}

// Evaluate computes the time-relative flags of m as seen at asOf. Nothing here is stored.
func Evaluate(m EnrollmentReadModel, asOf time.Time, loc *time.Location, latest *domain.Campaign) EnrollmentView {
	s := m.State
	resignation := s.EffectiveResignation(asOf, loc)
	current := latest != nil && latest.ID == s.CampaignID

	return EnrollmentView{
		ID:                       m.ID,
		FullName:                 s.FullName,
		Email:                    s.Email,
		PhoneNumber:              s.PhoneNumber,
		AboutMe:                  s.AboutMe,
		Region:                   s.Region,
		PreferredLecturingCities: append([]string(nil), s.PreferredLecturingCities...),
		PreferredTrainings:       append([]TrainingSummary(nil), m.PreferredTrainings...),
		SelectedTraining:         m.SelectedTraining(),
		Campaign:                 m.Campaign,
		SubmittedAt:              s.SubmittedAt,
		HasSignedUpForTraining:   s.HasSignedUpForTraining(),
		HasLecturerRights:        s.HasLecturerRights,
		HasResignedPermanently:   resignation.Type == domain.ResignationTypePermanent,
		HasResignedTemporarily:   resignation.Type == domain.ResignationTypeTemporary,
		ResumeDate:               resignation.ResumeDate,
		IsCurrentSubmission:      current,
		IsOldSubmission:          !current,
		AdditionalNotes:          append([]domain.Note(nil), s.AdditionalNotes...),
		LastSequence:             m.LastSequence(),
	}
}
