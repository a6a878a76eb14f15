package mapper

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

// RecruitmentForm is the public submission payload.
type RecruitmentForm struct {
	EnrollmentID             string   `json:"enrollmentId,omitempty"`
	FullName                 string   `json:"fullName"`
	Email                    string   `json:"email"`
	PhoneNumber              string   `json:"phoneNumber"`
	AboutMe                  string   `json:"aboutMe,omitempty"`
	Region                   string   `json:"region"`
	PreferredLecturingCities []string `json:"preferredLecturingCities"`
	PreferredTrainingIDs     []int64  `json:"preferredTrainingIds"`
	GdprConsentGiven         bool     `json:"gdprConsentGiven"`
}

// AcceptInvitation records a candidate saying yes to a training.
type AcceptInvitation struct {
	CommunicationChannel string `json:"communicationChannel"`
	SelectedTrainingID   int64  `json:"selectedTrainingId"`
	AdditionalNotes      string `json:"additionalNotes,omitempty"`
}

// RefuseInvitation records a candidate declining.
type RefuseInvitation struct {
	CommunicationChannel string `json:"communicationChannel"`
	RefusalReason        string `json:"refusalReason,omitempty"`
	AdditionalNotes      string `json:"additionalNotes,omitempty"`
}

// TrainingResults is the coordinator's verdict for one training.
type TrainingResults struct {
	TrainingID      int64  `json:"trainingId"`
	Result          string `json:"result"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

// Resignation withdraws the candidate permanently or until resumeDate (YYYY-MM-DD).
type Resignation struct {
	CommunicationChannel string  `json:"communicationChannel"`
	ResignationType      string  `json:"resignationType"`
	ResignationReason    string  `json:"resignationReason,omitempty"`
	ResumeDate           *string `json:"resumeDate,omitempty"`
	AdditionalNotes      string  `json:"additionalNotes,omitempty"`
}

// Contact logs a conversation with the candidate.
type Contact struct {
	CommunicationChannel string `json:"communicationChannel"`
	Content              string `json:"content"`
	AdditionalNotes      string `json:"additionalNotes,omitempty"`
}

// CommandResult acknowledges a committed command.
type CommandResult struct {
	EnrollmentID string   `json:"enrollmentId"`
	Version      uint64   `json:"version"`
	Events       []string `json:"events"`
	Replayed     bool     `json:"replayed,omitempty"`
}

type Training struct {
	ID            int64     `json:"id"`
	City          string    `json:"city,omitempty"`
	Address       string    `json:"address,omitempty"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	CoordinatorID int64     `json:"coordinatorId,omitempty"`
}

type Campaign struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

type Note struct {
	Content    string    `json:"content"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Enrollment is the evaluated projection returned by reads.
type Enrollment struct {
	ID                       string     `json:"id"`
	FullName                 string     `json:"fullName"`
	Email                    string     `json:"email"`
	PhoneNumber              string     `json:"phoneNumber"`
	AboutMe                  string     `json:"aboutMe,omitempty"`
	Region                   string     `json:"region"`
	PreferredLecturingCities []string   `json:"preferredLecturingCities"`
	PreferredTrainings       []Training `json:"preferredTrainings"`
	SelectedTraining         *Training  `json:"selectedTraining"`
	Campaign                 *Campaign  `json:"campaign"`
	SubmittedAt              time.Time  `json:"submittedAt"`
	HasSignedUpForTraining   bool       `json:"hasSignedUpForTraining"`
	HasLecturerRights        bool       `json:"hasLecturerRights"`
	HasResignedPermanently   bool       `json:"hasResignedPermanently"`
	HasResignedTemporarily   bool       `json:"hasResignedTemporarily"`
	ResumeDate               *string    `json:"resumeDate"`
	IsCurrentSubmission      bool       `json:"isCurrentSubmission"`
	IsOldSubmission          bool       `json:"isOldSubmission"`
	AdditionalNotes          []Note     `json:"additionalNotes"`
	Version                  uint64     `json:"version"`
}

// EnrollmentPage is one page of a listing.
type EnrollmentPage struct {
	Items  []Enrollment `json:"items"`
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

// HistoryEvent is one committed event in wire form.
type HistoryEvent struct {
	Sequence  uint64          `json:"sequence"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ToSubmitCommand maps the form; an empty enrollmentId lets the service assign one.
func ToSubmitCommand(form RecruitmentForm) (domain.SubmitRecruitmentForm, error) {
	cmd := domain.SubmitRecruitmentForm{
		FullName:                 form.FullName,
		Email:                    form.Email,
		PhoneNumber:              form.PhoneNumber,
		AboutMe:                  form.AboutMe,
		Region:                   form.Region,
		PreferredLecturingCities: form.PreferredLecturingCities,
		PreferredTrainingIDs:     toTrainingIDs(form.PreferredTrainingIDs),
		GdprConsentGiven:         form.GdprConsentGiven,
	}
	if raw := strings.TrimSpace(form.EnrollmentID); raw != "" {
		id, err := domain.ParseEnrollmentID(raw)
		if err != nil {
			return domain.SubmitRecruitmentForm{}, err
		}
		cmd.EnrollmentID = id
	}
	return cmd, nil
}

func ToAcceptCommand(id domain.EnrollmentID, payload AcceptInvitation) domain.RecordAcceptedTrainingInvitation {
	return domain.RecordAcceptedTrainingInvitation{
		EnrollmentID:       id,
		Channel:            domain.CommunicationChannel(payload.CommunicationChannel),
		SelectedTrainingID: domain.TrainingID(payload.SelectedTrainingID),
		AdditionalNotes:    payload.AdditionalNotes,
	}
}

func ToRefuseCommand(id domain.EnrollmentID, payload RefuseInvitation) domain.RecordRefusedTrainingInvitation {
	return domain.RecordRefusedTrainingInvitation{
		EnrollmentID:    id,
		Channel:         domain.CommunicationChannel(payload.CommunicationChannel),
		RefusalReason:   payload.RefusalReason,
		AdditionalNotes: payload.AdditionalNotes,
	}
}

func ToTrainingResultsCommand(id domain.EnrollmentID, payload TrainingResults) domain.RecordTrainingResults {
	return domain.RecordTrainingResults{
		EnrollmentID:    id,
		TrainingID:      domain.TrainingID(payload.TrainingID),
		Result:          domain.TrainingResult(payload.Result),
		AdditionalNotes: payload.AdditionalNotes,
	}
}

// ToResignationCommand fails only when resumeDate is not a calendar date.
func ToResignationCommand(id domain.EnrollmentID, payload Resignation) (domain.RecordResignation, error) {
	cmd := domain.RecordResignation{
		EnrollmentID:      id,
		Channel:           domain.CommunicationChannel(payload.CommunicationChannel),
		ResignationType:   domain.ResignationType(payload.ResignationType),
		ResignationReason: payload.ResignationReason,
		AdditionalNotes:   payload.AdditionalNotes,
	}
	if payload.ResumeDate != nil && strings.TrimSpace(*payload.ResumeDate) != "" {
		date, err := domain.ParseDate(strings.TrimSpace(*payload.ResumeDate))
		if err != nil {
			return domain.RecordResignation{}, err
		}
		cmd.ResumeDate = &date
	}
	return cmd, nil
}

func ToContactCommand(id domain.EnrollmentID, payload Contact) domain.RecordContact {
	return domain.RecordContact{
		EnrollmentID:    id,
		Channel:         domain.CommunicationChannel(payload.CommunicationChannel),
		Content:         payload.Content,
		AdditionalNotes: payload.AdditionalNotes,
	}
}

func FromCommandResult(result *types.CommandResult) CommandResult {
	if result == nil {
		return CommandResult{}
	}
	return CommandResult{
		EnrollmentID: result.EnrollmentID.String(),
		Version:      result.Version,
		Events:       append([]string{}, result.Events...),
		Replayed:     result.Replayed,
	}
}

func FromView(view readmodel.EnrollmentView) Enrollment {
	out := Enrollment{
		ID:                       view.ID.String(),
		FullName:                 view.FullName,
		Email:                    view.Email,
		PhoneNumber:              view.PhoneNumber,
		AboutMe:                  view.AboutMe,
		Region:                   view.Region,
		PreferredLecturingCities: append([]string{}, view.PreferredLecturingCities...),
		PreferredTrainings:       make([]Training, 0, len(view.PreferredTrainings)),
		SubmittedAt:              view.SubmittedAt,
		HasSignedUpForTraining:   view.HasSignedUpForTraining,
		HasLecturerRights:        view.HasLecturerRights,
		HasResignedPermanently:   view.HasResignedPermanently,
		HasResignedTemporarily:   view.HasResignedTemporarily,
		IsCurrentSubmission:      view.IsCurrentSubmission,
		IsOldSubmission:          view.IsOldSubmission,
		AdditionalNotes:          make([]Note, 0, len(view.AdditionalNotes)),
		Version:                  view.LastSequence,
	}
	for _, t := range view.PreferredTrainings {
		out.PreferredTrainings = append(out.PreferredTrainings, fromTraining(t))
	}
	if view.SelectedTraining != nil {
		selected := fromTraining(*view.SelectedTraining)
		out.SelectedTraining = &selected
	}
	if view.Campaign != nil {
		out.Campaign = &Campaign{
			ID:      int64(view.Campaign.ID),
			Name:    view.Campaign.Name,
			StartAt: view.Campaign.StartAt,
			EndAt:   view.Campaign.EndAt,
		}
	}
	if view.ResumeDate != nil {
		resume := view.ResumeDate.String()
		out.ResumeDate = &resume
	}
	for _, n := range view.AdditionalNotes {
		out.AdditionalNotes = append(out.AdditionalNotes, Note{Content: n.Content, RecordedAt: n.RecordedAt})
	}
	return out
}

func FromPage(page *readmodel.Page) EnrollmentPage {
	if page == nil {
		return EnrollmentPage{Items: []Enrollment{}}
	}
	out := EnrollmentPage{
		Items:  make([]Enrollment, 0, len(page.Items)),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	for _, view := range page.Items {
		out.Items = append(out.Items, FromView(view))
	}
	return out
}

// FromHistory encodes each payload with the event registry.
func FromHistory(events []domain.DomainEvent) ([]HistoryEvent, error) {
	out := make([]HistoryEvent, 0, len(events))
	for _, evt := range events {
		name, payload, err := domain.EncodeEvent(evt.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, HistoryEvent{
			Sequence:  evt.Sequence,
			Type:      name,
			Timestamp: evt.Timestamp,
			Payload:   payload,
		})
	}
	return out, nil
}

func fromTraining(t readmodel.TrainingSummary) Training {
	return Training{
		ID:            int64(t.ID),
		City:          t.City,
		Address:       t.Address,
		StartAt:       t.StartAt,
		EndAt:         t.EndAt,
		CoordinatorID: int64(t.CoordinatorID),
	}
}

func toTrainingIDs(raw []int64) []domain.TrainingID {
	if raw == nil {
		return nil
	}
	ids := make([]domain.TrainingID, len(raw))
	for i, id := range raw {
		ids[i] = domain.TrainingID(id)
	}
	return ids
}
