package domain

import "time"

// Durable event type names.
const (
	EventRecruitmentFormSubmitted            = "enrollment.recruitment_form_submitted"
	EventCandidateAcceptedTrainingInvitation = "enrollment.training_invitation_accepted"
	EventCandidateRefusedTrainingInvitation  = "enrollment.training_invitation_refused"
	EventCandidateAttendedTraining           = "enrollment.training_attended"
	EventCandidateObtainedLecturerRights     = "enrollment.lecturer_rights_obtained"
	EventCandidateWasAbsentFromTraining      = "enrollment.training_absence_recorded"
	EventCandidateResignedPermanently        = "enrollment.resigned_permanently"
	EventCandidateResignedTemporarily        = "enrollment.resigned_temporarily"
	EventContactOccured                      = "enrollment.contact_occured"
	EventEmailSent                           = "enrollment.email_sent"
	EventEmailSendingFailed                  = "enrollment.email_sending_failed"
)

// Event is the sealed set of things that can happen to an enrollment.
// Adding a variant requires implementing evolve, so the fold stays total.
type Event interface {
	EventName() string
	evolve(s *State, meta eventMeta)
}

type eventMeta struct {
	sequence  uint64
	timestamp time.Time
}

// DomainEvent is an event positioned in one enrollment's history.
type DomainEvent struct {
	AggregateID EnrollmentID
	Sequence    uint64
	Timestamp   time.Time
	Payload     Event
}

// Name returns the payload type name, or an empty string for undecodable payloads.
func (e DomainEvent) Name() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventName()
}

type RecruitmentFormSubmitted struct {
	FullName                 string       `json:"full_name"`
	Email                    string       `json:"email"`
	PhoneNumber              string       `json:"phone_number"`
	AboutMe                  string       `json:"about_me,omitempty"`
	Region                   string       `json:"region"`
	PreferredLecturingCities []string     `json:"preferred_lecturing_cities"`
	PreferredTrainingIDs     []TrainingID `json:"preferred_training_ids"`
	CampaignID               CampaignID   `json:"campaign_id"`
	GdprConsentGiven         bool         `json:"gdpr_consent_given"`
	SubmittedAt              time.Time    `json:"submitted_at"`
}

func (RecruitmentFormSubmitted) EventName() string { return EventRecruitmentFormSubmitted }

func (e RecruitmentFormSubmitted) evolve(s *State, _ eventMeta) {
	s.Submitted = true
	s.FullName = e.FullName
	s.Email = e.Email
	s.PhoneNumber = e.PhoneNumber
	s.AboutMe = e.AboutMe
	s.Region = e.Region
	s.PreferredLecturingCities = append([]string(nil), e.PreferredLecturingCities...)
	s.PreferredTrainingIDs = append([]TrainingID(nil), e.PreferredTrainingIDs...)
	s.CampaignID = e.CampaignID
	s.GdprConsentGiven = e.GdprConsentGiven
	s.SubmittedAt = e.SubmittedAt
}

type CandidateAcceptedTrainingInvitation struct {
	RecordedBy         UserID               `json:"recorded_by"`
	Channel            CommunicationChannel `json:"channel"`
	SelectedTrainingID TrainingID           `json:"selected_training_id"`
	AdditionalNotes    string               `json:"additional_notes,omitempty"`
}

func (CandidateAcceptedTrainingInvitation) EventName() string {
	return EventCandidateAcceptedTrainingInvitation
}

func (e CandidateAcceptedTrainingInvitation) evolve(s *State, meta eventMeta) {
	selected := e.SelectedTrainingID
	s.SelectedTrainingID = &selected
	s.setResponse(selected, ResponseAccepted)
	s.addNote(e.AdditionalNotes, meta)
}

type CandidateRefusedTrainingInvitation struct {
	RecordedBy      UserID               `json:"recorded_by"`
	Channel         CommunicationChannel `json:"channel"`
	RefusalReason   string               `json:"refusal_reason,omitempty"`
	AdditionalNotes string               `json:"additional_notes,omitempty"`
}

func (CandidateRefusedTrainingInvitation) EventName() string {
	return EventCandidateRefusedTrainingInvitation
}

// A refusal answers the invitation as a whole.
func (e CandidateRefusedTrainingInvitation) evolve(s *State, meta eventMeta) {
	s.SelectedTrainingID = nil
	for _, id := range s.PreferredTrainingIDs {
		s.setResponse(id, ResponseRefused)
	}
	s.addNote(e.AdditionalNotes, meta)
}

type CandidateAttendedTraining struct {
	RecordedBy      UserID     `json:"recorded_by"`
	TrainingID      TrainingID `json:"training_id"`
	AdditionalNotes string     `json:"additional_notes,omitempty"`
}

func (CandidateAttendedTraining) EventName() string { return EventCandidateAttendedTraining }

func (e CandidateAttendedTraining) evolve(s *State, meta eventMeta) {
	s.setResult(e.TrainingID, TrainingResultPresentButNotAcceptedAsLecturer)
	s.addNote(e.AdditionalNotes, meta)
}

type CandidateObtainedLecturerRights struct {
	GrantedBy  UserID     `json:"granted_by"`
	TrainingID TrainingID `json:"training_id"`
}

func (CandidateObtainedLecturerRights) EventName() string {
	return EventCandidateObtainedLecturerRights
}

func (e CandidateObtainedLecturerRights) evolve(s *State, _ eventMeta) {
	s.HasLecturerRights = true
	s.setResult(e.TrainingID, TrainingResultPresentAndAcceptedAsLecturer)
}

type CandidateWasAbsentFromTraining struct {
	RecordedBy      UserID     `json:"recorded_by"`
	TrainingID      TrainingID `json:"training_id"`
	AdditionalNotes string     `json:"additional_notes,omitempty"`
}

func (CandidateWasAbsentFromTraining) EventName() string { return EventCandidateWasAbsentFromTraining }

// Absence keeps the selected training.
func (e CandidateWasAbsentFromTraining) evolve(s *State, meta eventMeta) {
	s.setResult(e.TrainingID, TrainingResultAbsent)
	s.addNote(e.AdditionalNotes, meta)
}

type CandidateResignedPermanently struct {
	RecordedBy        UserID               `json:"recorded_by"`
	Channel           CommunicationChannel `json:"channel"`
	ResignationReason string               `json:"resignation_reason,omitempty"`
	AdditionalNotes   string               `json:"additional_notes,omitempty"`
}

func (CandidateResignedPermanently) EventName() string { return EventCandidateResignedPermanently }

func (e CandidateResignedPermanently) evolve(s *State, meta eventMeta) {
	s.Resignation = Resignation{Type: ResignationTypePermanent}
	s.addNote(e.AdditionalNotes, meta)
}

type CandidateResignedTemporarily struct {
	RecordedBy        UserID               `json:"recorded_by"`
	Channel           CommunicationChannel `json:"channel"`
	ResignationReason string               `json:"resignation_reason,omitempty"`
	AdditionalNotes   string               `json:"additional_notes,omitempty"`
	ResumeDate        *Date                `json:"resume_date,omitempty"`
}

func (CandidateResignedTemporarily) EventName() string { return EventCandidateResignedTemporarily }

func (e CandidateResignedTemporarily) evolve(s *State, meta eventMeta) {
	s.Resignation = Resignation{Type: ResignationTypeTemporary}
	if e.ResumeDate != nil {
		resume := *e.ResumeDate
		s.Resignation.ResumeDate = &resume
	}
	s.addNote(e.AdditionalNotes, meta)
}

type ContactOccured struct {
	RecordedBy      UserID               `json:"recorded_by"`
	Channel         CommunicationChannel `json:"channel"`
	Content         string               `json:"content"`
	AdditionalNotes string               `json:"additional_notes,omitempty"`
}

func (ContactOccured) EventName() string { return EventContactOccured }

func (e ContactOccured) evolve(s *State, meta eventMeta) {
	s.addNote(e.AdditionalNotes, meta)
}

type EmailSent struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	IsHTML    bool   `json:"is_html"`
}

func (EmailSent) EventName() string { return EventEmailSent }

func (EmailSent) evolve(*State, eventMeta) {}

type EmailSendingFailed struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	IsHTML    bool   `json:"is_html"`
	Reason    string `json:"reason,omitempty"`
}

func (EmailSendingFailed) EventName() string { return EventEmailSendingFailed }

func (EmailSendingFailed) evolve(*State, eventMeta) {}
