package domain

import "time"

// InvitationResponse is the candidate's answer to a training invitation.
type InvitationResponse string

const (
	ResponseAccepted InvitationResponse = "accepted"
	ResponseRefused  InvitationResponse = "refused"
)

// Resignation is the last recorded resignation, if any.
type Resignation struct {
	Type       ResignationType `json:"type,omitempty"`
	ResumeDate *Date           `json:"resume_date,omitempty"`
}

// State is everything derived from an enrollment's history. The aggregate and the
// read-model projector both build it through Evolve.
type State struct {
	Submitted                bool                              `json:"submitted"`
	FullName                 string                            `json:"full_name"`
	Email                    string                            `json:"email"`
	PhoneNumber              string                            `json:"phone_number"`
	AboutMe                  string                            `json:"about_me,omitempty"`
	Region                   string                            `json:"region"`
	PreferredLecturingCities []string                          `json:"preferred_lecturing_cities"`
	PreferredTrainingIDs     []TrainingID                      `json:"preferred_training_ids"`
	CampaignID               CampaignID                        `json:"campaign_id"`
	GdprConsentGiven         bool                              `json:"gdpr_consent_given"`
	SubmittedAt              time.Time                         `json:"submitted_at"`
	SelectedTrainingID       *TrainingID                       `json:"selected_training_id,omitempty"`
	HasLecturerRights        bool                              `json:"has_lecturer_rights"`
	Resignation              Resignation                       `json:"resignation"`
	AdditionalNotes          []Note                            `json:"additional_notes,omitempty"`
	Responses                map[TrainingID]InvitationResponse `json:"responses,omitempty"`
	TrainingResults          map[TrainingID]TrainingResult     `json:"training_results,omitempty"`
	Version                  uint64                            `json:"version"`
}

// Evolve folds one event into s and returns the next state. s is not modified.
// A nil payload only advances the version.
func Evolve(s State, e DomainEvent) State {
	next := s.Clone()
	if e.Payload != nil {
		e.Payload.evolve(&next, eventMeta{sequence: e.Sequence, timestamp: e.Timestamp})
	}
	next.Version = e.Sequence
	return next
}

// Project folds a whole history starting from the empty state.
func Project(events []DomainEvent) State {
	var s State
	for _, e := range events {
		s = Evolve(s, e)
	}
	return s
}

// HasSignedUpForTraining reports whether a training is currently selected.
func (s State) HasSignedUpForTraining() bool {
	return s.SelectedTrainingID != nil
}

// HasResignedPermanently reports the last resignation was permanent.
func (s State) HasResignedPermanently() bool {
	return s.Resignation.Type == ResignationTypePermanent
}

// HasResignedTemporarily reports the last resignation was temporary, lapsed or not.
func (s State) HasResignedTemporarily() bool {
	return s.Resignation.Type == ResignationTypeTemporary
}

// HasResignedEffectively reports whether the candidate counts as resigned at asOf.
// A temporary resignation lapses at local midnight of its resume date.
func (s State) HasResignedEffectively(asOf time.Time, loc *time.Location) bool {
	switch s.Resignation.Type {
	case ResignationTypePermanent:
		return true
	case ResignationTypeTemporary:
		if s.Resignation.ResumeDate == nil {
			return true
		}
		return asOf.Before(s.Resignation.ResumeDate.Midnight(loc))
	default:
		return false
	}
}

// EffectiveResignation is the resignation as seen at asOf; a lapsed temporary one reads as none.
func (s State) EffectiveResignation(asOf time.Time, loc *time.Location) Resignation {
	if !s.HasResignedEffectively(asOf, loc) {
		return Resignation{}
	}
	out := Resignation{Type: s.Resignation.Type}
	if s.Resignation.ResumeDate != nil {
		resume := *s.Resignation.ResumeDate
		out.ResumeDate = &resume
	}
	return out
}

// LatestResponse returns the most recent invitation response for a training.
func (s State) LatestResponse(id TrainingID) (InvitationResponse, bool) {
	r, ok := s.Responses[id]
	return r, ok
}

// IsPreferred reports whether the candidate listed the training on the form.
func (s State) IsPreferred(id TrainingID) bool {
	return containsTraining(s.PreferredTrainingIDs, id)
}

func (s *State) setResponse(id TrainingID, r InvitationResponse) {
	if s.Responses == nil {
		s.Responses = make(map[TrainingID]InvitationResponse)
	}
	s.Responses[id] = r
}

func (s *State) setResult(id TrainingID, r TrainingResult) {
	if s.TrainingResults == nil {
		s.TrainingResults = make(map[TrainingID]TrainingResult)
	}
	s.TrainingResults[id] = r
}

func (s *State) addNote(content string, meta eventMeta) {
	if content == "" {
		return
	}
	s.AdditionalNotes = append(s.AdditionalNotes, Note{
		Content:    content,
		RecordedAt: meta.timestamp,
		Sequence:   meta.sequence,
	})
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.PreferredLecturingCities = append([]string(nil), s.PreferredLecturingCities...)
	out.PreferredTrainingIDs = append([]TrainingID(nil), s.PreferredTrainingIDs...)
	out.AdditionalNotes = append([]Note(nil), s.AdditionalNotes...)
	if s.SelectedTrainingID != nil {
		selected := *s.SelectedTrainingID
		out.SelectedTrainingID = &selected
	}
	if s.Resignation.ResumeDate != nil {
		resume := *s.Resignation.ResumeDate
		out.Resignation.ResumeDate = &resume
	}
	if s.Responses != nil {
		out.Responses = make(map[TrainingID]InvitationResponse, len(s.Responses))
		for k, v := range s.Responses {
			out.Responses[k] = v
		}
	}
	if s.TrainingResults != nil {
		out.TrainingResults = make(map[TrainingID]TrainingResult, len(s.TrainingResults))
		for k, v := range s.TrainingResults {
			out.TrainingResults[k] = v
		}
	}
	return out
}
