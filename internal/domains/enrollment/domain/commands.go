package domain

// SubmitRecruitmentForm opens an enrollment.
type SubmitRecruitmentForm struct {
	EnrollmentID             EnrollmentID
	FullName                 string
	Email                    string
	PhoneNumber              string
	AboutMe                  string
	Region                   string
	PreferredLecturingCities []string
	PreferredTrainingIDs     []TrainingID
	GdprConsentGiven         bool
}

type RecordAcceptedTrainingInvitation struct {
	EnrollmentID       EnrollmentID
	Channel            CommunicationChannel
	SelectedTrainingID TrainingID
	AdditionalNotes    string
}

type RecordRefusedTrainingInvitation struct {
	EnrollmentID    EnrollmentID
	Channel         CommunicationChannel
	RefusalReason   string
	AdditionalNotes string
}

type RecordTrainingResults struct {
	EnrollmentID    EnrollmentID
	TrainingID      TrainingID
	Result          TrainingResult
	AdditionalNotes string
}

type RecordResignation struct {
	EnrollmentID      EnrollmentID
	Channel           CommunicationChannel
	ResignationType   ResignationType
	ResignationReason string
	ResumeDate        *Date
	AdditionalNotes   string
}

type RecordContact struct {
	EnrollmentID    EnrollmentID
	Channel         CommunicationChannel
	Content         string
	AdditionalNotes string
}

// SendTrainingReminder is delivered by the scheduler ahead of a training.
type SendTrainingReminder struct {
	EnrollmentID EnrollmentID `json:"enrollment_id"`
	TrainingID   TrainingID   `json:"training_id"`
}
