package domain

import "time"

// CommunicationChannel records how a coordinator talked to the candidate.
type CommunicationChannel string

const (
	ChannelUnknown         CommunicationChannel = ""
	ChannelOutgoingEmail   CommunicationChannel = "outgoing_email"
	ChannelIncomingEmail   CommunicationChannel = "incoming_email"
	ChannelOutgoingPhone   CommunicationChannel = "outgoing_phone"
	ChannelIncomingPhone   CommunicationChannel = "incoming_phone"
	ChannelOutgoingSMS     CommunicationChannel = "outgoing_sms"
	ChannelIncomingSMS     CommunicationChannel = "incoming_sms"
	ChannelPersonalContact CommunicationChannel = "personal_contact"
	ChannelFacebook        CommunicationChannel = "facebook"
	ChannelOther           CommunicationChannel = "other"
)

// IsKnown reports whether the channel is one of the declared values.
func (c CommunicationChannel) IsKnown() bool {
	switch c {
	case ChannelOutgoingEmail, ChannelIncomingEmail,
		ChannelOutgoingPhone, ChannelIncomingPhone,
		ChannelOutgoingSMS, ChannelIncomingSMS,
		ChannelPersonalContact, ChannelFacebook, ChannelOther:
		return true
	default:
		return false
	}
}

// TrainingResult is the coordinator's verdict after a training.
type TrainingResult string

const (
	TrainingResultUnknown                         TrainingResult = ""
	TrainingResultPresentAndAcceptedAsLecturer    TrainingResult = "present_and_accepted_as_lecturer"
	TrainingResultPresentButNotAcceptedAsLecturer TrainingResult = "present_but_not_accepted_as_lecturer"
	TrainingResultAbsent                          TrainingResult = "absent"
)

// IsKnown reports whether the result is one of the declared values.
func (r TrainingResult) IsKnown() bool {
	switch r {
	case TrainingResultPresentAndAcceptedAsLecturer, TrainingResultPresentButNotAcceptedAsLecturer, TrainingResultAbsent:
		return true
	default:
		return false
	}
}

// ResignationType distinguishes permanent from temporary resignations.
type ResignationType string

const (
	ResignationTypeUnknown   ResignationType = ""
	ResignationTypePermanent ResignationType = "permanent"
	ResignationTypeTemporary ResignationType = "temporary"
)

// Training is a read-only view of a scheduled training supplied by the caller.
type Training struct {
	ID            TrainingID
	City          string
	Address       string
	StartAt       time.Time
	EndAt         time.Time
	CoordinatorID UserID
	CampaignID    CampaignID
}

// Campaign is a recruitment edition with its submission window.
type Campaign struct {
	ID        CampaignID
	Name      string
	StartAt   time.Time
	EndAt     time.Time
	Trainings []Training
}

// Contains reports whether instant falls inside the campaign window.
func (c Campaign) Contains(instant time.Time) bool {
	return !instant.Before(c.StartAt) && !instant.After(c.EndAt)
}

// EmailMessage is the rendered mail whose delivery outcome gets recorded.
type EmailMessage struct {
	Recipient string
	Subject   string
	Body      string
	IsHTML    bool
}

// Note is one entry of the enrollment's additional notes log.
type Note struct {
	Content    string    `json:"content"`
	RecordedAt time.Time `json:"recorded_at"`
	Sequence   uint64    `json:"sequence"`
}
