package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the tier of a domain error.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation_failed"
	KindNotFound   ErrorKind = "resource_not_found"
	KindDomain     ErrorKind = "domain_error"
)

// ErrContractViolation marks programmer errors: a command routed to the wrong aggregate
// or inconsistent arguments supplied by a handler. It is never a *Error.
var ErrContractViolation = errors.New("command contract violation")

// FieldError describes a single failing input field.
type FieldError struct {
	Field   string
	Message string
}

// Error is the typed result of a rejected command.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return "validation failed: " + strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Is matches errors of the same kind; a template with a Code also has to match the code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// FieldMap flattens field errors for transport layers. Later messages for the same field are joined.
func (e *Error) FieldMap() map[string]string {
	if len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if prev, ok := out[f.Field]; ok {
			out[f.Field] = prev + "; " + f.Message
			continue
		}
		out[f.Field] = f.Message
	}
	return out
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

func notFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func ruleViolation(code, message string) *Error {
	return &Error{Kind: KindDomain, Code: code, Message: message}
}

func contractViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

// Templates usable with errors.Is.
var (
	ErrValidationFailed = &Error{Kind: KindValidation}
	ErrResourceNotFound = &Error{Kind: KindNotFound}
	ErrDomainRule       = &Error{Kind: KindDomain}

	ErrCandidateNotFound = notFound("CandidateNotFound", "candidate not found")
	ErrTrainingNotFound  = notFound("TrainingNotFound", "training not found")
	ErrCampaignNotFound  = notFound("CampaignNotFound", "campaign not found")

	ErrEnrollmentAlreadySubmitted = ruleViolation("EnrollmentAlreadySubmitted",
		"recruitment form was already submitted for this enrollment")
	ErrPreferredTrainingsMustBelongToSameCampaign = ruleViolation("PreferredTrainingsMustBelongToSameCampaign",
		"all preferred trainings must belong to the same campaign")
	ErrPreferredTrainingsMustOccurInFuture = ruleViolation("PreferredTrainingsMustOccurInFuture",
		"preferred trainings must start in the future")
	ErrSubmissionMustOccurDuringCampaign = ruleViolation("SubmissionMustOccurDuringCampaign",
		"recruitment form can only be submitted while the campaign is open")
	ErrTrainingTimeAlreadyPassed = ruleViolation("TrainingTimeAlreadyPassed",
		"selected training has already started")
	ErrRefusalAfterAllTrainingsStarted = ruleViolation("RefusalAfterAllTrainingsStarted",
		"cannot record refusal because every remaining training has already started")
	ErrTrainingNotSelectedAsPreferred = ruleViolation("TrainingNotSelectedAsPreferred",
		"training was not selected as preferred by the candidate")
	ErrCannotRecordTrainingAttendanceBeforeTrainingEnd = ruleViolation("CannotRecordTrainingAttendanceBeforeTrainingEnd",
		"cannot record training attendance before the training ends")
	ErrCandidateAlreadyHasLecturerRights = ruleViolation("CandidateAlreadyHasLecturerRights",
		"candidate already obtained lecturer rights, no further training results can be recorded")
	ErrCandidateDidNotAcceptTrainingInvitation = ruleViolation("CandidateDidNotAcceptTrainingInvitation",
		"cannot record absence because the candidate did not accept the invitation to this training")
	ErrResumeDateCannotBeEarlierThanToday = ruleViolation("ResumeDateCannotBeEarlierThanToday",
		"resume date cannot be earlier than today")
	ErrCandidateNotInvitedToTraining = ruleViolation("CandidateNotInvitedToTraining",
		"candidate is not currently invited to this training")
	ErrCandidateHasResigned = ruleViolation("CandidateHasResigned",
		"candidate has resigned")
	ErrReminderOutsideWindow = ruleViolation("ReminderOutsideWindow",
		"training reminder can only be sent during the day before the training")
)
