package types

import (
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// SubmitRecruitmentFormInput carries a form plus an optional client idempotency key.
type SubmitRecruitmentFormInput struct {
	Form           domain.SubmitRecruitmentForm
	IdempotencyKey string
}

// CommandResult describes the events a command committed.
type CommandResult struct {
	EnrollmentID domain.EnrollmentID
	Version      uint64
	Events       []string
	// Replayed is set when an idempotent retry returned an earlier submission.
	Replayed bool
}

// ReminderResult tells the scheduler whether the reminder went out.
type ReminderResult struct {
	EnrollmentID domain.EnrollmentID
	TrainingID   domain.TrainingID
	Sent         bool
	FailureCause string
}

// NewCommandResult summarizes the committed events.
func NewCommandResult(id domain.EnrollmentID, version uint64, events []domain.DomainEvent) *CommandResult {
	names := make([]string, 0, len(events))
	for _, evt := range events {
		names = append(names, evt.Name())
	}
	return &CommandResult{EnrollmentID: id, Version: version, Events: names}
}
