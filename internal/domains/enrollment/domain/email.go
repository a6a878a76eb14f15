package domain

import (
	"time"
)

// DefaultReminderLead is how long before a training its reminder may go out.
const DefaultReminderLead = 24 * time.Hour

// CanSendTrainingReminder checks, without emitting anything, whether a reminder for
// training may be sent at now.
func (e *Enrollment) CanSendTrainingReminder(cmd SendTrainingReminder, training *Training, lead time.Duration, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}
	if training != nil && training.ID != cmd.TrainingID {
		return contractViolation("training %s does not match command training %s", training.ID, cmd.TrainingID)
	}
	if err := e.requireCandidate(); err != nil {
		return err
	}
	if training == nil {
		return ErrTrainingNotFound
	}
	if e.state.SelectedTrainingID == nil || *e.state.SelectedTrainingID != cmd.TrainingID {
		return ErrCandidateNotInvitedToTraining
	}
	if e.state.HasResignedEffectively(now, now.Location()) {
		return ErrCandidateHasResigned
	}
	if lead <= 0 {
		lead = DefaultReminderLead
	}
	if now.Before(training.StartAt.Add(-lead)) || !now.Before(training.StartAt) {
		return ErrReminderOutsideWindow
	}
	return nil
}

// RecordEmailSent records a delivered mail.
func (e *Enrollment) RecordEmailSent(msg EmailMessage, now time.Time) error {
	if err := e.requireSubmittedOrPending(); err != nil {
		return err
	}
	e.raise(now, EmailSent{
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Body:      msg.Body,
		IsHTML:    msg.IsHTML,
	})
	return nil
}

// RecordEmailSendingFailed records a mail that could not be delivered.
func (e *Enrollment) RecordEmailSendingFailed(msg EmailMessage, reason string, now time.Time) error {
	if err := e.requireSubmittedOrPending(); err != nil {
		return err
	}
	e.raise(now, EmailSendingFailed{
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Body:      msg.Body,
		IsHTML:    msg.IsHTML,
		Reason:    reason,
	})
	return nil
}

func (e *Enrollment) requireSubmittedOrPending() error {
	if e.state.Submitted {
		return nil
	}
	for _, evt := range e.uncommitted {
		if _, ok := evt.Payload.(RecruitmentFormSubmitted); ok {
			return nil
		}
	}
	return ErrCandidateNotFound
}
