package domain

import (
	"strings"
	"time"
)

// RecordContact appends a contact to the audit trail.
func (e *Enrollment) RecordContact(cmd RecordContact, recordedBy UserID, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}
	if err := e.requireCandidate(); err != nil {
		return err
	}

	var checks fieldChecks
	checks.require(cmd.Channel.IsKnown(), "channel", "communication channel must be specified")
	checks.require(strings.TrimSpace(cmd.Content) != "", "content", "value is required")
	if err := checks.err(); err != nil {
		return err
	}

	e.raise(now, ContactOccured{
		RecordedBy:      recordedBy,
		Channel:         cmd.Channel,
		Content:         cmd.Content,
		AdditionalNotes: cmd.AdditionalNotes,
	})
	return nil
}
