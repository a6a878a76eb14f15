package domain

import "time"

// RecordResignation replaces any previous resignation. today is derived from now,
// which must carry the clock's location.
func (e *Enrollment) RecordResignation(cmd RecordResignation, recordedBy UserID, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}
	if err := e.requireCandidate(); err != nil {
		return err
	}

	var checks fieldChecks
	checks.require(cmd.Channel.IsKnown(), "channel", "communication channel must be specified")
	checks.require(cmd.ResignationType == ResignationTypePermanent || cmd.ResignationType == ResignationTypeTemporary,
		"resignationType", "resignation type must be specified")
	if cmd.ResignationType == ResignationTypePermanent {
		checks.require(cmd.ResumeDate == nil, "resumeDate", "permanent resignation cannot have a resume date")
	}
	if err := checks.err(); err != nil {
		return err
	}

	if cmd.ResignationType == ResignationTypePermanent {
		e.raise(now, CandidateResignedPermanently{
			RecordedBy:        recordedBy,
			Channel:           cmd.Channel,
			ResignationReason: cmd.ResignationReason,
			AdditionalNotes:   cmd.AdditionalNotes,
		})
		return nil
	}

	var resume *Date
	if cmd.ResumeDate != nil {
		if cmd.ResumeDate.Before(DateOf(now)) {
			return ErrResumeDateCannotBeEarlierThanToday
		}
		d := *cmd.ResumeDate
		resume = &d
	}
	e.raise(now, CandidateResignedTemporarily{
		RecordedBy:        recordedBy,
		Channel:           cmd.Channel,
		ResignationReason: cmd.ResignationReason,
		AdditionalNotes:   cmd.AdditionalNotes,
		ResumeDate:        resume,
	})
	return nil
}
