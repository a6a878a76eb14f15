package domain

import "time"

// RecordAcceptedTrainingInvitation selects one of the preferred trainings. It
// supersedes any earlier refusal.
func (e *Enrollment) RecordAcceptedTrainingInvitation(cmd RecordAcceptedTrainingInvitation, coordinator UserID, availableTrainings []Training, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}
	if err := e.requireCandidate(); err != nil {
		return err
	}

	var checks fieldChecks
	checks.require(cmd.Channel.IsKnown(), "channel", "communication channel must be specified")
	checks.require(e.state.IsPreferred(cmd.SelectedTrainingID), "selectedTrainingId", "training was not selected as preferred by the candidate")
	if err := checks.err(); err != nil {
		return err
	}

	training, ok := findTraining(availableTrainings, cmd.SelectedTrainingID)
	if !ok {
		return ErrTrainingNotFound
	}
	if !training.StartAt.After(now) {
		return ErrTrainingTimeAlreadyPassed
	}

	e.raise(now, CandidateAcceptedTrainingInvitation{
		RecordedBy:         coordinator,
		Channel:            cmd.Channel,
		SelectedTrainingID: cmd.SelectedTrainingID,
		AdditionalNotes:    cmd.AdditionalNotes,
	})
	return nil
}

// RecordRefusedTrainingInvitation is allowed while at least one remaining training has
// not started: the selected one if any, otherwise any preferred one.
func (e *Enrollment) RecordRefusedTrainingInvitation(cmd RecordRefusedTrainingInvitation, coordinator UserID, availableTrainings []Training, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}
	if err := e.requireCandidate(); err != nil {
		return err
	}

	var checks fieldChecks
	checks.require(cmd.Channel.IsKnown(), "channel", "communication channel must be specified")
	if err := checks.err(); err != nil {
		return err
	}

	eligible := e.state.PreferredTrainingIDs
	if e.state.SelectedTrainingID != nil {
		eligible = []TrainingID{*e.state.SelectedTrainingID}
	}
	anyUpcoming := false
	for _, id := range eligible {
		training, ok := findTraining(availableTrainings, id)
		if !ok {
			return ErrTrainingNotFound
		}
		if training.StartAt.After(now) {
			anyUpcoming = true
		}
	}
	if !anyUpcoming {
		return ErrRefusalAfterAllTrainingsStarted
	}

	e.raise(now, CandidateRefusedTrainingInvitation{
		RecordedBy:      coordinator,
		Channel:         cmd.Channel,
		RefusalReason:   cmd.RefusalReason,
		AdditionalNotes: cmd.AdditionalNotes,
	})
	return nil
}
