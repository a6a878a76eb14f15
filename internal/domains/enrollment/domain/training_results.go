package domain

import (
	"strings"
	"time"
)

// RecordTrainingResults records the coordinator's verdict for attendedTraining.
// attendedTraining must be the training named by the command.
func (e *Enrollment) RecordTrainingResults(cmd RecordTrainingResults, coordinator UserID, availableTrainings []Training, attendedTraining Training, now time.Time) error {
	if err := e.checkTarget(cmd.EnrollmentID); err != nil {
		return err
	}
	if attendedTraining.ID != cmd.TrainingID {
		return contractViolation("attended training %s does not match command training %s", attendedTraining.ID, cmd.TrainingID)
	}
	if err := e.requireCandidate(); err != nil {
		return err
	}

	var checks fieldChecks
	checks.require(cmd.Result.IsKnown(), "trainingResult", "training result must be specified")
	if cmd.Result == TrainingResultPresentButNotAcceptedAsLecturer {
		checks.require(strings.TrimSpace(cmd.AdditionalNotes) != "", "additionalNotes",
			"notes are required when the candidate was not accepted as a lecturer")
	}
	if err := checks.err(); err != nil {
		return err
	}

	if _, ok := findTraining(availableTrainings, cmd.TrainingID); !ok {
		return ErrTrainingNotFound
	}

	if !e.state.IsPreferred(attendedTraining.ID) {
		return ErrTrainingNotSelectedAsPreferred
	}
	if now.Before(attendedTraining.EndAt) {
		return ErrCannotRecordTrainingAttendanceBeforeTrainingEnd
	}
	if e.state.HasLecturerRights {
		return ErrCandidateAlreadyHasLecturerRights
	}

	switch cmd.Result {
	case TrainingResultAbsent:
		if resp, ok := e.state.LatestResponse(cmd.TrainingID); !ok || resp != ResponseAccepted {
			return ErrCandidateDidNotAcceptTrainingInvitation
		}
		e.raise(now, CandidateWasAbsentFromTraining{
			RecordedBy:      coordinator,
			TrainingID:      cmd.TrainingID,
			AdditionalNotes: cmd.AdditionalNotes,
		})
	case TrainingResultPresentAndAcceptedAsLecturer:
		e.raise(now,
			CandidateAttendedTraining{
				RecordedBy:      coordinator,
				TrainingID:      cmd.TrainingID,
				AdditionalNotes: cmd.AdditionalNotes,
			},
			CandidateObtainedLecturerRights{
				GrantedBy:  coordinator,
				TrainingID: cmd.TrainingID,
			},
		)
	default:
		e.raise(now, CandidateAttendedTraining{
			RecordedBy:      coordinator,
			TrainingID:      cmd.TrainingID,
			AdditionalNotes: cmd.AdditionalNotes,
		})
	}
	return nil
}
