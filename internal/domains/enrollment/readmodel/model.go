package readmodel

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// ErrNotFound is returned by queries for enrollments the projection has not seen.
var ErrNotFound = errors.New("enrollment projection not found")

// TrainingSummary is the denormalized part of a training shown next to an enrollment.
type TrainingSummary struct {
	ID            domain.TrainingID `json:"id"`
	City          string            `json:"city"`
	Address       string            `json:"address"`
	StartAt       time.Time         `json:"start_at"`
	EndAt         time.Time         `json:"end_at"`
	CoordinatorID domain.UserID     `json:"coordinator_id"`
}

// CampaignSummary is the denormalized part of the enrollment's campaign.
type CampaignSummary struct {
	ID      domain.CampaignID `json:"id"`
	Name    string            `json:"name"`
	StartAt time.Time         `json:"start_at"`
	EndAt   time.Time         `json:"end_at"`
}

// EnrollmentReadModel is the stored projection row: the folded state plus summaries.
// It holds nothing that depends on the time it is read.
type EnrollmentReadModel struct {
	ID                 domain.EnrollmentID
	State              domain.State
	Campaign           *CampaignSummary
	PreferredTrainings []TrainingSummary
	UpdatedAt          time.Time
}

// LastSequence is the last event folded into the model.
func (m EnrollmentReadModel) LastSequence() uint64 { return m.State.Version }

// SelectedTraining resolves the selected training among the preferred summaries.
func (m EnrollmentReadModel) SelectedTraining() *TrainingSummary {
	if m.State.SelectedTrainingID == nil {
		return nil
	}
	for _, t := range m.PreferredTrainings {
		if t.ID == *m.State.SelectedTrainingID {
			summary := t
			return &summary
		}
	}
	return &TrainingSummary{ID: *m.State.SelectedTrainingID}
}

// StoreQuery narrows List by attributes that do not depend on the query time.
type StoreQuery struct {
	CampaignID        *domain.CampaignID
	Region            string
	City              string
	HasLecturerRights *bool
}

// Store persists projection rows and the feed checkpoint.
type Store interface {
	// Get returns nil when the enrollment was never projected.
	Get(ctx context.Context, id domain.EnrollmentID) (*EnrollmentReadModel, error)
	Save(ctx context.Context, model EnrollmentReadModel) error
	List(ctx context.Context, query StoreQuery) ([]EnrollmentReadModel, error)
	Checkpoint(ctx context.Context) (uint64, error)
	SaveCheckpoint(ctx context.Context, position uint64) error
	// Reset drops every row and the checkpoint.
	Reset(ctx context.Context) error
}

func summarizeTraining(t domain.Training) TrainingSummary {
	return TrainingSummary{
		ID:            t.ID,
		City:          t.City,
		Address:       t.Address,
		StartAt:       t.StartAt,
		EndAt:         t.EndAt,
		CoordinatorID: t.CoordinatorID,
	}
}

func summarizeCampaign(c domain.Campaign) *CampaignSummary {
	return &CampaignSummary{ID: c.ID, Name: c.Name, StartAt: c.StartAt, EndAt: c.EndAt}
}
