package ports

import (
	"context"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// TrainingRepository reads trainings owned by the scheduling side of the system.
type TrainingRepository interface {
	// GetByIDs returns only the trainings that exist; callers detect missing ids.
	GetByIDs(ctx context.Context, ids []domain.TrainingID) ([]domain.Training, error)
	// GetByID returns nil when the training does not exist.
	GetByID(ctx context.Context, id domain.TrainingID) (*domain.Training, error)
}

// CampaignRepository reads recruitment campaigns with their scheduled trainings.
type CampaignRepository interface {
	GetAll(ctx context.Context) ([]domain.Campaign, error)
	// GetByID returns nil when the campaign does not exist.
	GetByID(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error)
}
