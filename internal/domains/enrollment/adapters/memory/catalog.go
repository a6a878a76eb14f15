package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var (
	_ ports.TrainingRepository = (*TrainingRepository)(nil)
	_ ports.CampaignRepository = (*CampaignRepository)(nil)
)

// Catalog holds campaigns and their trainings in memory.
type Catalog struct {
	mu        sync.RWMutex
	campaigns map[domain.CampaignID]domain.Campaign
	trainings map[domain.TrainingID]domain.Training
}

func NewCatalog(campaigns ...domain.Campaign) *Catalog {
	c := &Catalog{
		campaigns: map[domain.CampaignID]domain.Campaign{},
		trainings: map[domain.TrainingID]domain.Training{},
	}
	for _, campaign := range campaigns {
		c.PutCampaign(campaign)
	}
	return c
}

// PutCampaign adds or replaces a campaign together with its trainings.
func (c *Catalog) PutCampaign(campaign domain.Campaign) {
	c.mu.Lock()
	defer c.mu.Unlock()
	trainings := make([]domain.Training, 0, len(campaign.Trainings))
	for _, t := range campaign.Trainings {
		t.CampaignID = campaign.ID
		c.trainings[t.ID] = t
		trainings = append(trainings, t)
	}
	campaign.Trainings = trainings
	c.campaigns[campaign.ID] = campaign
}

// Trainings exposes the catalog as a training repository.
func (c *Catalog) Trainings() *TrainingRepository { return &TrainingRepository{catalog: c} }

// Campaigns exposes the catalog as a campaign repository.
func (c *Catalog) Campaigns() *CampaignRepository { return &CampaignRepository{catalog: c} }

type TrainingRepository struct {
	catalog *Catalog
}

func (r *TrainingRepository) GetByIDs(_ context.Context, ids []domain.TrainingID) ([]domain.Training, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	result := make([]domain.Training, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.catalog.trainings[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *TrainingRepository) GetByID(_ context.Context, id domain.TrainingID) (*domain.Training, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	t, ok := r.catalog.trainings[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type CampaignRepository struct {
	catalog *Catalog
}

func (r *CampaignRepository) GetAll(context.Context) ([]domain.Campaign, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	list := make([]domain.Campaign, 0, len(r.catalog.campaigns))
	for _, campaign := range r.catalog.campaigns {
		campaign.Trainings = append([]domain.Training(nil), campaign.Trainings...)
		list = append(list, campaign)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartAt.Before(list[j].StartAt) })
	return list, nil
}

func (r *CampaignRepository) GetByID(_ context.Context, id domain.CampaignID) (*domain.Campaign, error) {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	campaign, ok := r.catalog.campaigns[id]
	if !ok {
		return nil, nil
	}
	campaign.Trainings = append([]domain.Training(nil), campaign.Trainings...)
	return &campaign, nil
}
