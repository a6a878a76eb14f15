package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

var _ readmodel.Store = (*ReadModelStore)(nil)

// ReadModelStore is an in-memory projection store for development and tests.
type ReadModelStore struct {
	mu         sync.RWMutex
	rows       map[domain.EnrollmentID]readmodel.EnrollmentReadModel
	checkpoint uint64
}

func NewReadModelStore() *ReadModelStore {
	return &ReadModelStore{rows: map[domain.EnrollmentID]readmodel.EnrollmentReadModel{}}
}

func (s *ReadModelStore) Get(_ context.Context, id domain.EnrollmentID) (*readmodel.EnrollmentReadModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	clone := cloneModel(row)
	return &clone, nil
}

func (s *ReadModelStore) Save(_ context.Context, model readmodel.EnrollmentReadModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[model.ID] = cloneModel(model)
	return nil
}

func (s *ReadModelStore) List(_ context.Context, query readmodel.StoreQuery) ([]readmodel.EnrollmentReadModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]readmodel.EnrollmentReadModel, 0, len(s.rows))
	for _, row := range s.rows {
		if !matchesQuery(row, query) {
			continue
		}
		list = append(list, cloneModel(row))
	}
	return list, nil
}

func (s *ReadModelStore) Checkpoint(context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkpoint, nil
}

func (s *ReadModelStore) SaveCheckpoint(_ context.Context, position uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint = position
	return nil
}

func (s *ReadModelStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = map[domain.EnrollmentID]readmodel.EnrollmentReadModel{}
	s.checkpoint = 0
	return nil
}

func matchesQuery(row readmodel.EnrollmentReadModel, query readmodel.StoreQuery) bool {
	if query.CampaignID != nil && row.State.CampaignID != *query.CampaignID {
		return false
	}
	if query.Region != "" && !strings.EqualFold(row.State.Region, query.Region) {
		return false
	}
	if query.City != "" {
		found := false
		for _, city := range row.State.PreferredLecturingCities {
			if strings.EqualFold(city, query.City) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.HasLecturerRights != nil && row.State.HasLecturerRights != *query.HasLecturerRights {
		return false
	}
	return true
}

func cloneModel(m readmodel.EnrollmentReadModel) readmodel.EnrollmentReadModel {
	out := m
	out.State = m.State.Clone()
	out.PreferredTrainings = append([]readmodel.TrainingSummary(nil), m.PreferredTrainings...)
	if m.Campaign != nil {
		campaign := *m.Campaign
		out.Campaign = &campaign
	}
	return out
}
