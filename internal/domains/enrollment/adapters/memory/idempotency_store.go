package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var (
	_ ports.IdempotencyStore  = (*IdempotencyStore)(nil)
	_ ports.IdempotencyPurger = (*IdempotencyStore)(nil)
)

// IdempotencyStore keeps submission keys in a map guarded by a mutex.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]ports.IdempotencyRecord
	now  func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]ports.IdempotencyRecord), now: time.Now}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.keys[key]; ok {
		return &rec, nil
	}
	return nil, nil
}

// Save is first-writer-wins: a repeat of the same submission returns the stored record.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.keys[record.Key]; ok {
		if !sameSubmission(stored, record) {
			return &stored, ports.ErrIdempotencyConflict
		}
		return &stored, nil
	}
	record.CreatedAt = s.now()
	record.UpdatedAt = record.CreatedAt
	s.keys[record.Key] = record
	return &record, nil
}

func (s *IdempotencyStore) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for key, rec := range s.keys {
		if rec.CreatedAt.Before(cutoff) {
			delete(s.keys, key)
			purged++
		}
	}
	return purged, nil
}

func sameSubmission(a, b ports.IdempotencyRecord) bool {
	return a.RequestHash == b.RequestHash && a.EnrollmentID == b.EnrollmentID
}
