package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var _ ports.EventStore = (*EventStore)(nil)

// EventStore keeps enrollment streams and the global feed in memory.
type EventStore struct {
	mu      sync.RWMutex
	streams map[domain.EnrollmentID][]domain.DomainEvent
	feed    []ports.StoredEvent
}

func NewEventStore() *EventStore {
	return &EventStore{streams: map[domain.EnrollmentID][]domain.DomainEvent{}}
}

func (s *EventStore) Load(_ context.Context, id domain.EnrollmentID) ([]domain.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DomainEvent(nil), s.streams[id]...), nil
}

func (s *EventStore) Append(_ context.Context, id domain.EnrollmentID, expectedVersion uint64, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[id]
	if uint64(len(stream)) != expectedVersion {
		return ports.ErrConcurrencyConflict
	}
	for i, evt := range events {
		if evt.AggregateID != id {
			return fmt.Errorf("append to %s: event belongs to %s", id, evt.AggregateID)
		}
		if evt.Sequence != expectedVersion+uint64(i)+1 {
			return fmt.Errorf("append to %s: expected sequence %d, got %d", id, expectedVersion+uint64(i)+1, evt.Sequence)
		}
	}
	for _, evt := range events {
		stream = append(stream, evt)
		s.feed = append(s.feed, ports.StoredEvent{
			Position: uint64(len(s.feed)) + 1,
			Type:     evt.Name(),
			Event:    evt,
		})
	}
	s.streams[id] = stream
	return nil
}

func (s *EventStore) ReadAll(_ context.Context, after uint64, limit int) ([]ports.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if after >= uint64(len(s.feed)) {
		return nil, nil
	}
	end := uint64(len(s.feed))
	if limit > 0 && after+uint64(limit) < end {
		end = after + uint64(limit)
	}
	return append([]ports.StoredEvent(nil), s.feed[after:end]...), nil
}
