package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var _ ports.EventStore = (*EventStore)(nil)

// feedLockKey serializes appends so feed positions become visible in commit order.
const feedLockKey int64 = 7_300_117

// EventStore persists enrollment events in PostgreSQL using GORM.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore wires a PostgreSQL-backed event store. Caller manages DB lifecycle and migrations.
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// eventRecord is one row of the append-only log. (aggregate_id, sequence) is unique.
type eventRecord struct {
	Position    int64     `gorm:"primaryKey;autoIncrement;column:position"`
	AggregateID uuid.UUID `gorm:"column:aggregate_id;type:uuid;not null;uniqueIndex:idx_enrollment_events_stream,priority:1"`
	Sequence    int64     `gorm:"column:sequence;not null;uniqueIndex:idx_enrollment_events_stream,priority:2"`
	Type        string    `gorm:"column:type;size:128;not null;index"`
	Payload     []byte    `gorm:"column:payload;type:jsonb;not null"`
	OccurredAt  time.Time `gorm:"column:occurred_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (eventRecord) TableName() string { return "enrollment_events" }

// Load returns the stream of one enrollment in sequence order. Unknown event types
// come back without a payload; the aggregate refuses to replay them.
func (s *EventStore) Load(ctx context.Context, id domain.EnrollmentID) ([]domain.DomainEvent, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []eventRecord
	if err := s.db.WithContext(ctx).
		Where("aggregate_id = ?", id.UUID()).
		Order("sequence ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]domain.DomainEvent, 0, len(records))
	for i := range records {
		evt, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// Append inserts events when the stream is still at expectedVersion.
func (s *EventStore) Append(ctx context.Context, id domain.EnrollmentID, expectedVersion uint64, events []domain.DomainEvent) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	records := make([]eventRecord, 0, len(events))
	for i, evt := range events {
		if evt.AggregateID != id {
			return fmt.Errorf("append to %s: event belongs to %s", id, evt.AggregateID)
		}
		if evt.Sequence != expectedVersion+uint64(i)+1 {
			return fmt.Errorf("append to %s: expected sequence %d, got %d", id, expectedVersion+uint64(i)+1, evt.Sequence)
		}
		record, err := toEventRecord(evt)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", feedLockKey).Error; err != nil {
			return err
		}
		var current int64
		if err := tx.Model(&eventRecord{}).
			Where("aggregate_id = ?", id.UUID()).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&current).Error; err != nil {
			return err
		}
		if uint64(current) != expectedVersion {
			return ports.ErrConcurrencyConflict
		}
		return tx.Create(&records).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrConcurrencyConflict
	}
	return err
}

// ReadAll pages through the global feed. Unknown event types come back without a payload.
func (s *EventStore) ReadAll(ctx context.Context, after uint64, limit int) ([]ports.StoredEvent, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("position > ?", int64(after)).Order("position ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []eventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	stored := make([]ports.StoredEvent, 0, len(records))
	for i := range records {
		rec := records[i]
		evt, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		stored = append(stored, ports.StoredEvent{Position: uint64(rec.Position), Type: rec.Type, Event: evt})
	}
	return stored, nil
}

func (s *EventStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres event store not configured")
	}
	return nil
}

func toEventRecord(evt domain.DomainEvent) (eventRecord, error) {
	name, payload, err := domain.EncodeEvent(evt.Payload)
	if err != nil {
		return eventRecord{}, err
	}
	return eventRecord{
		AggregateID: evt.AggregateID.UUID(),
		Sequence:    int64(evt.Sequence),
		Type:        name,
		Payload:     payload,
		OccurredAt:  evt.Timestamp,
	}, nil
}

// toDomain leaves Payload nil for event types this build does not know.
func (r eventRecord) toDomain() (domain.DomainEvent, error) {
	evt := domain.DomainEvent{
		AggregateID: domain.EnrollmentIDFromUUID(r.AggregateID),
		Sequence:    uint64(r.Sequence),
		Timestamp:   r.OccurredAt,
	}
	payload, err := domain.DecodeEvent(r.Type, r.Payload)
	switch {
	case errors.Is(err, domain.ErrUnknownEventType):
		return evt, nil
	case err != nil:
		return domain.DomainEvent{}, err
	}
	evt.Payload = payload
	return evt, nil
}
