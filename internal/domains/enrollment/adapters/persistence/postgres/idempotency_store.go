package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var (
	_ ports.IdempotencyStore  = (*IdempotencyStore)(nil)
	_ ports.IdempotencyPurger = (*IdempotencyStore)(nil)
)

// IdempotencyStore keeps submission keys in enrollment_idempotency_keys.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

type idempotencyKey struct {
	Key          string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash  string    `gorm:"column:request_hash;size:64;not null"`
	EnrollmentID uuid.UUID `gorm:"column:enrollment_id;type:uuid;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (idempotencyKey) TableName() string { return "enrollment_idempotency_keys" }

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	var row idempotencyKey
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	return row.toPort(), nil
}

// Save inserts with ON CONFLICT DO NOTHING and then reads the winner back,
// so concurrent retries of one submission settle on a single record.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	row := idempotencyKey{
		Key:          record.Key,
		RequestHash:  record.RequestHash,
		EnrollmentID: record.EnrollmentID.UUID(),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("save idempotency key: %w", err)
	}
	stored, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("idempotency key %q vanished after insert", record.Key)
	}
	if stored.RequestHash != record.RequestHash || stored.EnrollmentID != record.EnrollmentID {
		return stored, ports.ErrIdempotencyConflict
	}
	return stored, nil
}

func (s *IdempotencyStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("postgres idempotency store not configured")
	}
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&idempotencyKey{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r idempotencyKey) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:          r.Key,
		RequestHash:  r.RequestHash,
		EnrollmentID: domain.EnrollmentIDFromUUID(r.EnrollmentID),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
