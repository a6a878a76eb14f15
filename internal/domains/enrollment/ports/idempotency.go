package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload or enrollment.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord associates a client-supplied key with the enrollment its submission created.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	EnrollmentID domain.EnrollmentID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdempotencyStore persists idempotency keys so form submissions can be retried safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record; if the key already exists with the same hash and enrollment, the stored record is returned.
	// When the key exists but points to a different request/enrollment, ErrIdempotencyConflict is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}

// IdempotencyPurger drops keys nobody will retry any more.
type IdempotencyPurger interface {
	// PurgeBefore deletes records created before cutoff and reports how many went.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
