package ports

import (
	"context"
	"errors"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// ErrConcurrencyConflict is returned by Append when another writer advanced the stream first.
var ErrConcurrencyConflict = errors.New("enrollment stream was modified concurrently")

// StoredEvent is a committed event together with its position in the global feed.
// Event.Payload is nil when Type is not known to this build.
type StoredEvent struct {
	Position uint64
	Type     string
	Event    domain.DomainEvent
}

// EventStore is the append-only log of enrollment events.
type EventStore interface {
	// Load returns the full history of one enrollment in sequence order; empty when unknown.
	// Events of types this build does not know carry a nil Payload.
	Load(ctx context.Context, id domain.EnrollmentID) ([]domain.DomainEvent, error)
	// Append commits events only if the stream is still at expectedVersion,
	// otherwise it returns ErrConcurrencyConflict and stores nothing.
	Append(ctx context.Context, id domain.EnrollmentID, expectedVersion uint64, events []domain.DomainEvent) error
	// ReadAll pages through every committed event with Position > after, ordered by Position.
	ReadAll(ctx context.Context, after uint64, limit int) ([]StoredEvent, error)
}
