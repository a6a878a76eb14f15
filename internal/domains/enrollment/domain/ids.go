package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// EnrollmentID identifies one candidate's enrollment for its whole lifetime.
type EnrollmentID struct {
	value uuid.UUID
}

// NewEnrollmentID generates a fresh random identifier.
func NewEnrollmentID() EnrollmentID {
	return EnrollmentID{value: uuid.New()}
}

// submissionNamespace scopes ids derived from client idempotency keys.
var submissionNamespace = uuid.MustParse("6f1c9d3a-4b7e-5a20-9c61-2e8d4f0b7a15")

// EnrollmentIDForKey derives a stable id from an idempotency key, so every retry
// of one submission targets the same stream.
func EnrollmentIDForKey(key string) EnrollmentID {
	return EnrollmentID{value: uuid.NewSHA1(submissionNamespace, []byte(key))}
}

// ParseEnrollmentID parses the canonical string form.
func ParseEnrollmentID(raw string) (EnrollmentID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return EnrollmentID{}, fmt.Errorf("invalid enrollment id %q: %w", raw, err)
	}
	return EnrollmentID{value: id}, nil
}

// EnrollmentIDFromUUID wraps a stored value.
func EnrollmentIDFromUUID(id uuid.UUID) EnrollmentID {
	return EnrollmentID{value: id}
}

// MustParseEnrollmentID is ParseEnrollmentID for constants in tests and fixtures.
func MustParseEnrollmentID(raw string) EnrollmentID {
	id, err := ParseEnrollmentID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (id EnrollmentID) String() string { return id.value.String() }

// IsZero reports whether the id was never assigned.
func (id EnrollmentID) IsZero() bool { return id.value == uuid.Nil }

// UUID exposes the underlying value for persistence adapters.
func (id EnrollmentID) UUID() uuid.UUID { return id.value }

// MarshalText implements encoding.TextMarshaler.
func (id EnrollmentID) MarshalText() ([]byte, error) {
	return []byte(id.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *EnrollmentID) UnmarshalText(data []byte) error {
	parsed, err := ParseEnrollmentID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// TrainingID identifies a training scheduled within a campaign.
type TrainingID int64

func (id TrainingID) String() string { return strconv.FormatInt(int64(id), 10) }

// CampaignID identifies a recruitment campaign.
type CampaignID int64

func (id CampaignID) String() string { return strconv.FormatInt(int64(id), 10) }

// UserID identifies a coordinator or staff member recording an event.
type UserID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }
