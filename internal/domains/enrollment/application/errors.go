package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

// ErrIdempotencyConflict signals a reused idempotency key with a different form.
var ErrIdempotencyConflict = ports.ErrIdempotencyConflict

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, readmodel.ErrNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrCandidateNotFound, err)
	}
	return err
}
