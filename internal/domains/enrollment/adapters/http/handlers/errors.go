package handlers

import (
	"errors"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	apierrors "github.com/Apurer/lecturer-recruitment/internal/shared/errors"
)

// ProblemFromError maps enrollment errors onto problem details.
// Unmapped errors fall through to the responder's 500.
func ProblemFromError(err error) (apierrors.ProblemDetail, bool) {
	if derr, ok := domain.AsError(err); ok {
		var problem apierrors.ProblemDetail
		switch derr.Kind {
		case domain.KindValidation:
			problem = apierrors.NewValidationProblem(derr.FieldMap())
		case domain.KindNotFound:
			problem = apierrors.ErrNotFound
		default:
			problem = apierrors.ErrUnprocessable
		}
		return problem.WithDetail(derr.Message).WithCode(derr.Code), true
	}
	switch {
	case errors.Is(err, ports.ErrConcurrencyConflict):
		return apierrors.ErrConflict.WithDetail("the enrollment was modified concurrently, retry the request"), true
	case errors.Is(err, application.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail("Idempotency-Key was already used with a different form"), true
	}
	return apierrors.ProblemDetail{}, false
}
