package application

import (
	"context"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

// Port defines the enrollment use cases exposed to adapters.
type Port interface {
	SubmitRecruitmentForm(ctx context.Context, input types.SubmitRecruitmentFormInput) (*types.CommandResult, error)
	AcceptTrainingInvitation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordAcceptedTrainingInvitation) (*types.CommandResult, error)
	RefuseTrainingInvitation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordRefusedTrainingInvitation) (*types.CommandResult, error)
	RecordTrainingResults(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordTrainingResults) (*types.CommandResult, error)
	RecordResignation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordResignation) (*types.CommandResult, error)
	RecordContact(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordContact) (*types.CommandResult, error)
	SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error)
	GetEnrollment(ctx context.Context, id domain.EnrollmentID) (*readmodel.EnrollmentView, error)
	ListEnrollments(ctx context.Context, filter readmodel.Filter) (*readmodel.Page, error)
	GetHistory(ctx context.Context, id domain.EnrollmentID) ([]domain.DomainEvent, error)
}

var _ Port = (*Service)(nil)
