package ports

import (
	"context"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// EmailService delivers rendered messages. A returned error means the message was not sent.
type EmailService interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}
