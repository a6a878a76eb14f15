package email

import (
	"context"
	"io"
	"log/slog"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var _ ports.EmailService = (*LogSender)(nil)

// LogSender writes messages to the log instead of delivering them. Used when no relay is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "email not delivered, logging only",
		slog.String("recipient", msg.Recipient),
		slog.String("subject", msg.Subject),
		slog.Int("body.bytes", len(msg.Body)),
	)
	return nil
}
