package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

const tracerName = "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/observability/service"

// Service decorates the enrollment application port with tracing, logging, and metrics.
type Service struct {
	inner   application.Port
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner application.Port, opts ...Option) application.Port {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) SubmitRecruitmentForm(ctx context.Context, input types.SubmitRecruitmentFormInput) (*types.CommandResult, error) {
	const command = "SubmitRecruitmentForm"
	ctx, span := s.startSpan(ctx, "Service."+command, attribute.Int("enrollment.preferred_trainings", len(input.Form.PreferredTrainingIDs)))
	defer span.End()

	s.logInfo(ctx, "submitting recruitment form", slog.Bool("idempotent", input.IdempotencyKey != ""))
	result, err := s.inner.SubmitRecruitmentForm(ctx, input)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err)
	}
	s.committed(ctx, span, command, result)
	return result, nil
}

func (s *Service) AcceptTrainingInvitation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordAcceptedTrainingInvitation) (*types.CommandResult, error) {
	const command = "AcceptTrainingInvitation"
	ctx, span := s.startSpan(ctx, "Service."+command,
		attribute.String("enrollment.id", cmd.EnrollmentID.String()),
		attribute.Int64("training.id", int64(cmd.SelectedTrainingID)),
		attribute.Int64("user.id", int64(recordedBy)),
	)
	defer span.End()

	result, err := s.inner.AcceptTrainingInvitation(ctx, recordedBy, cmd)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err, slog.String("enrollment.id", cmd.EnrollmentID.String()))
	}
	s.committed(ctx, span, command, result)
	return result, nil
}

func (s *Service) RefuseTrainingInvitation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordRefusedTrainingInvitation) (*types.CommandResult, error) {
	const command = "RefuseTrainingInvitation"
	ctx, span := s.startSpan(ctx, "Service."+command,
		attribute.String("enrollment.id", cmd.EnrollmentID.String()),
		attribute.Int64("user.id", int64(recordedBy)),
	)
	defer span.End()

	result, err := s.inner.RefuseTrainingInvitation(ctx, recordedBy, cmd)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err, slog.String("enrollment.id", cmd.EnrollmentID.String()))
	}
	s.committed(ctx, span, command, result)
	return result, nil
}

func (s *Service) RecordTrainingResults(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordTrainingResults) (*types.CommandResult, error) {
	const command = "RecordTrainingResults"
	ctx, span := s.startSpan(ctx, "Service."+command,
		attribute.String("enrollment.id", cmd.EnrollmentID.String()),
		attribute.Int64("training.id", int64(cmd.TrainingID)),
		attribute.String("training.result", string(cmd.Result)),
	)
	defer span.End()

	result, err := s.inner.RecordTrainingResults(ctx, recordedBy, cmd)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err, slog.String("enrollment.id", cmd.EnrollmentID.String()))
	}
	s.committed(ctx, span, command, result)
	return result, nil
}

func (s *Service) RecordResignation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordResignation) (*types.CommandResult, error) {
	const command = "RecordResignation"
	ctx, span := s.startSpan(ctx, "Service."+command,
		attribute.String("enrollment.id", cmd.EnrollmentID.String()),
		attribute.String("resignation.type", string(cmd.ResignationType)),
	)
	defer span.End()

	result, err := s.inner.RecordResignation(ctx, recordedBy, cmd)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err, slog.String("enrollment.id", cmd.EnrollmentID.String()))
	}
	s.committed(ctx, span, command, result)
	return result, nil
}

func (s *Service) RecordContact(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordContact) (*types.CommandResult, error) {
	const command = "RecordContact"
	ctx, span := s.startSpan(ctx, "Service."+command,
		attribute.String("enrollment.id", cmd.EnrollmentID.String()),
		attribute.String("contact.channel", string(cmd.Channel)),
	)
	defer span.End()

	result, err := s.inner.RecordContact(ctx, recordedBy, cmd)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err, slog.String("enrollment.id", cmd.EnrollmentID.String()))
	}
	s.committed(ctx, span, command, result)
	return result, nil
}

func (s *Service) SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error) {
	const command = "SendTrainingReminder"
	ctx, span := s.startSpan(ctx, "Service."+command,
		attribute.String("enrollment.id", cmd.EnrollmentID.String()),
		attribute.Int64("training.id", int64(cmd.TrainingID)),
	)
	defer span.End()

	result, err := s.inner.SendTrainingReminder(ctx, cmd)
	if err != nil {
		return nil, s.rejected(ctx, span, command, err, slog.String("enrollment.id", cmd.EnrollmentID.String()))
	}
	s.metrics.recordCommitted(ctx, command)
	span.SetAttributes(attribute.Bool("email.sent", result.Sent))
	if result.Sent {
		s.metrics.recordEmail(ctx, domain.EventEmailSent)
		s.logInfo(ctx, "training reminder sent", slog.String("enrollment.id", cmd.EnrollmentID.String()))
	} else {
		s.metrics.recordEmail(ctx, domain.EventEmailSendingFailed)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "training reminder not delivered",
			slog.String("enrollment.id", cmd.EnrollmentID.String()),
			slog.String("cause", result.FailureCause),
		)
	}
	return result, nil
}

func (s *Service) GetEnrollment(ctx context.Context, id domain.EnrollmentID) (*readmodel.EnrollmentView, error) {
	ctx, span := s.startSpan(ctx, "Service.GetEnrollment", attribute.String("enrollment.id", id.String()))
	defer span.End()

	view, err := s.inner.GetEnrollment(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get enrollment", slog.String("enrollment.id", id.String()))
	}
	return view, nil
}

func (s *Service) ListEnrollments(ctx context.Context, filter readmodel.Filter) (*readmodel.Page, error) {
	ctx, span := s.startSpan(ctx, "Service.ListEnrollments",
		attribute.String("list.sort", string(filter.Sort)),
		attribute.Int("list.limit", filter.Limit),
	)
	defer span.End()

	page, err := s.inner.ListEnrollments(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list enrollments")
	}
	span.SetAttributes(attribute.Int("list.total", page.Total), attribute.Int("list.count", len(page.Items)))
	return page, nil
}

func (s *Service) GetHistory(ctx context.Context, id domain.EnrollmentID) ([]domain.DomainEvent, error) {
	ctx, span := s.startSpan(ctx, "Service.GetHistory", attribute.String("enrollment.id", id.String()))
	defer span.End()

	events, err := s.inner.GetHistory(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load enrollment history", slog.String("enrollment.id", id.String()))
	}
	span.SetAttributes(attribute.Int("history.length", len(events)))
	return events, nil
}

func (s *Service) committed(ctx context.Context, span trace.Span, command string, result *types.CommandResult) {
	s.metrics.recordCommitted(ctx, command)
	if result == nil {
		return
	}
	for _, name := range result.Events {
		if name == domain.EventEmailSent || name == domain.EventEmailSendingFailed {
			s.metrics.recordEmail(ctx, name)
		}
	}
	span.SetAttributes(
		attribute.String("enrollment.id", result.EnrollmentID.String()),
		attribute.Int64("enrollment.version", int64(result.Version)),
		attribute.StringSlice("enrollment.events", result.Events),
	)
	s.logInfo(ctx, "enrollment command committed",
		slog.String("command", command),
		slog.String("enrollment.id", result.EnrollmentID.String()),
		slog.Uint64("version", result.Version),
		slog.Any("events", result.Events),
		slog.Bool("replayed", result.Replayed),
	)
}

// rejected logs rule violations at info level; anything else is an error.
func (s *Service) rejected(ctx context.Context, span trace.Span, command string, err error, attrs ...slog.Attr) error {
	kind := "internal"
	if derr, ok := domain.AsError(err); ok {
		kind = string(derr.Kind)
		if derr.Code != "" {
			attrs = append(attrs, slog.String("code", derr.Code))
		}
	}
	s.metrics.recordRejected(ctx, command, kind)
	attrs = append(attrs, slog.String("command", command), slog.String("kind", kind))
	if kind == "internal" {
		return s.handleError(ctx, span, err, "enrollment command failed", attrs...)
	}
	span.SetAttributes(attribute.String("error.kind", kind))
	s.logInfo(ctx, "enrollment command rejected", append(attrs, slog.String("reason", err.Error()))...)
	return err
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	commandsCommitted metric.Int64Counter
	commandsRejected  metric.Int64Counter
	emailsSent        metric.Int64Counter
	emailsFailed      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	committed, _ := m.Int64Counter("enrollment.commands.committed", metric.WithDescription("Number of enrollment commands that appended events"))
	rejected, _ := m.Int64Counter("enrollment.commands.rejected", metric.WithDescription("Number of enrollment commands that failed"))
	sent, _ := m.Int64Counter("enrollment.emails.sent", metric.WithDescription("Number of candidate emails delivered"))
	failed, _ := m.Int64Counter("enrollment.emails.failed", metric.WithDescription("Number of candidate emails that could not be delivered"))
	return serviceMetrics{
		commandsCommitted: committed,
		commandsRejected:  rejected,
		emailsSent:        sent,
		emailsFailed:      failed,
	}
}

func (m serviceMetrics) recordCommitted(ctx context.Context, command string) {
	addCounter(ctx, m.commandsCommitted, 1, attribute.String("command", command))
}

func (m serviceMetrics) recordRejected(ctx context.Context, command, kind string) {
	addCounter(ctx, m.commandsRejected, 1, attribute.String("command", command), attribute.String("error.kind", kind))
}

func (m serviceMetrics) recordEmail(ctx context.Context, event string) {
	if event == domain.EventEmailSent {
		addCounter(ctx, m.emailsSent, 1)
		return
	}
	addCounter(ctx, m.emailsFailed, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ application.Port = (*Service)(nil)
