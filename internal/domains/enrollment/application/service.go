package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

const defaultRetryLimit = 3

// Dependencies are the ports the service cannot run without.
type Dependencies struct {
	Events    ports.EventStore
	Trainings ports.TrainingRepository
	Campaigns ports.CampaignRepository
	Clock     ports.Clock
	Queries   *readmodel.Queries
}

// Service orchestrates the enrollment use cases: load, decide, append, then side effects.
type Service struct {
	events       ports.EventStore
	trainings    ports.TrainingRepository
	campaigns    ports.CampaignRepository
	clock        ports.Clock
	queries      *readmodel.Queries
	mailer       ports.EmailService
	scheduler    ports.Scheduler
	idempotency  ports.IdempotencyStore
	retryLimit   int
	reminderLead time.Duration
	onCommit     func()
	logger       *slog.Logger
}

type Option func(*Service)

// WithMailer enables confirmation and reminder mails.
func WithMailer(m ports.EmailService) Option {
	return func(s *Service) { s.mailer = m }
}

// WithScheduler enables reminder scheduling after an accepted invitation.
func WithScheduler(sch ports.Scheduler) Option {
	return func(s *Service) { s.scheduler = sch }
}

// WithIdempotencyStore enables Idempotency-Key handling for form submissions.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithRetryLimit bounds load-decide-append attempts on concurrency conflicts.
func WithRetryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retryLimit = n
		}
	}
}

// WithReminderLead sets how long before a training the reminder is sent.
func WithReminderLead(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reminderLead = d
		}
	}
}

// WithCommitHook registers a callback run after every successful append.
func WithCommitHook(fn func()) Option {
	return func(s *Service) { s.onCommit = fn }
}

// WithLogger injects a slog logger for side-effect failures that do not fail the command.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the enrollment service with its dependencies.
func NewService(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		events:       deps.Events,
		trainings:    deps.Trainings,
		campaigns:    deps.Campaigns,
		clock:        deps.Clock,
		queries:      deps.Queries,
		retryLimit:   defaultRetryLimit,
		reminderLead: domain.DefaultReminderLead,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SubmitRecruitmentForm opens an enrollment and mails a confirmation whose outcome is recorded.
func (s *Service) SubmitRecruitmentForm(ctx context.Context, input types.SubmitRecruitmentFormInput) (*types.CommandResult, error) {
	form := input.Form
	key := strings.TrimSpace(input.IdempotencyKey)
	reserved := key != "" && s.idempotency != nil
	if reserved {
		if form.EnrollmentID.IsZero() {
			form.EnrollmentID = domain.EnrollmentIDForKey(key)
		}
		replayed, err := s.reserveSubmission(ctx, key, form)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}
	if form.EnrollmentID.IsZero() {
		form.EnrollmentID = domain.NewEnrollmentID()
	}

	trainings, err := s.trainings.GetByIDs(ctx, form.PreferredTrainingIDs)
	if err != nil {
		return nil, err
	}
	var campaign *domain.Campaign
	if len(trainings) > 0 {
		if campaign, err = s.campaigns.GetByID(ctx, trainings[0].CampaignID); err != nil {
			return nil, err
		}
	}

	committed, err := s.execute(ctx, form.EnrollmentID, func(e *domain.Enrollment, now time.Time) error {
		return e.SubmitRecruitmentForm(form, trainings, campaign, now)
	})
	if reserved && errors.Is(err, domain.ErrEnrollmentAlreadySubmitted) {
		// A concurrent retry of the same submission committed first.
		return &types.CommandResult{EnrollmentID: form.EnrollmentID, Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}
	result := types.NewCommandResult(form.EnrollmentID, committed.version, committed.events)

	if msg, err := renderConfirmation(form); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "confirmation mail not rendered",
			slog.String("enrollment.id", form.EnrollmentID.String()), slog.String("error", err.Error()))
	} else if outcome, ok := s.deliver(ctx, form.EnrollmentID, msg); ok {
		result.Version = outcome.version
		result.Events = append(result.Events, types.NewCommandResult(form.EnrollmentID, 0, outcome.events).Events...)
	}
	return result, nil
}

// reserveSubmission binds key to the form before anything is appended. It returns a
// result when an earlier submission under the same key is already committed.
func (s *Service) reserveSubmission(ctx context.Context, key string, form domain.SubmitRecruitmentForm) (*types.CommandResult, error) {
	fingerprint, err := FingerprintSubmission(form)
	if err != nil {
		return nil, err
	}
	record, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:          key,
		RequestHash:  fingerprint,
		EnrollmentID: form.EnrollmentID,
	})
	if err != nil {
		return nil, err
	}
	history, err := s.events.Load(ctx, record.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return &types.CommandResult{EnrollmentID: record.EnrollmentID, Replayed: true}, nil
	}
	return nil, nil
}

// AcceptTrainingInvitation records the acceptance and schedules the training reminder.
func (s *Service) AcceptTrainingInvitation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordAcceptedTrainingInvitation) (*types.CommandResult, error) {
	available, err := s.trainings.GetByIDs(ctx, []domain.TrainingID{cmd.SelectedTrainingID})
	if err != nil {
		return nil, err
	}
	committed, err := s.execute(ctx, cmd.EnrollmentID, func(e *domain.Enrollment, now time.Time) error {
		return e.RecordAcceptedTrainingInvitation(cmd, recordedBy, available, now)
	})
	if err != nil {
		return nil, err
	}
	if len(available) > 0 {
		s.scheduleReminder(ctx, cmd.EnrollmentID, available[0])
	}
	return types.NewCommandResult(cmd.EnrollmentID, committed.version, committed.events), nil
}

// RefuseTrainingInvitation records a refusal of the invitation as a whole.
func (s *Service) RefuseTrainingInvitation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordRefusedTrainingInvitation) (*types.CommandResult, error) {
	committed, err := s.execute(ctx, cmd.EnrollmentID, func(e *domain.Enrollment, now time.Time) error {
		available, err := s.trainings.GetByIDs(ctx, e.State().PreferredTrainingIDs)
		if err != nil {
			return err
		}
		return e.RecordRefusedTrainingInvitation(cmd, recordedBy, available, now)
	})
	if err != nil {
		return nil, err
	}
	return types.NewCommandResult(cmd.EnrollmentID, committed.version, committed.events), nil
}

// RecordTrainingResults records the coordinator's verdict after a training.
func (s *Service) RecordTrainingResults(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordTrainingResults) (*types.CommandResult, error) {
	attended, err := s.trainings.GetByID(ctx, cmd.TrainingID)
	if err != nil {
		return nil, err
	}
	attendedTraining := domain.Training{ID: cmd.TrainingID}
	var available []domain.Training
	if attended != nil {
		attendedTraining = *attended
		available = []domain.Training{*attended}
	}
	committed, err := s.execute(ctx, cmd.EnrollmentID, func(e *domain.Enrollment, now time.Time) error {
		return e.RecordTrainingResults(cmd, recordedBy, available, attendedTraining, now)
	})
	if err != nil {
		return nil, err
	}
	return types.NewCommandResult(cmd.EnrollmentID, committed.version, committed.events), nil
}

// RecordResignation records a permanent or temporary resignation.
func (s *Service) RecordResignation(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordResignation) (*types.CommandResult, error) {
	committed, err := s.execute(ctx, cmd.EnrollmentID, func(e *domain.Enrollment, now time.Time) error {
		return e.RecordResignation(cmd, recordedBy, now)
	})
	if err != nil {
		return nil, err
	}
	return types.NewCommandResult(cmd.EnrollmentID, committed.version, committed.events), nil
}

// RecordContact appends a contact to the enrollment's audit trail.
func (s *Service) RecordContact(ctx context.Context, recordedBy domain.UserID, cmd domain.RecordContact) (*types.CommandResult, error) {
	committed, err := s.execute(ctx, cmd.EnrollmentID, func(e *domain.Enrollment, now time.Time) error {
		return e.RecordContact(cmd, recordedBy, now)
	})
	if err != nil {
		return nil, err
	}
	return types.NewCommandResult(cmd.EnrollmentID, committed.version, committed.events), nil
}

// SendTrainingReminder mails the reminder when the enrollment still qualifies and records the outcome.
// A failed delivery is not an error: it is recorded as EmailSendingFailed.
func (s *Service) SendTrainingReminder(ctx context.Context, cmd domain.SendTrainingReminder) (*types.ReminderResult, error) {
	training, err := s.trainings.GetByID(ctx, cmd.TrainingID)
	if err != nil {
		return nil, err
	}
	history, err := s.events.Load(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}
	e, err := domain.Rehydrate(cmd.EnrollmentID, history)
	if err != nil {
		return nil, err
	}
	if err := e.CanSendTrainingReminder(cmd, training, s.reminderLead, s.clock.Now()); err != nil {
		return nil, err
	}
	msg, err := renderReminder(e.State(), *training, s.clock.Location())
	if err != nil {
		return nil, err
	}

	result := &types.ReminderResult{EnrollmentID: cmd.EnrollmentID, TrainingID: cmd.TrainingID}
	if s.mailer == nil {
		result.FailureCause = "no mailer configured"
		return result, nil
	}
	sendErr := s.mailer.Send(ctx, msg)
	if _, err := s.recordDelivery(ctx, cmd.EnrollmentID, msg, sendErr); err != nil {
		return nil, err
	}
	result.Sent = sendErr == nil
	if sendErr != nil {
		result.FailureCause = sendErr.Error()
	}
	return result, nil
}

// GetEnrollment reads the projection; it may lag behind the latest command.
func (s *Service) GetEnrollment(ctx context.Context, id domain.EnrollmentID) (*readmodel.EnrollmentView, error) {
	view, err := s.queries.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return view, nil
}

// ListEnrollments filters the projection with flags evaluated now.
func (s *Service) ListEnrollments(ctx context.Context, filter readmodel.Filter) (*readmodel.Page, error) {
	page, err := s.queries.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return page, nil
}

// GetHistory returns the committed event stream of one enrollment.
func (s *Service) GetHistory(ctx context.Context, id domain.EnrollmentID) ([]domain.DomainEvent, error) {
	history, err := s.events.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrCandidateNotFound
	}
	return history, nil
}

type commitResult struct {
	version uint64
	events  []domain.DomainEvent
}

// execute runs one load-decide-append cycle, redoing all of it when another writer wins.
func (s *Service) execute(ctx context.Context, id domain.EnrollmentID, decide func(*domain.Enrollment, time.Time) error) (commitResult, error) {
	for attempt := 1; ; attempt++ {
		history, err := s.events.Load(ctx, id)
		if err != nil {
			return commitResult{}, err
		}
		e, err := domain.Rehydrate(id, history)
		if err != nil {
			return commitResult{}, err
		}
		if err := decide(e, s.clock.Now()); err != nil {
			return commitResult{}, err
		}
		pending := e.Uncommitted()
		if len(pending) == 0 {
			return commitResult{version: e.Version()}, nil
		}
		err = s.events.Append(ctx, id, e.Version(), pending)
		if errors.Is(err, ports.ErrConcurrencyConflict) {
			if attempt >= s.retryLimit {
				return commitResult{}, fmt.Errorf("enrollment %s: gave up after %d attempts: %w", id, attempt, err)
			}
			continue
		}
		if err != nil {
			return commitResult{}, err
		}
		e.MarkCommitted()
		if s.onCommit != nil {
			s.onCommit()
		}
		return commitResult{version: e.Version(), events: pending}, nil
	}
}

// deliver sends msg and records its outcome. ok is false when nothing was recorded.
func (s *Service) deliver(ctx context.Context, id domain.EnrollmentID, msg domain.EmailMessage) (commitResult, bool) {
	if s.mailer == nil {
		return commitResult{}, false
	}
	sendErr := s.mailer.Send(ctx, msg)
	outcome, err := s.recordDelivery(ctx, id, msg, sendErr)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "email outcome not recorded",
			slog.String("enrollment.id", id.String()), slog.String("error", err.Error()))
		return commitResult{}, false
	}
	return outcome, true
}

// recordDelivery appends the mail outcome. Retries after a conflict only re-record, never resend.
func (s *Service) recordDelivery(ctx context.Context, id domain.EnrollmentID, msg domain.EmailMessage, sendErr error) (commitResult, error) {
	return s.execute(ctx, id, func(e *domain.Enrollment, now time.Time) error {
		if sendErr != nil {
			return e.RecordEmailSendingFailed(msg, sendErr.Error(), now)
		}
		return e.RecordEmailSent(msg, now)
	})
}

func (s *Service) scheduleReminder(ctx context.Context, id domain.EnrollmentID, training domain.Training) {
	if s.scheduler == nil {
		return
	}
	at := training.StartAt.Add(-s.reminderLead)
	if now := s.clock.Now(); at.Before(now) {
		at = now
	}
	cmd := domain.SendTrainingReminder{EnrollmentID: id, TrainingID: training.ID}
	if err := s.scheduler.ScheduleTrainingReminder(ctx, at, cmd); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "training reminder not scheduled",
			slog.String("enrollment.id", id.String()),
			slog.String("training.id", training.ID.String()),
			slog.String("error", err.Error()))
	}
}
