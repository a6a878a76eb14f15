package readmodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

// Projector folds committed events into read model rows using the aggregate's own fold.
type Projector struct {
	store     Store
	events    ports.EventStore
	trainings ports.TrainingRepository
	campaigns ports.CampaignRepository
	logger    *slog.Logger
	metrics   projectorMetrics
	now       func() time.Time
}

type Option func(*Projector)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Projector) {
		p.logger = logger
	}
}

// WithMeter injects the meter used for projection counters.
func WithMeter(m metric.Meter) Option {
	return func(p *Projector) {
		p.metrics = newProjectorMetrics(m)
	}
}

// WithClock overrides the time used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Projector) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProjector wires a projector. events is used to rebuild a row when a gap is detected.
func NewProjector(store Store, events ports.EventStore, trainings ports.TrainingRepository, campaigns ports.CampaignRepository, opts ...Option) *Projector {
	p := &Projector{
		store:     store,
		events:    events,
		trainings: trainings,
		campaigns: campaigns,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Apply projects one stored event. Replays of already folded events are ignored,
// and a sequence gap rebuilds the row from the enrollment's full history.
func (p *Projector) Apply(ctx context.Context, stored ports.StoredEvent) error {
	evt := stored.Event
	if evt.Payload == nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "skipping unknown event type",
			slog.String("event.type", stored.Type),
			slog.String("enrollment.id", evt.AggregateID.String()),
			slog.Uint64("event.position", stored.Position))
		p.metrics.recordSkipped(ctx, stored.Type)
		return p.advanceVersion(ctx, evt)
	}

	existing, err := p.store.Get(ctx, evt.AggregateID)
	if err != nil {
		return fmt.Errorf("load projection %s: %w", evt.AggregateID, err)
	}
	var current uint64
	if existing != nil {
		current = existing.LastSequence()
	}
	switch {
	case evt.Sequence <= current:
		return nil
	case evt.Sequence != current+1:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "sequence gap in projection, rebuilding",
			slog.String("enrollment.id", evt.AggregateID.String()),
			slog.Uint64("projection.sequence", current),
			slog.Uint64("event.sequence", evt.Sequence))
		return p.Rebuild(ctx, evt.AggregateID)
	}

	model := EnrollmentReadModel{ID: evt.AggregateID}
	if existing != nil {
		model = *existing
	}
	model.State = domain.Evolve(model.State, evt)
	if _, ok := evt.Payload.(domain.RecruitmentFormSubmitted); ok || model.Campaign == nil {
		if err := p.denormalize(ctx, &model); err != nil {
			return err
		}
	}
	if err := p.save(ctx, model); err != nil {
		return err
	}
	p.metrics.recordApplied(ctx, evt.Name())
	return nil
}

// Rebuild replaces one enrollment's row with a fold of its full history.
func (p *Projector) Rebuild(ctx context.Context, id domain.EnrollmentID) error {
	if p.events == nil {
		return errors.New("projector has no event store to rebuild from")
	}
	history, err := p.events.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load history %s: %w", id, err)
	}
	if len(history) == 0 {
		return nil
	}
	model := EnrollmentReadModel{ID: id, State: domain.Project(history)}
	if err := p.denormalize(ctx, &model); err != nil {
		return err
	}
	if err := p.save(ctx, model); err != nil {
		return err
	}
	p.metrics.recordRebuilt(ctx)
	return nil
}

func (p *Projector) advanceVersion(ctx context.Context, evt domain.DomainEvent) error {
	existing, err := p.store.Get(ctx, evt.AggregateID)
	if err != nil {
		return fmt.Errorf("load projection %s: %w", evt.AggregateID, err)
	}
	if existing == nil || evt.Sequence != existing.LastSequence()+1 {
		return nil
	}
	model := *existing
	model.State = domain.Evolve(model.State, evt)
	return p.save(ctx, model)
}

func (p *Projector) denormalize(ctx context.Context, model *EnrollmentReadModel) error {
	if !model.State.Submitted {
		return nil
	}
	if p.trainings != nil && len(model.State.PreferredTrainingIDs) > 0 {
		trainings, err := p.trainings.GetByIDs(ctx, model.State.PreferredTrainingIDs)
		if err != nil {
			return fmt.Errorf("load trainings for %s: %w", model.ID, err)
		}
		summaries := make([]TrainingSummary, 0, len(model.State.PreferredTrainingIDs))
		for _, id := range model.State.PreferredTrainingIDs {
			for _, t := range trainings {
				if t.ID == id {
					summaries = append(summaries, summarizeTraining(t))
					break
				}
			}
		}
		model.PreferredTrainings = summaries
	}
	if p.campaigns != nil {
		campaign, err := p.campaigns.GetByID(ctx, model.State.CampaignID)
		if err != nil {
			return fmt.Errorf("load campaign for %s: %w", model.ID, err)
		}
		if campaign != nil {
			model.Campaign = summarizeCampaign(*campaign)
		}
	}
	return nil
}

func (p *Projector) save(ctx context.Context, model EnrollmentReadModel) error {
	model.UpdatedAt = p.now()
	if err := p.store.Save(ctx, model); err != nil {
		return fmt.Errorf("save projection %s: %w", model.ID, err)
	}
	return nil
}

type projectorMetrics struct {
	applied metric.Int64Counter
	skipped metric.Int64Counter
	rebuilt metric.Int64Counter
}

func newProjectorMetrics(m metric.Meter) projectorMetrics {
	if m == nil {
		return projectorMetrics{}
	}
	applied, _ := m.Int64Counter("enrollment.projection.events_applied", metric.WithDescription("Number of events folded into the read model"))
	skipped, _ := m.Int64Counter("enrollment.projection.events_skipped", metric.WithDescription("Number of events with unknown types"))
	rebuilt, _ := m.Int64Counter("enrollment.projection.rows_rebuilt", metric.WithDescription("Number of rows rebuilt after a sequence gap"))
	return projectorMetrics{applied: applied, skipped: skipped, rebuilt: rebuilt}
}

func (m projectorMetrics) recordApplied(ctx context.Context, eventType string) {
	if m.applied == nil {
		return
	}
	m.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", eventType)))
}

func (m projectorMetrics) recordSkipped(ctx context.Context, eventType string) {
	if m.skipped == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", eventType)))
}

func (m projectorMetrics) recordRebuilt(ctx context.Context) {
	if m.rebuilt == nil {
		return
	}
	m.rebuilt.Add(ctx, 1)
}
