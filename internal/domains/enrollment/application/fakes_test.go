package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/memory"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
	"github.com/Apurer/lecturer-recruitment/internal/platform/clock"
)

var (
	testLoc     = time.FixedZone("CET", 3600)
	testNow     = time.Date(2026, time.March, 10, 12, 0, 0, 0, testLoc)
	coordinator = domain.UserID(42)
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []domain.EmailMessage
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg domain.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []domain.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.EmailMessage(nil), m.sent...)
}

type scheduledReminder struct {
	at  time.Time
	cmd domain.SendTrainingReminder
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledReminder
}

func (s *recordingScheduler) ScheduleTrainingReminder(_ context.Context, at time.Time, cmd domain.SendTrainingReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledReminder{at: at, cmd: cmd})
	return nil
}

// racingStore lets another writer commit right before the first appends it sees.
type racingStore struct {
	ports.EventStore
	mu          sync.Mutex
	races       int
	appendCalls int
	interfere   func(ctx context.Context, id domain.EnrollmentID) error
}

func (s *racingStore) Append(ctx context.Context, id domain.EnrollmentID, expectedVersion uint64, events []domain.DomainEvent) error {
	s.mu.Lock()
	s.appendCalls++
	race := s.races > 0
	if race {
		s.races--
	}
	s.mu.Unlock()
	if race {
		if s.interfere == nil {
			return ports.ErrConcurrencyConflict
		}
		if err := s.interfere(ctx, id); err != nil {
			return err
		}
	}
	return s.EventStore.Append(ctx, id, expectedVersion, events)
}

type harness struct {
	service   *Service
	events    *memory.EventStore
	readModel *memory.ReadModelStore
	runner    *readmodel.Runner
	clock     *clock.Fake
	mailer    *recordingMailer
	scheduler *recordingScheduler
	training1 domain.Training
	training2 domain.Training
	campaign  domain.Campaign
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	return newHarnessWithStore(t, nil, opts...)
}

func newHarnessWithStore(t *testing.T, wrap func(ports.EventStore) ports.EventStore, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		events:    memory.NewEventStore(),
		readModel: memory.NewReadModelStore(),
		clock:     clock.NewFake(testNow),
		mailer:    &recordingMailer{},
		scheduler: &recordingScheduler{},
	}
	h.training1 = domain.Training{ID: 1, City: "Kraków", Address: "Rynek Główny 1", StartAt: testNow.Add(72 * time.Hour), EndAt: testNow.Add(76 * time.Hour), CoordinatorID: coordinator}
	h.training2 = domain.Training{ID: 2, City: "Tarnów", Address: "Wałowa 10", StartAt: testNow.Add(240 * time.Hour), EndAt: testNow.Add(244 * time.Hour), CoordinatorID: coordinator}
	h.campaign = domain.Campaign{
		ID:        7,
		Name:      "Spring 2026",
		StartAt:   testNow.AddDate(0, -1, 0),
		EndAt:     testNow.AddDate(0, 2, 0),
		Trainings: []domain.Training{h.training1, h.training2},
	}
	catalog := memory.NewCatalog(h.campaign)
	h.training1.CampaignID, h.training2.CampaignID = 7, 7

	var store ports.EventStore = h.events
	if wrap != nil {
		store = wrap(h.events)
	}
	projector := readmodel.NewProjector(h.readModel, h.events, catalog.Trainings(), catalog.Campaigns())
	h.runner = readmodel.NewRunner(projector, h.events, h.readModel)
	queries := readmodel.NewQueries(h.readModel, catalog.Campaigns(), h.clock)

	base := []Option{WithMailer(h.mailer), WithScheduler(h.scheduler)}
	h.service = NewService(Dependencies{
		Events:    store,
		Trainings: catalog.Trainings(),
		Campaigns: catalog.Campaigns(),
		Clock:     h.clock,
		Queries:   queries,
	}, append(base, opts...)...)
	return h
}

func (h *harness) form(ids ...domain.TrainingID) domain.SubmitRecruitmentForm {
	return domain.SubmitRecruitmentForm{
		FullName:                 "Anna Kowalska",
		Email:                    "anna@example.com",
		PhoneNumber:              "+48 600 100 200",
		Region:                   "Małopolska",
		PreferredLecturingCities: []string{"Kraków"},
		PreferredTrainingIDs:     ids,
		GdprConsentGiven:         true,
	}
}

func (h *harness) history(t *testing.T, id domain.EnrollmentID) []string {
	t.Helper()
	events, err := h.events.Load(context.Background(), id)
	require.NoError(t, err)
	names := make([]string, 0, len(events))
	for _, evt := range events {
		names = append(names, evt.Name())
	}
	return names
}

func (h *harness) project(t *testing.T) {
	t.Helper()
	_, err := h.runner.CatchUp(context.Background())
	require.NoError(t, err)
}

var errMailDown = errors.New("smtp: connection refused")
