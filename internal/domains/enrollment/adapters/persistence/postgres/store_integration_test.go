//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	enrollmentpg "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/persistence/postgres"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
	"github.com/Apurer/lecturer-recruitment/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("recruitment_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

var now = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

func seedCampaign(t *testing.T, db *gorm.DB) domain.Campaign {
	t.Helper()
	campaign := domain.Campaign{
		ID:      7,
		Name:    "Spring 2026",
		StartAt: now.Add(-7 * 24 * time.Hour),
		EndAt:   now.Add(30 * 24 * time.Hour),
		Trainings: []domain.Training{
			{ID: 1, City: "Kraków", Address: "Main Square 1", StartAt: now.Add(72 * time.Hour), EndAt: now.Add(76 * time.Hour), CoordinatorID: 42, CampaignID: 7},
			{ID: 2, City: "Warszawa", Address: "Marszałkowska 10", StartAt: now.Add(240 * time.Hour), EndAt: now.Add(244 * time.Hour), CoordinatorID: 42, CampaignID: 7},
		},
	}
	require.NoError(t, enrollmentpg.NewCampaignRepository(db).Put(context.Background(), campaign))
	return campaign
}

func submittedEvents(t *testing.T, campaign domain.Campaign) (domain.EnrollmentID, []domain.DomainEvent) {
	t.Helper()
	id := domain.NewEnrollmentID()
	e := domain.NewEnrollment(id)
	require.NoError(t, e.SubmitRecruitmentForm(domain.SubmitRecruitmentForm{
		EnrollmentID:             id,
		FullName:                 "Anna Nowak",
		Email:                    "anna@example.com",
		PhoneNumber:              "+48 600 000 000",
		AboutMe:                  "Teacher",
		Region:                   "Małopolska",
		PreferredLecturingCities: []string{"Kraków", "Tarnów"},
		PreferredTrainingIDs:     []domain.TrainingID{1, 2},
		GdprConsentGiven:         true,
	}, campaign.Trainings, &campaign, now))
	return id, e.Uncommitted()
}

func TestEventStore_AppendLoadAndConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	campaign := seedCampaign(t, db)
	store := enrollmentpg.NewEventStore(db)

	id, events := submittedEvents(t, campaign)
	require.NoError(t, store.Append(ctx, id, 0, events))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, loaded, len(events))
	assert.Equal(t, uint64(1), loaded[0].Sequence)
	assert.Equal(t, domain.EventRecruitmentFormSubmitted, loaded[0].Name())
	assert.True(t, loaded[0].Timestamp.Equal(now))

	err = store.Append(ctx, id, 0, events)
	assert.ErrorIs(t, err, ports.ErrConcurrencyConflict)

	feed, err := store.ReadAll(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, feed, len(events))
	assert.Equal(t, domain.EventRecruitmentFormSubmitted, feed[0].Type)

	rest, err := store.ReadAll(ctx, feed[len(feed)-1].Position, 10)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestEventStore_UnknownEventTypeLoadsWithoutPayload(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	campaign := seedCampaign(t, db)
	store := enrollmentpg.NewEventStore(db)

	id, events := submittedEvents(t, campaign)
	require.NoError(t, store.Append(ctx, id, 0, events))
	require.NoError(t, db.Exec(
		"INSERT INTO enrollment_events (aggregate_id, sequence, type, payload, occurred_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id.UUID(), len(events)+1, "enrollment.something_new", []byte(`{}`), now, now,
	).Error)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, loaded, len(events)+1)
	assert.Nil(t, loaded[len(events)].Payload)
	assert.Equal(t, uint64(len(events)+1), loaded[len(events)].Sequence)

	_, err = domain.Rehydrate(id, loaded)
	assert.Error(t, err)

	feed, err := store.ReadAll(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, feed, len(events)+1)
	assert.Equal(t, "enrollment.something_new", feed[len(events)].Type)
	assert.Nil(t, feed[len(events)].Event.Payload)
}

func TestReadModelStore_SaveListAndCheckpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	campaign := seedCampaign(t, db)
	store := enrollmentpg.NewReadModelStore(db)

	id, events := submittedEvents(t, campaign)
	model := readmodel.EnrollmentReadModel{
		ID:    id,
		State: domain.Project(events),
		Campaign: &readmodel.CampaignSummary{
			ID: campaign.ID, Name: campaign.Name, StartAt: campaign.StartAt, EndAt: campaign.EndAt,
		},
		PreferredTrainings: []readmodel.TrainingSummary{{ID: 1, City: "Kraków"}, {ID: 2, City: "Warszawa"}},
		UpdatedAt:          now,
	}
	require.NoError(t, store.Save(ctx, model))
	require.NoError(t, store.Save(ctx, model))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Anna Nowak", got.State.FullName)
	assert.Equal(t, []domain.TrainingID{1, 2}, got.State.PreferredTrainingIDs)
	assert.Equal(t, uint64(1), got.LastSequence())
	require.NotNil(t, got.Campaign)
	assert.Equal(t, "Spring 2026", got.Campaign.Name)

	missing, err := store.Get(ctx, domain.NewEnrollmentID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.List(ctx, readmodel.StoreQuery{City: "kraków"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	rights := true
	list, err = store.List(ctx, readmodel.StoreQuery{HasLecturerRights: &rights})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, store.SaveCheckpoint(ctx, 12))
	require.NoError(t, store.SaveCheckpoint(ctx, 15))
	position, err := store.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), position)

	require.NoError(t, store.Reset(ctx))
	position, err = store.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Zero(t, position)
	got, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCatalogAndIdempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	seedCampaign(t, db)

	trainings := enrollmentpg.NewTrainingRepository(db)
	found, err := trainings.GetByIDs(ctx, []domain.TrainingID{2, 1, 99})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, domain.TrainingID(1), found[0].ID)
	assert.Equal(t, domain.CampaignID(7), found[1].CampaignID)

	missing, err := trainings.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	campaigns := enrollmentpg.NewCampaignRepository(db)
	all, err := campaigns.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Trainings, 2)

	keys := enrollmentpg.NewIdempotencyStore(db)
	id := domain.NewEnrollmentID()
	saved, err := keys.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", EnrollmentID: id})
	require.NoError(t, err)
	assert.Equal(t, id, saved.EnrollmentID)

	again, err := keys.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", EnrollmentID: id})
	require.NoError(t, err)
	assert.Equal(t, id, again.EnrollmentID)

	_, err = keys.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", EnrollmentID: id})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	purged, err := keys.PurgeBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	gone, err := keys.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
