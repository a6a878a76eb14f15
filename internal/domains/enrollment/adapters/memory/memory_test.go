package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/memory"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

var now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func contact(id domain.EnrollmentID, seq uint64) domain.DomainEvent {
	return domain.DomainEvent{
		AggregateID: id,
		Sequence:    seq,
		Timestamp:   now.Add(time.Duration(seq) * time.Minute),
		Payload:     domain.ContactOccured{RecordedBy: 42, Channel: domain.ChannelOutgoingPhone, Content: "call"},
	}
}

func TestEventStoreAppendsAndFeedsInCommitOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	a, b := domain.NewEnrollmentID(), domain.NewEnrollmentID()

	require.NoError(t, store.Append(ctx, a, 0, []domain.DomainEvent{contact(a, 1), contact(a, 2)}))
	require.NoError(t, store.Append(ctx, b, 0, []domain.DomainEvent{contact(b, 1)}))
	require.NoError(t, store.Append(ctx, a, 2, []domain.DomainEvent{contact(a, 3)}))

	history, err := store.Load(ctx, a)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	feed, err := store.ReadAll(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 4)
	for i, stored := range feed {
		assert.Equal(t, uint64(i+1), stored.Position)
		assert.Equal(t, domain.EventContactOccured, stored.Type)
	}
	assert.Equal(t, b, feed[2].Event.AggregateID)

	page, err := store.ReadAll(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].Position)

	tail, err := store.ReadAll(ctx, 4, 10)
	require.NoError(t, err)
	assert.Empty(t, tail)
}

func TestEventStoreRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	id := domain.NewEnrollmentID()
	require.NoError(t, store.Append(ctx, id, 0, []domain.DomainEvent{contact(id, 1)}))

	err := store.Append(ctx, id, 0, []domain.DomainEvent{contact(id, 1)})
	assert.ErrorIs(t, err, ports.ErrConcurrencyConflict)

	err = store.Append(ctx, id, 1, []domain.DomainEvent{contact(id, 5)})
	assert.Error(t, err)

	history, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestIdempotencyStoreFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	store := memory.NewIdempotencyStore()
	id := domain.NewEnrollmentID()

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", EnrollmentID: id})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", EnrollmentID: id})
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, again.CreatedAt)

	stored, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "other", EnrollmentID: id})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "h", stored.RequestHash)

	purged, err := store.PurgeBefore(ctx, saved.CreatedAt)
	require.NoError(t, err)
	assert.Zero(t, purged)
	purged, err = store.PurgeBefore(ctx, saved.CreatedAt.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	missing, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadModelStoreFiltersAndResets(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReadModelStore()
	krakow := readmodel.EnrollmentReadModel{ID: domain.NewEnrollmentID()}
	krakow.State.Region = "Małopolska"
	krakow.State.CampaignID = 7
	krakow.State.PreferredLecturingCities = []string{"Kraków"}
	gdansk := readmodel.EnrollmentReadModel{ID: domain.NewEnrollmentID()}
	gdansk.State.Region = "Pomorskie"
	gdansk.State.CampaignID = 8
	gdansk.State.PreferredLecturingCities = []string{"Gdańsk"}
	gdansk.State.HasLecturerRights = true
	require.NoError(t, store.Save(ctx, krakow))
	require.NoError(t, store.Save(ctx, gdansk))
	require.NoError(t, store.SaveCheckpoint(ctx, 9))

	byCity, err := store.List(ctx, readmodel.StoreQuery{City: "KRAKÓW"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, krakow.ID, byCity[0].ID)

	campaign := domain.CampaignID(8)
	rights := true
	filtered, err := store.List(ctx, readmodel.StoreQuery{CampaignID: &campaign, HasLecturerRights: &rights, Region: "pomorskie"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, gdansk.ID, filtered[0].ID)

	filtered[0].State.PreferredLecturingCities[0] = "mutated"
	row, err := store.Get(ctx, gdansk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gdańsk", row.State.PreferredLecturingCities[0])

	require.NoError(t, store.Reset(ctx))
	checkpoint, err := store.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Zero(t, checkpoint)
	gone, err := store.Get(ctx, krakow.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCatalogResolvesTrainingsByID(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog(domain.Campaign{
		ID:   7,
		Name: "Spring 2026",
		Trainings: []domain.Training{
			{ID: 2, City: "Tarnów", StartAt: now.Add(48 * time.Hour)},
			{ID: 1, City: "Kraków", StartAt: now.Add(24 * time.Hour)},
		},
	})

	trainings, err := catalog.Trainings().GetByIDs(ctx, []domain.TrainingID{1, 2, 99})
	require.NoError(t, err)
	require.Len(t, trainings, 2)
	for _, tr := range trainings {
		assert.Equal(t, domain.CampaignID(7), tr.CampaignID)
	}

	missing, err := catalog.Trainings().GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	campaigns, err := catalog.Campaigns().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
}
