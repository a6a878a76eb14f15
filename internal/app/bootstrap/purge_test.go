package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enrollmentmemory "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/memory"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

type countingPurger struct {
	ports.IdempotencyPurger
	calls atomic.Int32
}

func (p *countingPurger) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	p.calls.Add(1)
	return p.IdempotencyPurger.PurgeBefore(ctx, cutoff)
}

func TestPurgeIdempotencyKeysDropsExpiredKeys(t *testing.T) {
	store := enrollmentmemory.NewIdempotencyStore()
	_, err := store.Save(context.Background(), ports.IdempotencyRecord{Key: "k1", RequestHash: "h", EnrollmentID: domain.NewEnrollmentID()})
	require.NoError(t, err)

	purger := &countingPurger{IdempotencyPurger: store}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	future := func() time.Time { return time.Now().Add(48 * time.Hour) }
	go func() {
		done <- PurgeIdempotencyKeys(ctx, purger, 24*time.Hour, 5*time.Millisecond, future, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	require.Eventually(t, func() bool {
		rec, err := store.Get(context.Background(), "k1")
		return err == nil && rec == nil
	}, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.GreaterOrEqual(t, purger.calls.Load(), int32(1))
}
