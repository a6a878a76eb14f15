package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

// PurgeIdempotencyKeys deletes keys older than retention every interval until ctx ends.
// Failures are logged and retried on the next tick.
func PurgeIdempotencyKeys(ctx context.Context, purger ports.IdempotencyPurger, retention, interval time.Duration, now func() time.Time, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		purged, err := purger.PurgeBefore(ctx, now().Add(-retention))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.LogAttrs(ctx, slog.LevelWarn, "idempotency key purge failed", slog.String("error", err.Error()))
			continue
		}
		if purged > 0 {
			logger.LogAttrs(ctx, slog.LevelInfo, "idempotency keys purged", slog.Int64("count", purged))
		}
	}
}
