package readmodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

const (
	defaultBatchSize    = 200
	defaultPollInterval = 2 * time.Second
)

// Runner feeds the projector from the global event feed, resuming at the stored checkpoint.
type Runner struct {
	projector *Projector
	events    ports.EventStore
	store     Store
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	wake      chan struct{}
}

type RunnerOption func(*Runner)

// WithPollInterval sets how often the feed is polled without a Notify.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBatchSize sets the page size used when reading the feed.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithRunnerLogger injects a slog logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(projector *Projector, events ports.EventStore, store Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		projector: projector,
		events:    events,
		store:     store,
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Notify asks a running loop to poll now. It never blocks.
func (r *Runner) Notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. Failed passes are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.CatchUp(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			r.logger.LogAttrs(ctx, slog.LevelError, "projection pass failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-r.wake:
		}
	}
}

// CatchUp applies every event after the checkpoint and returns how many were read.
func (r *Runner) CatchUp(ctx context.Context) (int, error) {
	position, err := r.store.Checkpoint(ctx)
	if err != nil {
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		page, err := r.events.ReadAll(ctx, position, r.batchSize)
		if err != nil {
			return total, fmt.Errorf("read events after %d: %w", position, err)
		}
		if len(page) == 0 {
			return total, nil
		}
		for _, stored := range page {
			if err := r.projector.Apply(ctx, stored); err != nil {
				return total, fmt.Errorf("apply event at %d: %w", stored.Position, err)
			}
			position = stored.Position
			total++
		}
		if err := r.store.SaveCheckpoint(ctx, position); err != nil {
			return total, fmt.Errorf("save checkpoint %d: %w", position, err)
		}
	}
}

// Rebuild drops the projection and replays the whole feed.
func (r *Runner) Rebuild(ctx context.Context) (int, error) {
	if err := r.store.Reset(ctx); err != nil {
		return 0, fmt.Errorf("reset projection: %w", err)
	}
	return r.CatchUp(ctx)
}
