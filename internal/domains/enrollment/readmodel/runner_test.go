package readmodel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRunner_CatchUpResumesFromCheckpoint(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, "Anna Kowalska")
	f.accept(t, first)

	n, err := f.runner.CatchUp(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	second := f.submit(t, "Jan Nowak")
	n, err = f.runner.CatchUp(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	checkpoint, err := f.store.Checkpoint(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(3), checkpoint)
	model, err := f.store.Get(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, "Jan Nowak", model.State.FullName)
}

func TestRunner_Rebuild(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, "Anna Kowalska")
	_, err := f.runner.CatchUp(context.Background())
	require.NoError(t, err)

	f.accept(t, id)
	n, err := f.runner.Rebuild(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, n)
	model, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, model.State.HasSignedUpForTraining())
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.runner.Run(ctx) }()

	id := f.submit(t, "Anna Kowalska")
	f.runner.Notify()
	require.Eventually(t, func() bool {
		model, err := f.store.Get(context.Background(), id)
		return err == nil && model != nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
