package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"community/internal/errors"
	"community/internal/usecase"
)

type mockLedger struct {
	usecase.RefreshTokenUsecase
	mock.Mock

	sweeps atomic.Int32
}

func (m *mockLedger) SweepExpired(ctx context.Context) (int64, error) {
	m.sweeps.Add(1)
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

func TestSweeper_SweepsUntilStopped(t *testing.T) {
	ledger := &mockLedger{}
	ledger.On("SweepExpired", mock.Anything).Return(int64(2), nil)

	s := newSweeper(ledger, slog.New(slog.NewTextHandler(io.Discard, nil)), 10*time.Millisecond)

	served := make(chan error, 1)
	go func() { served <- s.Serve(context.Background()) }()

	require.Eventually(t, func() bool { return ledger.sweeps.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.stop(context.Background()))
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}

	// A second stop is harmless.
	require.NoError(t, s.stop(context.Background()))
}

func TestSweeper_KeepsRunningAfterFailure(t *testing.T) {
	ledger := &mockLedger{}
	ledger.On("SweepExpired", mock.Anything).Return(int64(0), errors.New("ledger offline"))

	s := newSweeper(ledger, slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx) }()

	require.Eventually(t, func() bool { return ledger.sweeps.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper ignored context cancellation")
	}
}
