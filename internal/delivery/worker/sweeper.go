// Package worker contains the background deliveries of the application.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/fx"

	"community/config"
	"community/internal/delivery"
	"community/internal/domain/lifecycle"
	"community/internal/usecase"
	"community/internal/util"
)

// sweeper periodically removes expired refresh tokens from the ledger.
type sweeper struct {
	ledger   usecase.RefreshTokenUsecase
	logger   *slog.Logger
	interval time.Duration

	done     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// SweeperParams holds dependencies for the sweeper
type SweeperParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *slog.Logger
	Ledger usecase.RefreshTokenUsecase
}

// NewSweeper creates the refresh token expiry sweeper, stopped with the application.
func NewSweeper(params SweeperParams) (delivery.Delivery, error) {
	s := newSweeper(params.Ledger, params.Logger, params.Cfg.Worker.SweepInterval)

	params.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s, nil
}

func newSweeper(ledger usecase.RefreshTokenUsecase, logger *slog.Logger, interval time.Duration) *sweeper {
	return &sweeper{
		ledger:   ledger,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Serve sweeps once per interval until stop is called.
func (s *sweeper) Serve(ctx context.Context) error {
	defer close(s.stopped)

	s.logger.Info("Starting refresh token sweeper", slog.String("interval", util.FormatDuration(s.interval)))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	start := time.Now()
	removed, err := s.ledger.SweepExpired(sweepCtx)
	if err != nil {
		s.logger.Error("Failed to sweep expired refresh tokens", slog.Any("error", err))

		return
	}

	if removed > 0 {
		s.logger.Info("Swept expired refresh tokens",
			slog.Int64("removed", removed),
			slog.String("took", util.FormatDuration(time.Since(start))),
		)
	}
}

func (s *sweeper) stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })

	s.logger.Info("Shutting down refresh token sweeper")

	select {
	case <-s.stopped:
	case <-ctx.Done():
	}

	return nil
}
