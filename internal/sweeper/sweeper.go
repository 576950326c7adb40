package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajuteixeira/book-sala/internal/service"
)

// Sweeper periodically flips aged-out active reservations to completed.
// Reads never mutate rows; this loop is the only background writer.
type Sweeper struct {
	svc      service.ReservationService
	interval time.Duration
	logger   *zap.Logger
}

// New creates a Sweeper.
func New(svc service.ReservationService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, logger: logger}
}

// Run sweeps on every tick until ctx is cancelled. It sweeps once on
// startup so a restart does not leave stale rows until the first tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.svc.CompletePast(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("reservations completed", zap.Int64("count", n))
	}
}
