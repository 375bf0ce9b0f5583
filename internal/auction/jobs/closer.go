package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"auctionhouse/internal/auction/domain"
	"auctionhouse/internal/shared/logger"
)

var log = logger.GetLogger()

// CloseService is the slice of the auction service the closer drives.
type CloseService interface {
	CloseExpiredAuctions(ctx context.Context, batchSize int, now time.Time) (int, error)
}

// Closer runs the closing reconciler on a fixed interval. A tick that
// arrives while a cycle is still executing is skipped, not queued, so
// cycles never overlap no matter how long one runs.
type Closer struct {
	svc       CloseService
	clock     domain.Clock
	interval  time.Duration
	batchSize int
	running   atomic.Bool
}

func NewCloser(svc CloseService, clock domain.Clock, interval time.Duration, batchSize int) *Closer {
	return &Closer{
		svc:       svc,
		clock:     clock,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run ticks until ctx is cancelled. One cycle runs immediately so
// auctions that expired while the server was down are closed at boot.
func (c *Closer) Run(ctx context.Context) {
	log.Info("Auction closer started",
		zap.Duration("interval", c.interval),
		zap.Int("batchSize", c.batchSize),
	)

	c.Tick(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Auction closer stopped")
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick runs one closing cycle unless a previous one is still executing.
func (c *Closer) Tick(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		log.Warn("Closing cycle still running, skipping tick")
		return
	}
	defer c.running.Store(false)

	if _, err := c.svc.CloseExpiredAuctions(ctx, c.batchSize, c.clock.Now()); err != nil {
		// The failed batch rolled back; the next tick retries it.
		log.Error("Closing cycle failed", zap.Error(err))
	}
}
