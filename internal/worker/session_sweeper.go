package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper forgets idle sessions.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// StartSessionSweeper sweeps every interval until ctx is done. The returned
// channel closes when the loop exits.
func StartSessionSweeper(ctx context.Context, sweeper Sweeper, interval, maxIdle time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sweeper.Sweep(maxIdle); n > 0 {
					logger.Debug("idle sessions swept", zap.Int("count", n))
				}
			}
		}
	}()
	return done
}
