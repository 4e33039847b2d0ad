// Package maintenance runs the periodic background work the sync core
// deliberately leaves to its caller: scheduled full syncs, a day-change
// resync, and the favorites reconcile sweep. All scheduling is plain Go
// tickers inside the long-running service.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/summitathletics/summit-data/internal/favorites"
	"github.com/summitathletics/summit-data/internal/sync"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SyncInterval      time.Duration // periodic full sync
	ReconcileInterval time.Duration // favorites reconcile sweep
	DayChange         bool          // resync when the local date rolls over
}

// Start launches all configured maintenance loops. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, engine *sync.Engine, coordinator *favorites.Coordinator, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance loops started",
		"sync", cfg.SyncInterval,
		"reconcile", cfg.ReconcileInterval,
		"day_change", cfg.DayChange)

	if cfg.SyncInterval > 0 {
		go runEvery(ctx, cfg.SyncInterval, func() {
			result := engine.SyncAll(ctx)
			for _, e := range result.Errors {
				logger.Warn("Periodic sync error", "error", e)
			}
		})
	}

	if cfg.ReconcileInterval > 0 {
		go runEvery(ctx, cfg.ReconcileInterval, func() {
			coordinator.ReconcileAll(ctx)
		})
	}

	// Day change: schedules shown to users are grouped by local date, so a
	// rollover warrants a fresh sync even if the interval has not elapsed.
	if cfg.DayChange {
		go dayChangeLoop(ctx, func() {
			logger.Info("Day changed, refreshing schedule")
			result := engine.SyncAll(ctx)
			for _, e := range result.Errors {
				logger.Warn("Day-change sync error", "error", e)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance loops stopped")
}

func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func dayChangeLoop(ctx context.Context, fn func()) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			fn()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
