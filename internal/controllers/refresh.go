package controllers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refresh moves a stored almanac window forward on a fixed schedule
type Refresh struct {
	Name     string
	Interval time.Duration
	// Now gives the start of the window for each run. Defaults to time.Now.
	Now func() time.Time
	Run func(ctx context.Context, start time.Time) error
}

// RunRefresh calls r.Run every interval until ctx is cancelled. A failed run
// is logged and retried at the next tick.
func RunRefresh(ctx context.Context, r Refresh, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	logger.Infow("scheduling almanac refresh", "refresh", r.Name, "interval", r.Interval)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			logger.Infow("stopping almanac refresh", "refresh", r.Name)
			return
		case <-ticker.C:
			start := now()
			began := time.Now()
			if err := r.Run(ctx, start); err != nil {
				failures++
				logger.Errorw("almanac refresh failed",
					"refresh", r.Name,
					"window_start", start.Format(time.DateOnly),
					"consecutive_failures", failures,
					"error", err)
				continue
			}
			if failures > 0 {
				logger.Infow("almanac refresh recovered", "refresh", r.Name, "failed_runs", failures)
			}
			failures = 0
			logger.Infow("almanac refreshed",
				"refresh", r.Name,
				"window_start", start.Format(time.DateOnly),
				"elapsed", time.Since(began))
		}
	}
}
