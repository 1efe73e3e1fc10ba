package service

import (
	"context"
	"time"
)

// CleanupIdle deletes sessions untouched for longer than ttl.
func (is *InterviewService) CleanupIdle(ctx context.Context, ttl time.Duration) (int, error) {
	return is.store.CleanupIdle(ctx, time.Now().Add(-ttl))
}

// RunCleanup calls CleanupIdle every interval until ctx is done.
func (is *InterviewService) RunCleanup(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := is.CleanupIdle(ctx, ttl)
			if err != nil {
				is.logger.Error("session cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				is.logger.Info("removed idle sessions", "count", removed, "ttl", ttl.String())
			}
		}
	}
}
