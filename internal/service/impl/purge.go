package impl

import (
	"context"
	"log/slog"
	"time"

	"authflow/internal/observability/metrics"
)

type codePurger interface {
	PurgeCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunCodePurge deletes codes older than ttl every interval until ctx ends.
func RunCodePurge(ctx context.Context, codes codePurger, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			PurgeExpiredCodes(ctx, codes, ttl, time.Now())
		}
	}
}

// PurgeExpiredCodes runs one purge pass relative to now.
func PurgeExpiredCodes(ctx context.Context, codes codePurger, ttl time.Duration, now time.Time) int64 {
	n, err := codes.PurgeCreatedBefore(ctx, now.UTC().Add(-ttl))
	if err != nil {
		slog.WarnContext(ctx, "reset code purge failed", "error", err)
		return 0
	}
	if n > 0 {
		metrics.OTPCodesPurgedTotal.Add(float64(n))
		slog.InfoContext(ctx, "purged expired reset codes", "count", n)
	}
	return n
}
