package core

// retention.go runs the background job that keeps import history bounded.
//
// The job runs once at start and then every Interval, deleting history
// entries older than MaxAge. Failures are logged and retried on the next
// tick; they never stop the server.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the history pruner.
// Zero values fall back to the defaults.
type RetentionConfig struct {
	MaxAge   time.Duration // Age after which history entries are deleted (default: 180 days)
	Interval time.Duration // How often to run (default: 24h)
}

const (
	DefaultHistoryMaxAge = 180 * 24 * time.Hour
	DefaultPruneInterval = 24 * time.Hour
)

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultHistoryMaxAge
	}
	if c.Interval <= 0 {
		c.Interval = DefaultPruneInterval
	}
	return c
}

// StartHistoryPruner blocks, pruning import history until ctx is cancelled.
// Run it in its own goroutine.
func (s *Service) StartHistoryPruner(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("history pruner started",
		"max_age", cfg.MaxAge.String(),
		"interval", cfg.Interval.String(),
	)

	s.PruneHistory(ctx, cfg.MaxAge)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history pruner stopped")
			return
		case <-ticker.C:
			s.PruneHistory(ctx, cfg.MaxAge)
		}
	}
}

// PruneHistory deletes import history older than maxAge and returns how
// many entries were removed.
func (s *Service) PruneHistory(ctx context.Context, maxAge time.Duration) int64 {
	start := time.Now()
	cutoff := s.now().Add(-maxAge)

	n, err := s.store.PruneImports(ctx, cutoff)
	if err != nil {
		slog.Error("prune import history failed", "error", err)
		return 0
	}

	slog.Info("pruned import history",
		"entries_deleted", n,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n
}
