package core

// scheduler.go expires finished jobs.
//
// Artifacts live in memory only, so finished jobs are dropped once they are
// older than the retention window. Running jobs are never swept. The sweeper
// is long-running and stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls the retention sweeper. Zero values use defaults.
type RetentionConfig struct {
	MaxAge        time.Duration // default 1h
	CheckInterval time.Duration // default 5m
}

const (
	defaultRetention     = time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// StartRetentionSweeper removes expired jobs every CheckInterval until ctx
// is cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartRetentionSweeper(ctx context.Context, cfg RetentionConfig) {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultRetention
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultSweepInterval
	}

	slog.Info("retention sweeper started",
		"max_age", cfg.MaxAge.String(),
		"interval", cfg.CheckInterval.String(),
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			if n := s.SweepExpired(cfg.MaxAge); n > 0 {
				slog.Info("expired jobs removed", "count", n)
			}
		}
	}
}

// SweepExpired removes jobs that finished more than maxAge ago and returns
// how many were removed.
func (s *Service) SweepExpired(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, j := range s.jobs {
		if j.finished.IsZero() || j.finished.After(cutoff) {
			continue
		}
		delete(s.jobs, id)
		removed++
	}
	return removed
}
