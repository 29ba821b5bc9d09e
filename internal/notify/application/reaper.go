package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// Reaper periodically deletes notifications past their TTL. Visibility does
// not depend on it: reads already exclude expired records, the reaper only
// reclaims storage.
type Reaper struct {
	repo     domain.NotificationRepository
	interval time.Duration
	logger   *slog.Logger
}

func NewReaper(repo domain.NotificationRepository, interval time.Duration, logger *slog.Logger) *Reaper {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{repo: repo, interval: interval, logger: logger}
}

// Run reaps on the configured interval until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reap(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	deleted, err := r.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		r.logger.Error("reaping expired notifications failed", "error", err)
		return
	}
	if deleted > 0 {
		r.logger.Info("reaped expired notifications", "deleted", deleted)
	}
}
