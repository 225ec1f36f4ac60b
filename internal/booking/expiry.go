package booking

import (
	"context"
	"log/slog"
	"time"

	"islebook-backend/internal/cache"

	"github.com/robfig/cron/v3"
)

// ExpiryJob cancels pending appointments whose payment was never completed,
// releasing their slots. Scheduled with cron; a pending appointment older
// than ttl is considered abandoned.
type ExpiryJob struct {
	repo  Repository
	ttl   time.Duration
	cache cache.Cache
	log   *slog.Logger
}

func NewExpiryJob(repo Repository, ttl time.Duration, c cache.Cache, log *slog.Logger) *ExpiryJob {
	return &ExpiryJob{repo: repo, ttl: ttl, cache: c, log: log}
}

func (j *ExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := j.repo.ExpirePendingBefore(ctx, time.Now().Add(-j.ttl))
	if err != nil {
		j.log.Error("booking expiry: failed", slog.String("error", err.Error()))
		return
	}
	if expired > 0 {
		// Released slots can span any activity and date.
		if j.cache != nil {
			_ = j.cache.DeletePrefix(ctx, availabilityCachePrefix)
		}
		j.log.Info("booking expiry: released stale pending slots", slog.Int64("count", expired))
	}
}

// Schedule registers the job on c with the given cron spec.
func (j *ExpiryJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddJob(spec, j)
}
