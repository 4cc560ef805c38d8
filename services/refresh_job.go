package services

import (
	"context"
	"log"
	"time"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
)

// RefreshJob is the periodic background pass: recompute every trust score and
// file system-default reviews for unanswered deliveries. It runs off the
// request path and is rate-limited inside RefreshAll so bulk work cannot
// starve interactive queries.
type RefreshJob struct {
	Cfg     *configs.Config
	Cache   *ScoreCache
	Reviews *ReviewService
}

func NewRefreshJob(cfg *configs.Config, cache *ScoreCache, reviews *ReviewService) *RefreshJob {
	return &RefreshJob{Cfg: cfg, Cache: cache, Reviews: reviews}
}

// Run blocks until ctx is cancelled. Start it in its own goroutine.
func (j *RefreshJob) Run(ctx context.Context) {
	ticker := time.NewTicker(j.Cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *RefreshJob) runOnce(ctx context.Context) {
	created, err := j.Reviews.AutoReviews(ctx, 0)
	if err != nil {
		log.Printf("auto-review pass failed: %v", err)
	} else if created > 0 {
		log.Printf("auto-review pass created %d default reviews", created)
	}

	refreshed, err := j.Cache.RefreshAll(ctx)
	if err != nil {
		log.Printf("score refresh stopped after %d couriers: %v", refreshed, err)
		return
	}
	log.Printf("score refresh completed for %d couriers", refreshed)
}
