package services

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/middlewares"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// MetricsSource is what the cache needs from the aggregator; tests inject a
// fake, production wires *MetricsService.
type MetricsSource interface {
	CourierMetrics(ctx context.Context, courierID uint, w Window) (*CourierMetrics, error)
}

// ScoreCache is the cache-aside layer over the metrics aggregator and the
// trust score calculator. Misses and stale reads recompute synchronously;
// concurrent recomputes for the same courier collapse into one flight.
type ScoreCache struct {
	cfg     *configs.Config
	metrics MetricsSource
	calc    *TrustScoreService
	store   *repository.TrustScoreRepository
	courier *repository.CourierRepository

	lru   *expirable.LRU[uint, *entity.TrustScore]
	group singleflight.Group
}

func NewScoreCache(
	cfg *configs.Config,
	metrics MetricsSource,
	calc *TrustScoreService,
	store *repository.TrustScoreRepository,
	courier *repository.CourierRepository,
) *ScoreCache {
	// One LRU, hard-expired at the larger TTL; the per-read freshness check
	// below applies the tighter single-read TTL.
	maxTTL := cfg.CacheTTLDashboard
	if cfg.CacheTTLSingle > maxTTL {
		maxTTL = cfg.CacheTTLSingle
	}
	return &ScoreCache{
		cfg:     cfg,
		metrics: metrics,
		calc:    calc,
		store:   store,
		courier: courier,
		lru:     expirable.NewLRU[uint, *entity.TrustScore](cfg.CacheSize, nil, maxTTL),
	}
}

// Get returns the courier's trust score and whether it was served from cache.
// Dashboard reads tolerate more staleness than single-courier reads.
func (s *ScoreCache) Get(ctx context.Context, courierID uint, dashboard bool) (*entity.TrustScore, bool, error) {
	ttl := s.cfg.CacheTTLSingle
	if dashboard {
		ttl = s.cfg.CacheTTLDashboard
	}

	if ts, ok := s.lru.Get(courierID); ok && time.Since(ts.LastCalculated) <= ttl {
		middlewares.RecordScoreLookup("hit")
		return ts, true, nil
	}

	// Single-flight: late arrivals join the in-flight computation; the group
	// drops the key once the flight settles, so the map cannot grow.
	v, err, _ := s.group.Do(strconv.FormatUint(uint64(courierID), 10), func() (any, error) {
		return s.Recompute(ctx, courierID)
	})
	if err != nil {
		middlewares.RecordScoreLookup("error")
		return nil, false, err
	}
	middlewares.RecordScoreLookup("recompute")
	return v.(*entity.TrustScore), false, nil
}

// Recompute aggregates, scores, persists the snapshot and refills the cache.
func (s *ScoreCache) Recompute(ctx context.Context, courierID uint) (*entity.TrustScore, error) {
	m, err := s.metrics.CourierMetrics(ctx, courierID, Window{})
	if err != nil {
		return nil, err
	}
	res := s.calc.Compute(*m)

	ts := &entity.TrustScore{
		CourierID:        courierID,
		TotalOrders:      int(m.TotalOrders),
		CompletedOrders:  int(m.CompletedOrders),
		OnTimeDeliveries: int(m.OnTimeDeliveries),
		TotalReviews:     int(m.TotalReviews),
		AverageRating:    m.AverageRating,
		CompletionRate:   res.CompletionRate,
		OnTimeRate:       res.OnTimeRate,
		Score:            res.TrustScore,
		LowConfidence:    res.LowConfidence,
		LastCalculated:   time.Now(),
	}
	if err := s.store.Upsert(ctx, ts); err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	s.lru.Add(courierID, ts)
	return ts, nil
}

// Invalidate drops the cached snapshot. Called on order terminal transitions,
// review writes and admin refreshes; correctness-critical paths never rely on
// TTL expiry alone.
func (s *ScoreCache) Invalidate(courierID uint) {
	s.lru.Remove(courierID)
}

// RefreshAll recomputes every active courier, pausing between couriers so the
// bulk pass cannot starve interactive traffic. Returns the number refreshed.
func (s *ScoreCache) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.courier.ListActiveIDs(ctx)
	if err != nil {
		return 0, apperr.DataUnavailable(err)
	}

	refreshed := 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return refreshed, ctx.Err()
		default:
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			return refreshed, err
		}
		refreshed++
		if s.cfg.RefreshPause > 0 {
			time.Sleep(s.cfg.RefreshPause)
		}
	}
	return refreshed, nil
}
