package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// slowMetrics counts aggregations and can simulate a slow data store.
type slowMetrics struct {
	calls atomic.Int64
	delay time.Duration
	m     CourierMetrics
}

func (f *slowMetrics) CourierMetrics(ctx context.Context, courierID uint, w Window) (*CourierMetrics, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	m := f.m
	m.CourierID = courierID
	return &m, nil
}

func newTestCache(t *testing.T, src MetricsSource) *ScoreCache {
	t.Helper()
	db := newTestDB(t)
	return NewScoreCache(
		newTestConfig(),
		src,
		NewTrustScoreService(newTestConfig()),
		repository.NewTrustScoreRepository(db),
		repository.NewCourierRepository(db),
	)
}

func TestCacheGetServesFromCache(t *testing.T) {
	src := &slowMetrics{m: CourierMetrics{TotalOrders: 10, CompletedOrders: 10, OnTimeDeliveries: 10, TotalReviews: 6, AverageRating: 4}}
	cache := newTestCache(t, src)

	first, cached, err := cache.Get(context.Background(), 7, false)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := cache.Get(context.Background(), 7, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestCacheConcurrentGetsSingleFlight(t *testing.T) {
	src := &slowMetrics{
		delay: 50 * time.Millisecond,
		m:     CourierMetrics{TotalOrders: 4, CompletedOrders: 4, OnTimeDeliveries: 4, TotalReviews: 6, AverageRating: 5},
	}
	cache := newTestCache(t, src)

	const callers = 8
	results := make([]*entity.TrustScore, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ts, _, err := cache.Get(context.Background(), 42, false)
			assert.NoError(t, err)
			results[i] = ts
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), src.calls.Load(), "concurrent cold reads collapse into one recompute")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i], "late arrivals join the in-flight result")
	}
}

func TestCacheInvalidateForcesRecompute(t *testing.T) {
	src := &slowMetrics{m: CourierMetrics{TotalOrders: 2, CompletedOrders: 2, OnTimeDeliveries: 2}}
	cache := newTestCache(t, src)

	_, _, err := cache.Get(context.Background(), 5, false)
	require.NoError(t, err)
	cache.Invalidate(5)

	_, cached, err := cache.Get(context.Background(), 5, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestCachePersistsSnapshot(t *testing.T) {
	db := newTestDB(t)
	src := &slowMetrics{m: CourierMetrics{TotalOrders: 10, CompletedOrders: 9, OnTimeDeliveries: 9, TotalReviews: 6, AverageRating: 4.8}}
	store := repository.NewTrustScoreRepository(db)
	cache := NewScoreCache(newTestConfig(), src, NewTrustScoreService(newTestConfig()), store, repository.NewCourierRepository(db))

	got, _, err := cache.Get(context.Background(), 3, false)
	require.NoError(t, err)

	persisted, err := store.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, got.Score, persisted.Score)
	assert.Equal(t, 10, persisted.TotalOrders)

	// Recompute upserts, never duplicates.
	cache.Invalidate(3)
	_, _, err = cache.Get(context.Background(), 3, false)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&entity.TrustScore{}).Where("courier_id = ?", 3).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCacheRefreshAll(t *testing.T) {
	db := newTestDB(t)
	seedCourier(t, db, "A", "SE", 1)
	seedCourier(t, db, "B", "SE", 2)
	inactive := seedCourier(t, db, "C", "SE", 3)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	src := &slowMetrics{m: CourierMetrics{TotalOrders: 1, CompletedOrders: 1, OnTimeDeliveries: 1}}
	cache := NewScoreCache(newTestConfig(), src, NewTrustScoreService(newTestConfig()),
		repository.NewTrustScoreRepository(db), repository.NewCourierRepository(db))

	n, err := cache.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "inactive couriers are skipped")
}
