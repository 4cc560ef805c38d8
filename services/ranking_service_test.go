package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// mapMetrics serves canned per-courier metrics so tests control scores.
type mapMetrics struct {
	byID map[uint]CourierMetrics
}

func (f *mapMetrics) CourierMetrics(ctx context.Context, courierID uint, w Window) (*CourierMetrics, error) {
	m := f.byID[courierID]
	m.CourierID = courierID
	return &m, nil
}

func seedRate(t *testing.T, db *gorm.DB, courierID uint, country string, base, perKg int64, eta int) {
	t.Helper()
	require.NoError(t, db.Create(&entity.CourierRate{
		CourierID: courierID, Country: country,
		BaseFee: base, PerKgFee: perKg, EtaMinutes: eta,
	}).Error)
}

func newTestRanking(t *testing.T, db *gorm.DB, src MetricsSource) *RankingService {
	t.Helper()
	cache := NewScoreCache(newTestConfig(), src, NewTrustScoreService(newTestConfig()),
		repository.NewTrustScoreRepository(db), repository.NewCourierRepository(db))
	return NewRankingService(db, cache, repository.NewCourierRepository(db), repository.NewCheckoutRepository(db))
}

var (
	perfectMetrics = CourierMetrics{TotalOrders: 50, CompletedOrders: 50, OnTimeDeliveries: 50, TotalReviews: 10, AverageRating: 5}
	decentMetrics  = CourierMetrics{TotalOrders: 50, CompletedOrders: 40, OnTimeDeliveries: 32, TotalReviews: 10, AverageRating: 4}
)

func TestRankOrderingAndTieBreaks(t *testing.T) {
	db := newTestDB(t)
	best := seedCourier(t, db, "Best", "SE", 1)
	tieA := seedCourier(t, db, "TieA", "SE", 2)
	tieB := seedCourier(t, db, "TieB", "SE", 3)
	tieC := seedCourier(t, db, "TieC", "SE", 4)

	// Ties below the leader: price breaks first, then ETA, then courier id.
	seedRate(t, db, best.ID, "SE", 900, 0, 120)
	seedRate(t, db, tieA.ID, "SE", 500, 0, 120)
	seedRate(t, db, tieB.ID, "SE", 400, 0, 600)
	seedRate(t, db, tieC.ID, "SE", 400, 0, 60)

	src := &mapMetrics{byID: map[uint]CourierMetrics{
		best.ID: perfectMetrics,
		tieA.ID: decentMetrics,
		tieB.ID: decentMetrics,
		tieC.ID: decentMetrics,
	}}
	svc := newTestRanking(t, db, src)

	res, err := svc.Rank(context.Background(), &RankRequest{DestCountry: "SE"})
	require.NoError(t, err)
	require.Len(t, res.Couriers, 4)

	order := []uint{res.Couriers[0].CourierID, res.Couriers[1].CourierID, res.Couriers[2].CourierID, res.Couriers[3].CourierID}
	assert.Equal(t, []uint{best.ID, tieC.ID, tieB.ID, tieA.ID}, order)
	for i, c := range res.Couriers {
		assert.Equal(t, i+1, c.PositionShown)
	}
}

func TestRankFullTieFallsBackToCourierID(t *testing.T) {
	db := newTestDB(t)
	a := seedCourier(t, db, "A", "SE", 1)
	b := seedCourier(t, db, "B", "SE", 2)
	seedRate(t, db, b.ID, "SE", 400, 0, 60)
	seedRate(t, db, a.ID, "SE", 400, 0, 60)

	src := &mapMetrics{byID: map[uint]CourierMetrics{a.ID: decentMetrics, b.ID: decentMetrics}}
	svc := newTestRanking(t, db, src)

	res, err := svc.Rank(context.Background(), &RankRequest{DestCountry: "SE"})
	require.NoError(t, err)
	require.Len(t, res.Couriers, 2)
	assert.Equal(t, a.ID, res.Couriers[0].CourierID)
	assert.Equal(t, b.ID, res.Couriers[1].CourierID)
}

func TestRankPersistsAuditRowsBeforeReturning(t *testing.T) {
	db := newTestDB(t)
	a := seedCourier(t, db, "A", "SE", 1)
	b := seedCourier(t, db, "B", "SE", 2)
	seedRate(t, db, a.ID, "SE", 500, 100, 60)
	seedRate(t, db, b.ID, "SE", 300, 50, 90)

	src := &mapMetrics{byID: map[uint]CourierMetrics{a.ID: perfectMetrics, b.ID: decentMetrics}}
	svc := newTestRanking(t, db, src)

	res, err := svc.Rank(context.Background(), &RankRequest{
		SessionID: "sess-1", MerchantID: 9, DestCountry: "SE", DestPostal: "11122",
		ValueCents: 25000, WeightKg: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Couriers, 2)

	var rows []entity.CheckoutPosition
	require.NoError(t, db.Where("session_id = ?", "sess-1").Order("position_shown").Find(&rows).Error)
	require.Len(t, rows, 2, "one audit row per shown courier")

	for i, row := range rows {
		c := res.Couriers[i]
		assert.Equal(t, c.CourierID, row.CourierID)
		assert.Equal(t, c.PositionShown, row.PositionShown)
		assert.Equal(t, c.TrustScore, row.TrustScoreAtTime)
		assert.Equal(t, c.PriceCents, row.PriceAtTime)
		assert.Equal(t, uint(9), row.MerchantID)
		assert.Equal(t, int64(25000), row.OrderValueCents)
		assert.False(t, row.WasSelected)
	}

	// base + perKg*weight, in minor units
	assert.Equal(t, int64(500+100*2), res.Couriers[0].PriceCents)
}

func TestRankSurvivesCancelledRequest(t *testing.T) {
	db := newTestDB(t)
	a := seedCourier(t, db, "A", "SE", 1)
	seedRate(t, db, a.ID, "SE", 500, 0, 60)

	svc := newTestRanking(t, db, &mapMetrics{byID: map[uint]CourierMetrics{a.ID: decentMetrics}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Rank(ctx, &RankRequest{SessionID: "sess-gone", DestCountry: "SE"})
	require.NoError(t, err)
	require.Len(t, res.Couriers, 1)

	var n int64
	require.NoError(t, db.Model(&entity.CheckoutPosition{}).Where("session_id = ?", "sess-gone").Count(&n).Error)
	assert.Equal(t, int64(1), n, "audit row outlives the caller")
}

func TestRankNoCandidates(t *testing.T) {
	db := newTestDB(t)
	a := seedCourier(t, db, "A", "SE", 1)
	seedRate(t, db, a.ID, "SE", 500, 0, 60)

	svc := newTestRanking(t, db, &mapMetrics{byID: map[uint]CourierMetrics{}})

	res, err := svc.Rank(context.Background(), &RankRequest{DestCountry: "NO"})
	require.NoError(t, err)
	assert.NotNil(t, res.Couriers)
	assert.Empty(t, res.Couriers, "no rated courier for the destination is a valid empty result")

	var n int64
	require.NoError(t, db.Model(&entity.CheckoutPosition{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRankValidation(t *testing.T) {
	svc := newTestRanking(t, newTestDB(t), &mapMetrics{})

	_, err := svc.Rank(context.Background(), &RankRequest{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	_, err = svc.Rank(context.Background(), &RankRequest{DestCountry: "SE", WeightKg: -1})
	ae, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
}

func TestRankGeneratesSessionID(t *testing.T) {
	db := newTestDB(t)
	a := seedCourier(t, db, "A", "SE", 1)
	seedRate(t, db, a.ID, "SE", 500, 0, 60)

	svc := newTestRanking(t, db, &mapMetrics{byID: map[uint]CourierMetrics{a.ID: decentMetrics}})

	res, err := svc.Rank(context.Background(), &RankRequest{DestCountry: "SE"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestMarkSelectedOneTimeFlip(t *testing.T) {
	db := newTestDB(t)
	a := seedCourier(t, db, "A", "SE", 1)
	b := seedCourier(t, db, "B", "SE", 2)
	seedRate(t, db, a.ID, "SE", 500, 0, 60)
	seedRate(t, db, b.ID, "SE", 400, 0, 90)

	src := &mapMetrics{byID: map[uint]CourierMetrics{a.ID: perfectMetrics, b.ID: decentMetrics}}
	svc := newTestRanking(t, db, src)

	_, err := svc.Rank(context.Background(), &RankRequest{SessionID: "sess-sel", DestCountry: "SE"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkSelected(context.Background(), "sess-sel", a.ID))

	// Same courier again: idempotent no-op.
	require.NoError(t, svc.MarkSelected(context.Background(), "sess-sel", a.ID))

	// A different courier after one is chosen: conflict, first stays selected.
	err = svc.MarkSelected(context.Background(), "sess-sel", b.ID)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConflict, ae.Code)

	var selected []entity.CheckoutPosition
	require.NoError(t, db.Where("session_id = ? AND was_selected = ?", "sess-sel", true).Find(&selected).Error)
	require.Len(t, selected, 1)
	assert.Equal(t, a.ID, selected[0].CourierID)
}

func TestMarkSelectedUnknownSession(t *testing.T) {
	svc := newTestRanking(t, newTestDB(t), &mapMetrics{})

	err := svc.MarkSelected(context.Background(), "no-such-session", 1)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestTrackValidatesAndAppends(t *testing.T) {
	db := newTestDB(t)
	svc := newTestRanking(t, db, &mapMetrics{})

	_, err := svc.Track(context.Background(), &entity.CheckoutPosition{PositionShown: 1})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	id, err := svc.Track(context.Background(), &entity.CheckoutPosition{
		CourierID: 7, MerchantID: 2, PositionShown: 3, TrustScoreAtTime: 81.5,
		WasSelected: true, // callers cannot pre-select through Track
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	var row entity.CheckoutPosition
	require.NoError(t, db.First(&row, id).Error)
	assert.NotEmpty(t, row.SessionID)
	assert.False(t, row.WasSelected)
	assert.Equal(t, 3, row.PositionShown)
}
