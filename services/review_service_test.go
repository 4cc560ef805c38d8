package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

func newTestReviews(t *testing.T, db *gorm.DB) *ReviewService {
	t.Helper()
	cache := NewScoreCache(newTestConfig(), &mapMetrics{}, NewTrustScoreService(newTestConfig()),
		repository.NewTrustScoreRepository(db), repository.NewCourierRepository(db))
	return NewReviewService(newTestConfig(), db, repository.NewReviewRepository(db),
		repository.NewOrderRepository(db), cache, nil)
}

func seedConsumerOrder(t *testing.T, db *gorm.DB, courierID, consumerID uint, status string, deliveredAgo time.Duration) *entity.Order {
	t.Helper()
	o := &entity.Order{
		CourierID:     courierID,
		MerchantID:    1,
		ConsumerID:    &consumerID,
		OrderStatusID: statusID(t, db, status),
	}
	if status == entity.StatusDelivered {
		at := time.Now().Add(-deliveredAgo)
		o.DeliveredAt = &at
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestCreateReview(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	order := seedConsumerOrder(t, db, courier.ID, 77, entity.StatusDelivered, time.Hour)
	svc := newTestReviews(t, db)

	rev, err := svc.Create(context.Background(), 77, &CreateReviewReq{
		OrderID: order.ID, Rating: 4, OnTimeScore: 5, Comments: "quick",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ReviewPending, rev.Status, "reviews start pending")
	assert.Equal(t, courier.ID, rev.CourierID)
	assert.Equal(t, 5, rev.OnTimeScore)
	// Omitted sub-scores default to the overall rating.
	assert.Equal(t, 4, rev.CommunicationScore)
	assert.Equal(t, 4, rev.PackageScore)
	assert.False(t, rev.IsSystemDefault)
}

func TestCreateReviewRejections(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	delivered := seedConsumerOrder(t, db, courier.ID, 77, entity.StatusDelivered, time.Hour)
	pending := seedConsumerOrder(t, db, courier.ID, 77, entity.StatusPending, 0)
	svc := newTestReviews(t, db)
	ctx := context.Background()

	cases := []struct {
		name       string
		consumerID uint
		orderID    uint
		wantCode   string
	}{
		{"unknown order", 77, 4040, apperr.CodeNotFound},
		{"someone else's order", 88, delivered.ID, apperr.CodeForbidden},
		{"not yet delivered", 77, pending.ID, apperr.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.consumerID, &CreateReviewReq{OrderID: tc.orderID, Rating: 5})
			ae, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantCode, ae.Code)
		})
	}

	// One review per order.
	_, err := svc.Create(ctx, 77, &CreateReviewReq{OrderID: delivered.ID, Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 77, &CreateReviewReq{OrderID: delivered.ID, Rating: 1})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConflict, ae.Code)
}

func TestModerateReview(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	order := seedConsumerOrder(t, db, courier.ID, 77, entity.StatusDelivered, time.Hour)
	svc := newTestReviews(t, db)
	ctx := context.Background()

	rev, err := svc.Create(ctx, 77, &CreateReviewReq{OrderID: order.ID, Rating: 4})
	require.NoError(t, err)

	err = svc.Moderate(ctx, rev.ID, "escalated")
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	require.NoError(t, svc.Moderate(ctx, rev.ID, entity.ReviewApproved))
	var stored entity.Review
	require.NoError(t, db.First(&stored, rev.ID).Error)
	assert.Equal(t, entity.ReviewApproved, stored.Status)

	err = svc.Moderate(ctx, 4040, entity.ReviewRejected)
	ae, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestAutoReviews(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	svc := newTestReviews(t, db)
	ctx := context.Background()

	// Past the response window and unreviewed: gets a system default.
	stale := seedConsumerOrder(t, db, courier.ID, 77, entity.StatusDelivered, 20*24*time.Hour)
	// Delivered recently: the consumer still has time.
	fresh := seedConsumerOrder(t, db, courier.ID, 77, entity.StatusDelivered, 24*time.Hour)
	// Past the window but already reviewed.
	reviewed := seedConsumerOrder(t, db, courier.ID, 78, entity.StatusDelivered, 20*24*time.Hour)
	_, err := svc.Create(ctx, 78, &CreateReviewReq{OrderID: reviewed.ID, Rating: 2})
	require.NoError(t, err)

	created, err := svc.AutoReviews(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var rev entity.Review
	require.NoError(t, db.Where("order_id = ?", stale.ID).First(&rev).Error)
	assert.True(t, rev.IsSystemDefault)
	assert.Equal(t, entity.ReviewApproved, rev.Status, "system defaults count immediately")
	// Configured satisfaction 0.70 maps to round(0.70*5) = 4 on every score.
	assert.Equal(t, 4, rev.Rating)
	assert.Equal(t, 4, rev.OnTimeScore)
	assert.Equal(t, 4, rev.CommunicationScore)
	assert.Equal(t, 4, rev.PackageScore)
	assert.Nil(t, rev.ConsumerID)

	var n int64
	require.NoError(t, db.Model(&entity.Review{}).Where("order_id = ?", fresh.ID).Count(&n).Error)
	assert.Zero(t, n)

	// Idempotent: a second pass finds nothing left to default.
	created, err = svc.AutoReviews(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, created)
}
