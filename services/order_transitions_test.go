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

func newTestOrders(t *testing.T, db *gorm.DB) *OrderService {
	t.Helper()
	cache := NewScoreCache(newTestConfig(), &mapMetrics{}, NewTrustScoreService(newTestConfig()),
		repository.NewTrustScoreRepository(db), repository.NewCourierRepository(db))
	return NewOrderService(db, repository.NewOrderRepository(db), repository.NewCourierRepository(db), cache, nil)
}

func orderStatus(t *testing.T, db *gorm.DB, orderID uint) (string, *entity.Order) {
	t.Helper()
	var o entity.Order
	require.NoError(t, db.Preload("OrderStatus").First(&o, orderID).Error)
	return o.OrderStatus.StatusName, &o
}

func TestOrderLifecycleHappyPath(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	svc := newTestOrders(t, db)
	ctx := context.Background()

	order, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE", ValueCents: 9900})
	require.NoError(t, err)

	name, o := orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusPending, name)
	assert.Nil(t, o.AcceptedAt)
	assert.Nil(t, o.DeliveredAt)

	require.NoError(t, svc.Confirm(ctx, 11, order.ID))
	name, o = orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusConfirmed, name)
	assert.NotNil(t, o.AcceptedAt)
	assert.Nil(t, o.DeliveredAt)

	require.NoError(t, svc.PickUp(ctx, 11, order.ID))
	require.NoError(t, svc.Transit(ctx, 11, order.ID))
	name, o = orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusInTransit, name)
	assert.Nil(t, o.DeliveredAt)

	require.NoError(t, svc.Deliver(ctx, 11, order.ID))
	name, o = orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusDelivered, name)
	assert.NotNil(t, o.DeliveredAt, "delivery stamps delivered_at in the same update")
}

func TestTransitionGuards(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	svc := newTestOrders(t, db)
	ctx := context.Background()

	order, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)

	// Out-of-order transitions are conflicts, never silent writes.
	for _, action := range []func(context.Context, uint, uint) error{svc.PickUp, svc.Transit, svc.Deliver} {
		err := action(ctx, 11, order.ID)
		ae, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeConflict, ae.Code)
	}

	require.NoError(t, svc.Confirm(ctx, 11, order.ID))

	// Replayed confirm: the guard sees the state already moved on.
	err = svc.Confirm(ctx, 11, order.ID)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConflict, ae.Code)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	svc := newTestOrders(t, db)
	ctx := context.Background()

	order, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, 11, order.ID))
	require.NoError(t, svc.PickUp(ctx, 11, order.ID))
	require.NoError(t, svc.Transit(ctx, 11, order.ID))
	require.NoError(t, svc.Deliver(ctx, 11, order.ID))

	for _, action := range []func(context.Context, uint, uint) error{svc.Confirm, svc.Cancel, svc.Fail, svc.Deliver} {
		err := action(ctx, 11, order.ID)
		ae, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeConflict, ae.Code)
	}

	name, _ := orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusDelivered, name)
}

func TestCancelAndFailPaths(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	svc := newTestOrders(t, db)
	ctx := context.Background()

	// Cancel straight from Pending.
	pending, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, 11, pending.ID))
	name, o := orderStatus(t, db, pending.ID)
	assert.Equal(t, entity.StatusCancelled, name)
	assert.Nil(t, o.DeliveredAt)

	// Cancel from Confirmed.
	confirmed, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, 11, confirmed.ID))
	require.NoError(t, svc.Cancel(ctx, 11, confirmed.ID))

	// Fail from PickedUp and from InTransit.
	failed, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, 11, failed.ID))
	require.NoError(t, svc.PickUp(ctx, 11, failed.ID))
	require.NoError(t, svc.Fail(ctx, 11, failed.ID))
	name, _ = orderStatus(t, db, failed.ID)
	assert.Equal(t, entity.StatusFailed, name)

	// Cancelling a picked-up order is too late.
	late, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, 11, late.ID))
	require.NoError(t, svc.PickUp(ctx, 11, late.ID))
	err = svc.Cancel(ctx, 11, late.ID)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConflict, ae.Code)
}

func TestTransitionOwnership(t *testing.T) {
	db := newTestDB(t)
	mine := seedCourier(t, db, "Mine", "SE", 11)
	seedCourier(t, db, "Other", "SE", 22)
	svc := newTestOrders(t, db)
	ctx := context.Background()

	order, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: mine.ID, DestCountry: "SE"})
	require.NoError(t, err)

	// Another courier's user cannot act on the order.
	err = svc.Confirm(ctx, 22, order.ID)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeForbidden, ae.Code)

	// A user with no courier profile cannot either.
	err = svc.Confirm(ctx, 99, order.ID)
	ae, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeForbidden, ae.Code)

	err = svc.Confirm(ctx, 11, 4040)
	ae, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestAdminSetStatusKeepsDeliveredAtInvariant(t *testing.T) {
	db := newTestDB(t)
	courier := seedCourier(t, db, "A", "SE", 11)
	svc := newTestOrders(t, db)
	ctx := context.Background()

	order, err := svc.Create(ctx, 1, &CreateOrderReq{CourierID: courier.ID, DestCountry: "SE"})
	require.NoError(t, err)

	// Force into Delivered: delivered_at is stamped.
	require.NoError(t, svc.AdminSetStatus(ctx, order.ID, entity.StatusDelivered))
	name, o := orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusDelivered, name)
	require.NotNil(t, o.DeliveredAt)

	// Force back out: delivered_at is cleared with the status change.
	require.NoError(t, svc.AdminSetStatus(ctx, order.ID, entity.StatusInTransit))
	name, o = orderStatus(t, db, order.ID)
	assert.Equal(t, entity.StatusInTransit, name)
	assert.Nil(t, o.DeliveredAt)

	err = svc.AdminSetStatus(ctx, order.ID, "teleported")
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
}
