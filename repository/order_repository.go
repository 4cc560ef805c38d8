package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) GetStatusIDByName(name string) (uint, error) {
	var s entity.OrderStatus
	if err := r.DB.Where("status_name = ?", name).First(&s).Error; err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) Get(ctx context.Context, id uint) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.WithContext(ctx).Preload("OrderStatus").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusGuard performs a compare-and-set transition. Returns affected
// rows: 0 means the order was not in the expected from-state.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID, fromID, toID uint) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND order_status_id = ?", orderID, fromID).
		Update("order_status_id", toID)
	return res.RowsAffected, res.Error
}

// MarkConfirmed is the Pending -> Confirmed transition; it also stamps
// accepted_at, the courier response-time signal.
func (r *OrderRepository) MarkConfirmed(tx *gorm.DB, orderID, fromID, toID uint, at time.Time) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND order_status_id = ?", orderID, fromID).
		Updates(map[string]any{"order_status_id": toID, "accepted_at": at})
	return res.RowsAffected, res.Error
}

// MarkDelivered sets delivered_at together with the status change so the
// "delivered_at iff Delivered" invariant cannot be broken by a partial write.
func (r *OrderRepository) MarkDelivered(tx *gorm.DB, orderID, fromID, toID uint, at time.Time) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND order_status_id = ?", orderID, fromID).
		Updates(map[string]any{"order_status_id": toID, "delivered_at": at})
	return res.RowsAffected, res.Error
}

// ForceStatus is the admin corrective action. Leaving a Delivered state
// clears delivered_at to keep the invariant.
func (r *OrderRepository) ForceStatus(tx *gorm.DB, orderID, toID uint, deliveredAt *time.Time) error {
	return tx.Model(&entity.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"order_status_id": toID, "delivered_at": deliveredAt}).Error
}

// DeliveryStats is one aggregate row per courier over a window.
type DeliveryStats struct {
	TotalOrders      int64
	CompletedOrders  int64
	OnTimeDeliveries int64
}

// CountDeliveryStats aggregates order counts for a courier. On-time compares
// delivered_at against estimated_delivery plus the grace period; delivered
// orders without an estimate count as on-time (absence of a promise is not a
// miss). The timestamp comparison happens in Go to stay portable between
// the sqlite dev driver and postgres.
func (r *OrderRepository) CountDeliveryStats(ctx context.Context, courierID uint, deliveredID uint, from, to time.Time, grace time.Duration) (*DeliveryStats, error) {
	var stats DeliveryStats

	err := r.DB.WithContext(ctx).Model(&entity.Order{}).
		Where("courier_id = ? AND created_at >= ? AND created_at < ?", courierID, from, to).
		Count(&stats.TotalOrders).Error
	if err != nil {
		return nil, err
	}

	var delivered []struct {
		DeliveredAt       *time.Time
		EstimatedDelivery *time.Time
	}
	err = r.DB.WithContext(ctx).Model(&entity.Order{}).
		Select("delivered_at, estimated_delivery").
		Where("courier_id = ? AND created_at >= ? AND created_at < ?", courierID, from, to).
		Where("order_status_id = ?", deliveredID).
		Scan(&delivered).Error
	if err != nil {
		return nil, err
	}

	stats.CompletedOrders = int64(len(delivered))
	for _, d := range delivered {
		if d.DeliveredAt == nil {
			continue
		}
		if d.EstimatedDelivery == nil || !d.DeliveredAt.After(d.EstimatedDelivery.Add(grace)) {
			stats.OnTimeDeliveries++
		}
	}
	return &stats, nil
}

// AvgResponseMinutes is the mean Pending->Confirmed latency. Returns nil when
// no order in the window was ever confirmed (no signal, not a zero).
func (r *OrderRepository) AvgResponseMinutes(ctx context.Context, courierID uint, from, to time.Time) (*float64, error) {
	var rows []struct {
		CreatedAt  time.Time
		AcceptedAt *time.Time
	}
	err := r.DB.WithContext(ctx).Model(&entity.Order{}).
		Select("created_at, accepted_at").
		Where("courier_id = ? AND created_at >= ? AND created_at < ?", courierID, from, to).
		Where("accepted_at IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var total float64
	for _, row := range rows {
		total += row.AcceptedAt.Sub(row.CreatedAt).Minutes()
	}
	avg := total / float64(len(rows))
	return &avg, nil
}

// ListUnreviewedDelivered returns delivered orders older than the cutoff with
// no review row, for the auto-review job.
func (r *OrderRepository) ListUnreviewedDelivered(ctx context.Context, deliveredID uint, cutoff time.Time, limit int) ([]entity.Order, error) {
	var out []entity.Order
	err := r.DB.WithContext(ctx).
		Where("order_status_id = ? AND delivered_at < ?", deliveredID, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM reviews rv WHERE rv.order_id = orders.id AND rv.deleted_at IS NULL)").
		Order("id ASC").Limit(limit).
		Find(&out).Error
	return out, err
}
