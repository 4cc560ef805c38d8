package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) Create(tx *gorm.DB, rev *entity.Review) error {
	return tx.Create(rev).Error
}

func (r *ReviewRepository) Get(ctx context.Context, id uint) (*entity.Review, error) {
	var rev entity.Review
	if err := r.DB.WithContext(ctx).First(&rev, id).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *ReviewRepository) ExistsForOrder(ctx context.Context, orderID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&entity.Review{}).
		Where("order_id = ?", orderID).Count(&n).Error
	return n > 0, err
}

// UpdateStatus is the only mutation allowed after creation (moderation).
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uint, status string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&entity.Review{}).
		Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

// RatingStats aggregates approved reviews for a courier over a window.
type RatingStats struct {
	Count int64
	Avg   float64
}

func (r *ReviewRepository) RatingStats(ctx context.Context, courierID uint, from, to time.Time) (*RatingStats, error) {
	var out struct {
		Count int64
		Avg   *float64
	}
	err := r.DB.WithContext(ctx).Model(&entity.Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where("courier_id = ? AND status = ?", courierID, entity.ReviewApproved).
		Where("review_date >= ? AND review_date < ?", from, to).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	stats := &RatingStats{Count: out.Count}
	if out.Avg != nil {
		stats.Avg = *out.Avg
	}
	return stats, nil
}
