package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

type CourierRepository struct {
	DB *gorm.DB
}

func NewCourierRepository(db *gorm.DB) *CourierRepository {
	return &CourierRepository{DB: db}
}

func (r *CourierRepository) Get(ctx context.Context, id uint) (*entity.Courier, error) {
	var c entity.Courier
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourierRepository) GetByUserID(ctx context.Context, userID uint) (*entity.Courier, error) {
	var c entity.Courier
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActiveIDs returns ids of active couriers, used by the background
// refresh job.
func (r *CourierRepository) ListActiveIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&entity.Courier{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ListCandidates returns active couriers serving a destination country,
// optionally restricted to an explicit candidate set.
func (r *CourierRepository) ListCandidates(ctx context.Context, country string, ids []uint) ([]entity.Courier, error) {
	db := r.DB.WithContext(ctx).
		Joins("JOIN courier_rates cr ON cr.courier_id = couriers.id AND cr.country = ? AND cr.deleted_at IS NULL", country).
		Where("couriers.is_active = ?", true)
	if len(ids) > 0 {
		db = db.Where("couriers.id IN ?", ids)
	}

	var out []entity.Courier
	err := db.Distinct("couriers.*").Order("couriers.id ASC").Find(&out).Error
	return out, err
}

func (r *CourierRepository) RateFor(ctx context.Context, courierID uint, country string) (*entity.CourierRate, error) {
	var rate entity.CourierRate
	err := r.DB.WithContext(ctx).
		Where("courier_id = ? AND country = ?", courierID, country).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
