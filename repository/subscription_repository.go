package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

func (r *SubscriptionRepository) LimitsFor(ctx context.Context, tier string) (*entity.SubscriptionLimits, error) {
	var lim entity.SubscriptionLimits
	err := r.DB.WithContext(ctx).Where("tier = ?", tier).First(&lim).Error
	if err != nil {
		return nil, err
	}
	return &lim, nil
}

func (r *SubscriptionRepository) MerchantByUserID(ctx context.Context, userID uint) (*entity.Merchant, error) {
	var m entity.Merchant
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
