package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Merchant{},
		&entity.Courier{}, &entity.CourierRate{},
		&entity.OrderStatus{}, &entity.Order{},
		&entity.Review{},
		&entity.TrustScore{},
		&entity.CheckoutPosition{},
		&entity.SubscriptionLimits{},
	))

	statuses := []string{
		entity.StatusPending, entity.StatusConfirmed, entity.StatusPickedUp,
		entity.StatusInTransit, entity.StatusDelivered, entity.StatusCancelled,
		entity.StatusFailed,
	}
	for _, name := range statuses {
		require.NoError(t, db.Create(&entity.OrderStatus{StatusName: name}).Error)
	}

	tiers := []entity.SubscriptionLimits{
		{Tier: entity.TierFree, MaxCouriers: 3, MaxMarkets: 1, MaxLookbackDays: 30, MaxCounterparties: 1},
		{Tier: entity.TierPro, MaxCouriers: 10, MaxMarkets: 3, MaxLookbackDays: 180, MaxCounterparties: 5},
		{Tier: entity.TierScale, MaxLookbackDays: 365, MaxCounterparties: 20},
	}
	for _, tier := range tiers {
		require.NoError(t, db.Create(&tier).Error)
	}

	return db
}

func newTestConfig() *configs.Config {
	return &configs.Config{
		WeightCompletion: 0.35,
		WeightOnTime:     0.30,
		WeightRating:     0.20,
		WeightResponse:   0.15,
		MinReviews:       5,

		MaxWindowDays:    730,
		GraceMinutes:     0,
		ResponseTimeout:  14,
		DefaultSatisfact: 0.70,

		CacheTTLSingle:    10 * time.Minute,
		CacheTTLDashboard: 15 * time.Minute,
		CacheSize:         128,

		UpgradeURL: "https://performile.test/upgrade",
	}
}

func statusID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var s entity.OrderStatus
	require.NoError(t, db.Where("status_name = ?", name).First(&s).Error)
	return s.ID
}

func seedCourier(t *testing.T, db *gorm.DB, name, country string, userID uint) *entity.Courier {
	t.Helper()
	c := &entity.Courier{Name: name, Country: country, IsActive: true, Tier: entity.TierFree, UserID: userID}
	require.NoError(t, db.Create(c).Error)
	return c
}

// seedDeliveredOrder creates a delivered order in a given punctuality state.
func seedDeliveredOrder(t *testing.T, db *gorm.DB, courierID uint, onTime bool) *entity.Order {
	t.Helper()
	estimated := time.Now().Add(-24 * time.Hour)
	delivered := estimated.Add(-1 * time.Hour)
	if !onTime {
		delivered = estimated.Add(2 * time.Hour)
	}
	o := &entity.Order{
		CourierID:         courierID,
		MerchantID:        1,
		OrderStatusID:     statusID(t, db, entity.StatusDelivered),
		EstimatedDelivery: &estimated,
		DeliveredAt:       &delivered,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}
