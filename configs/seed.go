package configs

import (
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

// SeedLookups inserts the order status rows and the default subscription tier
// table. Tier limits live in the database so billing events can adjust them
// without a deploy; 0 means unlimited.
func SeedLookups(db *gorm.DB) error {
	statuses := []string{
		entity.StatusPending, entity.StatusConfirmed, entity.StatusPickedUp,
		entity.StatusInTransit, entity.StatusDelivered, entity.StatusCancelled,
		entity.StatusFailed,
	}
	for _, name := range statuses {
		var s entity.OrderStatus
		err := db.Where(entity.OrderStatus{StatusName: name}).
			FirstOrCreate(&s).Error
		if err != nil {
			return err
		}
	}

	tiers := []entity.SubscriptionLimits{
		{Tier: entity.TierFree, MaxCouriers: 3, MaxMarkets: 1, MaxLookbackDays: 30, MaxCounterparties: 1},
		{Tier: entity.TierPro, MaxCouriers: 10, MaxMarkets: 3, MaxLookbackDays: 180, MaxCounterparties: 5},
		{Tier: entity.TierScale, MaxCouriers: 0, MaxMarkets: 0, MaxLookbackDays: 365, MaxCounterparties: 20},
	}
	for _, t := range tiers {
		var existing entity.SubscriptionLimits
		err := db.Where(entity.SubscriptionLimits{Tier: t.Tier}).
			Attrs(t).FirstOrCreate(&existing).Error
		if err != nil {
			return err
		}
	}
	return nil
}
