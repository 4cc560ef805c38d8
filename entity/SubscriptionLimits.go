package entity

import (
	"gorm.io/gorm"
)

const (
	TierFree  = "tier1"
	TierPro   = "tier2"
	TierScale = "tier3"
)

// SubscriptionLimits bounds what an account tier may see. Read-only input to
// the subscription gate; rows are mutated only by billing-system events.
// A limit of 0 means unlimited.
type SubscriptionLimits struct {
	gorm.Model
	Tier string `json:"tier" gorm:"uniqueIndex;size:20"`

	MaxCouriers       int `json:"maxCouriers"`
	MaxMarkets        int `json:"maxMarkets"`
	MaxLookbackDays   int `json:"maxLookbackDays"`
	MaxCounterparties int `json:"maxCounterparties"` // distinct merchants/couriers in analytics
}
