package entity

import (
	"time"

	"gorm.io/gorm"
)

// TrustScore is the cached derived snapshot per courier. Recomputed from
// orders+reviews on cache miss, explicit refresh or background job; never
// hand-edited.
type TrustScore struct {
	gorm.Model
	CourierID uint `json:"courierId" gorm:"uniqueIndex"`

	TotalOrders      int `json:"totalOrders"`
	CompletedOrders  int `json:"completedOrders"`
	OnTimeDeliveries int `json:"onTimeDeliveries"`
	TotalReviews     int `json:"totalReviews"`

	AverageRating  float64 `json:"averageRating"`
	CompletionRate float64 `json:"completionRate"` // percent 0..100
	OnTimeRate     float64 `json:"onTimeRate"`     // percent 0..100

	Score         float64 `json:"trustScore" gorm:"column:trust_score"`
	LowConfidence bool    `json:"lowConfidence"`

	LastCalculated time.Time `json:"lastCalculated"`
}
