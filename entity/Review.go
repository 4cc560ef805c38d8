package entity

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Review is at most one per delivered order. Immutable after creation except
// for the moderation status. System-default reviews are created by the
// auto-review job when a consumer never responds.
type Review struct {
	gorm.Model
	Rating             int    `json:"rating"` // 1..5
	OnTimeScore        int    `json:"onTimeScore"`
	CommunicationScore int    `json:"communicationScore"`
	PackageScore       int    `json:"packageScore"`
	Comments           string `json:"comments"`
	Status             string `json:"status" gorm:"size:20;default:'pending';index"`
	IsSystemDefault    bool   `json:"isSystemDefault" gorm:"default:false"`

	ReviewDate time.Time `json:"reviewDate"`

	OrderID uint  `json:"orderId" gorm:"uniqueIndex"`
	Order   Order `json:"-"`

	// Denormalized for the aggregation queries.
	CourierID uint `json:"courierId" gorm:"index"`

	ConsumerID *uint `json:"consumerId,omitempty"`
	Consumer   *User `json:"-"`
}
