package entity

import (
	"gorm.io/gorm"
)

// Delivery lifecycle:
// Pending -> Confirmed -> PickedUp -> InTransit -> Delivered | Cancelled | Failed
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusPickedUp  = "PickedUp"
	StatusInTransit = "InTransit"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
	StatusFailed    = "Failed"
)

type OrderStatus struct {
	gorm.Model
	StatusName string `json:"statusName" gorm:"uniqueIndex;size:30"`
}
