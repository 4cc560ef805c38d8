package entity

import (
	"gorm.io/gorm"
)

// CourierRate is the per-country rate card used at checkout ranking time.
// Prices are in minor units (cents / øre).
type CourierRate struct {
	gorm.Model
	CourierID  uint   `json:"courierId" gorm:"index:idx_rate_courier_country"`
	Country    string `json:"country" gorm:"size:2;index:idx_rate_courier_country"`
	BaseFee    int64  `json:"baseFee"`
	PerKgFee   int64  `json:"perKgFee"`
	EtaMinutes int    `json:"etaMinutes"`

	Courier Courier `json:"-"`
}
