package entity

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	gorm.Model
	ValueCents  int64   `json:"valueCents"`
	WeightKg    float64 `json:"weightKg"`
	DestCountry string  `json:"destCountry" gorm:"size:2;index"`
	DestPostal  string  `json:"destPostal" gorm:"size:16"`

	// AcceptedAt is set on the Pending -> Confirmed transition and feeds the
	// courier's response-time signal.
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	// Invariant: DeliveredAt is set iff the order is in Delivered state.
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`

	MerchantID uint     `json:"merchantId" gorm:"index"`
	Merchant   Merchant `json:"-"`

	CourierID uint    `json:"courierId" gorm:"index"`
	Courier   Courier `json:"-"`

	ConsumerID *uint `json:"consumerId,omitempty"`
	Consumer   *User `json:"-"`

	OrderStatusID uint        `json:"orderStatusId"`
	OrderStatus   OrderStatus `json:"orderStatus"`

	Review *Review `json:"-"` // preload only on detail
}
