package entity

import (
	"gorm.io/gorm"
)

// CheckoutPosition is an append-only fact: where a courier was ranked when a
// checkout was shown, with the score/price snapshotted at that moment. Rows
// are never updated after creation except the one-time WasSelected flip.
type CheckoutPosition struct {
	gorm.Model
	SessionID string `json:"sessionId" gorm:"size:64;index:idx_checkout_session"`

	CourierID  uint `json:"courierId" gorm:"index"`
	MerchantID uint `json:"merchantId" gorm:"index"`

	PositionShown    int     `json:"positionShown"` // 1-based
	TrustScoreAtTime float64 `json:"trustScoreAtTime"`
	PriceAtTime      int64   `json:"priceAtTime"`
	EtaMinutes       int     `json:"etaMinutes"`
	WasSelected      bool    `json:"wasSelected" gorm:"default:false"`

	// Contextual order metadata captured at display time.
	OrderValueCents int64   `json:"orderValueCents"`
	WeightKg        float64 `json:"weightKg"`
	DestCountry     string  `json:"destCountry" gorm:"size:2"`
	DestPostal      string  `json:"destPostal" gorm:"size:16"`
}
