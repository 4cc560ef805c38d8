package entity

import (
	"gorm.io/gorm"
)

// Courier is soft-deleted (gorm DeletedAt) rather than removed while orders
// still reference it.
type Courier struct {
	gorm.Model
	Name        string `json:"name"`
	ServiceType string `json:"serviceType"` // e.g. "home_delivery", "parcel_locker"
	Country     string `json:"country" gorm:"size:2;index"`
	IsActive    bool   `json:"isActive" gorm:"default:true;index"`
	Tier        string `json:"tier" gorm:"size:20;default:'tier1'"`

	UserID uint `json:"userId"`
	User   User `json:"-"` // preload only when the owner detail is needed

	Rates  []CourierRate `json:"-"`
	Orders []Order       `json:"-"`

	TrustScore *TrustScore `json:"-"` // cached snapshot, replaced on recompute
}
