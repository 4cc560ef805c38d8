package entity

import (
	"gorm.io/gorm"
)

type Merchant struct {
	gorm.Model
	Name    string `json:"name"`
	Country string `json:"country" gorm:"size:2;index"`
	Tier    string `json:"tier" gorm:"size:20;default:'tier1'"`

	UserID uint `json:"userId"`
	User   User `json:"-"`

	Orders []Order `json:"-"`
}
