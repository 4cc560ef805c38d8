package entity

import (
	"gorm.io/gorm"
)

// Roles used by auth middleware and route groups.
const (
	RoleConsumer = "consumer"
	RoleMerchant = "merchant"
	RoleCourier  = "courier"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	Email     string `json:"email" gorm:"uniqueIndex;size:191"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role" gorm:"size:20;index"`
}
