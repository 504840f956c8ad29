package models

import (
	"time"
)

// Roles a profile can hold. Role is recomputed at write time whenever an
// offer is created or linked, never on read.
const (
	RoleAdmin      = "Admin"
	RoleCustomer   = "Customer"
	RoleNotRelated = "NotRelated"
)

// Profile represents an authenticated user of the portal or back-office
type Profile struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Auth0ID           string           `gorm:"uniqueIndex;not null" json:"auth0_id"`
	FullName          string           `gorm:"not null" json:"full_name"`
	Email             string           `gorm:"uniqueIndex;not null" json:"email"`
	Phone             string           `json:"phone"`
	Role              string           `gorm:"not null;default:'NotRelated'" json:"role"`
	Preferences       *PreferencesData `gorm:"type:jsonb;serializer:json" json:"preferences,omitempty"`
	PeripheralsBudget float64          `gorm:"default:0" json:"peripherals_budget"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}
