package models

import (
	"time"
)

// ServiceType enumerates what the business is hired to do for an offer
type ServiceType string

const (
	ServiceConsultationOnly     ServiceType = "consultationOnly"
	ServiceBuildOnly            ServiceType = "buildOnly"
	ServiceConsultationAndBuild ServiceType = "consultationAndBuild"
)

// IncludesConsultation reports whether the service type carries a consultation phase
func (s ServiceType) IncludesConsultation() bool {
	return s == ServiceConsultationOnly || s == ServiceConsultationAndBuild
}

// DeliveryType describes how the finished build reaches the customer
type DeliveryType string

const (
	DeliveryPickup      DeliveryType = "pickup"
	DeliveryBuildAtHome DeliveryType = "build_at_home"
	DeliveryShipping    DeliveryType = "shipping"
)

// Offer statuses. Offers are never hard-deleted, only status-flagged.
const (
	OfferStatusPending   = "pending"
	OfferStatusConfirmed = "confirmed"
	OfferStatusCancelled = "cancelled"
)

// Offer represents a quote request submitted through the marketing site
type Offer struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	FullName          string           `gorm:"not null" json:"full_name"`
	Email             string           `gorm:"not null;index" json:"email"`
	Phone             string           `gorm:"not null" json:"phone"`
	Budget            float64          `gorm:"not null;check:budget > 0" json:"budget"`
	ServiceCost       int              `gorm:"not null" json:"service_cost"`
	ServiceType       ServiceType      `gorm:"not null" json:"service_type"`
	OperatingSystem   string           `json:"operating_system"`
	UseTypes          []string         `gorm:"type:jsonb;serializer:json" json:"use_types"`
	GameResolution    *string          `json:"game_resolution,omitempty"`
	VideoSoftware     *string          `json:"video_software,omitempty"`
	DeliveryType      DeliveryType     `gorm:"not null;default:'pickup'" json:"delivery_type"`
	Address           *string          `json:"address,omitempty"`
	City              *string          `json:"city,omitempty"`
	Latitude          *float64         `json:"latitude,omitempty"`
	Longitude         *float64         `json:"longitude,omitempty"`
	Status            string           `gorm:"not null;default:'pending';index" json:"status"`
	Preferences       *PreferencesData `gorm:"type:jsonb;serializer:json" json:"preferences,omitempty"`
	PeripheralsBudget float64          `gorm:"default:0" json:"peripherals_budget"`
	ReferralCode      *string          `json:"referral_code,omitempty"`
	IdempotencyKey    *string          `gorm:"uniqueIndex" json:"idempotency_key,omitempty"`
	CancelledAt       *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Offer model
func (Offer) TableName() string {
	return "offers"
}

// SourceItem is an approved purchase source for parts
type SourceItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PeripheralItem marks a peripheral the customer still needs (derived from
// declared existing hardware in the preferences form)
type PeripheralItem struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	IsCustom bool   `json:"is_custom"`
}

// PreferencesData holds sourcing and peripheral choices, either global
// (profile-level) or attached to a single offer
type PreferencesData struct {
	PartsSource       []SourceItem     `json:"parts_source"`
	ExistingHardware  []PeripheralItem `json:"existing_hardware"`
	CustomSources     []SourceItem     `json:"custom_sources,omitempty"`
	CustomPeripherals []string         `json:"custom_peripherals,omitempty"`
}
