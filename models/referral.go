package models

import (
	"time"
)

// Referral is a single-use discount code tying a referrer to one named
// prospective customer. The used flag flips false -> true exactly once.
type Referral struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ReferrerID         uint       `gorm:"not null;index" json:"referrer_id"`
	Code               string     `gorm:"uniqueIndex;not null" json:"code"`
	NewCustomerName    string     `gorm:"not null" json:"new_customer_name"`
	NewCustomerEmail   string     `gorm:"not null" json:"new_customer_email"`
	DiscountPercentage int        `gorm:"not null;default:20" json:"discount_percentage"`
	Used               bool       `gorm:"not null;default:false;index" json:"used"`
	UsedAt             *time.Time `json:"used_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// TableName specifies the table name for the Referral model
func (Referral) TableName() string {
	return "referrals"
}
