package models

import (
	"time"
)

// Payment is one recorded payment event against an order. Income metrics
// aggregate these rows, so every confirmed or verified payment writes one.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"not null;index" json:"order_id"`
	Amount        int       `gorm:"not null" json:"amount"`
	Method        string    `gorm:"not null" json:"method"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
