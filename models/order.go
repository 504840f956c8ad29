package models

import (
	"time"
)

// OrderStatus is the closed vocabulary an authenticated order moves through.
// The forward flow is fixed; side branches cover cancellation.
type OrderStatus string

const (
	StatusPending                    OrderStatus = "pending"
	StatusApproved                   OrderStatus = "approved"
	StatusPendingInitialList         OrderStatus = "pending_initial_list"
	StatusPendingConsultationPayment OrderStatus = "pending_consultation_payment"
	StatusPendingPartsUpload         OrderStatus = "pending_parts_upload"
	StatusPendingSchedule            OrderStatus = "pending_schedule"
	StatusSchedulePendingApproval    OrderStatus = "schedule_pending_approval"
	StatusBuilding                   OrderStatus = "building"
	StatusReady                      OrderStatus = "ready"
	StatusDelivered                  OrderStatus = "delivered"
	StatusCancellationPending        OrderStatus = "cancellation_pending"
	StatusCancelled                  OrderStatus = "cancelled"
)

// PaymentMethod values accepted from the portal
const (
	PaymentMethodBit    = "bit"
	PaymentMethodPaybox = "paybox"
	PaymentMethodCash   = "cash"
	PaymentMethodLater  = "later"
)

// PartItem is a single line in a parts list
type PartItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Source         string  `json:"source,omitempty"`
	Link           string  `json:"link,omitempty"`
	Quantity       int     `json:"quantity"`
	Type           string  `json:"type"`
	PeripheralType string  `json:"peripheral_type,omitempty"`
}

// PartsList is the stored bill of materials: the 3-item initial list and,
// later, the full component list
type PartsList struct {
	InitialList []PartItem `json:"initial_list,omitempty"`
	FullList    []PartItem `json:"full_list,omitempty"`
	UploadDate  time.Time  `json:"upload_date"`
}

// Order represents a confirmed, trackable build order derived from an
// approved offer. Exactly one originating offer per order.
type Order struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	OfferID           uint         `gorm:"not null;index" json:"offer_id"`
	Offer             Offer        `gorm:"foreignKey:OfferID" json:"offer"`
	UserID            *uint        `gorm:"index" json:"user_id,omitempty"`
	Status            OrderStatus  `gorm:"not null;default:'approved';index" json:"status"`
	PreviousStatus    *OrderStatus `json:"previous_status,omitempty"`
	PaidAmount        int          `gorm:"default:0" json:"paid_amount"`
	PaymentMethod     *string      `json:"payment_method,omitempty"`
	TransactionID     *string      `json:"transaction_id,omitempty"`
	PartsList         *PartsList   `gorm:"type:jsonb;serializer:json" json:"parts_list,omitempty"`
	BuildDate         *time.Time   `json:"build_date,omitempty"`
	WeekendFeeApplied bool         `gorm:"default:false" json:"weekend_fee_applied"`
	AgreeToTerms      bool         `gorm:"default:false" json:"agree_to_terms"`
	ProposedBy        string       `json:"proposed_by"`
	CancelledAt       *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "authenticated_orders"
}
