package models

import "time"

// Booking is a customer reservation of a provider time span. Its three status
// columns are independent axes; see domain/booking for the transition rules.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProviderID uint     `gorm:"not null;index:idx_booking_provider_date,priority:1" json:"provider_id"`
	Provider   Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	ServiceID  uint   `gorm:"not null" json:"service_id"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	Mode       string `gorm:"size:20" json:"mode"`

	// Date is the provider-local calendar day, "2006-01-02".
	Date      string    `gorm:"size:10;not null;index:idx_booking_provider_date,priority:2" json:"date"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	FulfilmentStatus string `gorm:"size:20;not null;default:'pending'" json:"fulfilment_status"`
	PaymentStatus    string `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`
	ProviderApproval string `gorm:"size:20;not null;default:'pending'" json:"provider_approval"`
	RejectReason     string `gorm:"size:255" json:"reject_reason"`

	OrderRef   string `gorm:"size:64;index" json:"order_ref"`
	PaymentRef string `gorm:"size:64" json:"payment_ref"`

	PaidAt      *time.Time `json:"paid_at"`
	RefundedAt  *time.Time `json:"refunded_at"`
	DecidedAt   *time.Time `json:"decided_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
