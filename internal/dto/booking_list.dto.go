package dto

import "time"

type BookingListDTO struct {
	ID         uint      `json:"id"`
	CustomerID uint      `json:"customer_id"`
	ServiceID  uint      `json:"service_id"`
	Mode       string    `json:"mode"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`

	FulfilmentStatus string `json:"fulfilment_status"`
	PaymentStatus    string `json:"payment_status"`
	ProviderApproval string `json:"provider_approval"`
	Occupies         bool   `json:"occupies"`
}
