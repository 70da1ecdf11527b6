package models

import "time"

// Service is the read-only catalogue entry a booking refers to.
type Service struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	DurationMin int    `json:"duration_min"`
	Mode        string `gorm:"size:20" json:"mode"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
