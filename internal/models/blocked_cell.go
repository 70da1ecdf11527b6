package models

import "time"

// BlockedCell is a manual override marking one grid cell unavailable.
type BlockedCell struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProviderID uint   `gorm:"not null;uniqueIndex:ux_blocked_cell,priority:1" json:"provider_id"`
	Date       string `gorm:"size:10;not null;uniqueIndex:ux_blocked_cell,priority:2" json:"date"`
	StartTime  string `gorm:"size:5;not null;uniqueIndex:ux_blocked_cell,priority:3" json:"start_time"`
	Reason     string `gorm:"size:255" json:"reason"`
	CreatedBy  uint   `json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
}
