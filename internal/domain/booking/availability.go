package booking

import (
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
)

type AvailabilityInput struct {
	ProviderID      uint
	Date            string
	DurationMinutes int
	ServiceID       uint
	Mode            string
}

// Availability is the customer-facing answer. Condition is set instead of
// an error when the provider does not work that day.
type Availability struct {
	ProviderID      uint        `json:"provider_id"`
	Date            string      `json:"date"`
	DurationMinutes int         `json:"duration_minutes"`
	Mode            string      `json:"mode,omitempty"`
	Condition       string      `json:"condition,omitempty"`
	Slots           []slot.Slot `json:"slots"`
}

type DayRow struct {
	ProviderID   uint             `json:"provider_id"`
	ProviderName string           `json:"provider_name"`
	Condition    string           `json:"condition,omitempty"`
	Cells        []slot.CellState `json:"cells"`
}

// DayMatrix is the admin provider x cell view of one date.
type DayMatrix struct {
	Date string   `json:"date"`
	Rows []DayRow `json:"rows"`
}
