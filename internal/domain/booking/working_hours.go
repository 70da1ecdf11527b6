package booking

import (
	"time"

	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// DaySchedule is a provider's resolved working window for one date.
type DaySchedule struct {
	Hours slot.OperatingHours
	Break *slot.Span
}

// ResolveSchedule turns stored working hours into the grid window for date.
// ok is false when the day is off or the configuration cannot be used.
func ResolveSchedule(wh *models.WorkingHours, date time.Time) (DaySchedule, bool) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return DaySchedule{}, false
	}

	start, err := slot.ParseClock(wh.StartTime)
	if err != nil {
		return DaySchedule{}, false
	}
	end, err := slot.ParseClock(wh.EndTime)
	if err != nil || end <= start {
		return DaySchedule{}, false
	}

	ds := DaySchedule{Hours: slot.OperatingHours{Start: start, End: end}}

	if wh.BreakStart != "" && wh.BreakEnd != "" {
		bs, err1 := slot.ParseClock(wh.BreakStart)
		be, err2 := slot.ParseClock(wh.BreakEnd)
		if err1 == nil && err2 == nil && bs < be {
			ds.Break = &slot.Span{
				Start: clockOn(date, bs),
				End:   clockOn(date, be),
			}
		}
	}

	return ds, true
}

func clockOn(date time.Time, c slot.Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, date.Location())
}

// Occupants keeps the bookings that hold their span, in start order.
func Occupants(bookings []models.Booking, loc *time.Location) []slot.Occupant {
	out := make([]slot.Occupant, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if !Occupies(b) {
			continue
		}
		out = append(out, slot.Occupant{
			BookingID: b.ID,
			Span: slot.Span{
				Start: b.StartTime.In(loc),
				End:   b.EndTime.In(loc),
			},
		})
	}
	return out
}

// ClassifyDay builds the grid for date and resolves every cell.
func ClassifyDay(
	date time.Time,
	schedule DaySchedule,
	cellMinutes int,
	bookings []models.Booking,
	blocked []models.BlockedCell,
) []slot.CellState {
	cells := slot.BuildGrid(date, schedule.Hours, cellMinutes)

	keys := slot.BlockedKeys{}
	for _, bc := range blocked {
		keys[slot.Key(bc.Date, bc.StartTime)] = true
	}
	if schedule.Break != nil {
		keys.BlockSpan(cells, *schedule.Break)
	}

	return slot.Classify(cells, Occupants(bookings, date.Location()), keys)
}
