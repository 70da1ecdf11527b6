package slot

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

// ParseClock accepts "15:04" and the end-of-day marker "24:00".
func ParseClock(s string) (Clock, error) {
	if s == "24:00" {
		return Clock(24 * 60), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// OperatingHours is a provider's working window for one day.
type OperatingHours struct {
	Start Clock
	End   Clock
}

type Cell struct {
	Date  string    `json:"date"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Key identifies a cell by provider-local date and start clock, the same
// shape blocked cells are stored with.
func (c Cell) Key() string {
	return Key(c.Date, c.Start.Format("15:04"))
}

func (c Cell) Span() Span {
	return Span{Start: c.Start, End: c.End}
}

func Key(date, clock string) string {
	return date + "T" + clock
}

// BuildGrid splits the operating window of date into contiguous cells of
// cellMinutes each. A trailing remainder shorter than one cell is dropped.
// Cells carry wall-clock times in date's location.
func BuildGrid(date time.Time, hours OperatingHours, cellMinutes int) []Cell {
	if cellMinutes <= 0 || hours.Start >= hours.End {
		return []Cell{}
	}

	y, m, d := date.Date()
	loc := date.Location()
	day := date.Format(dateLayout)

	cells := make([]Cell, 0, int(hours.End-hours.Start)/cellMinutes)
	for cur := int(hours.Start); cur+cellMinutes <= int(hours.End); cur += cellMinutes {
		cells = append(cells, Cell{
			Date:  day,
			Start: wallClock(y, m, d, cur, loc),
			End:   wallClock(y, m, d, cur+cellMinutes, loc),
		})
	}
	return cells
}

func wallClock(y int, m time.Month, d, minutes int, loc *time.Location) time.Time {
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}
