package slot

import "time"

// Slot is a bookable span offered to a caller; it may cover several cells.
type Slot struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status Status    `json:"status"`
}

// Slots lists every start whose full duration lies on available,
// contiguous cells.
func Slots(states []CellState, duration time.Duration) []Slot {
	out := []Slot{}
	if duration <= 0 {
		return out
	}

	for i := range states {
		end := states[i].Start.Add(duration)
		run, ok := coverFrom(states, i, end)
		if !ok {
			continue
		}
		if _, busy := FirstUnavailable(run); busy {
			continue
		}

		out = append(out, Slot{
			Start:  states[i].Start,
			End:    end,
			Status: StatusAvailable,
		})
	}

	return out
}

// NotBefore drops slots starting before limit (past starts, lead time).
func NotBefore(slots []Slot, limit time.Time) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.Start.Before(limit) {
			continue
		}
		out = append(out, s)
	}
	return out
}
