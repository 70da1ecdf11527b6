package slot

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusBlocked   Status = "blocked"
)

// Span is a half-open interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open spans intersect. Touching spans do not.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Occupant is the span held by a booking that currently occupies the grid.
type Occupant struct {
	BookingID uint
	Span      Span
}

type CellState struct {
	Cell
	Status    Status `json:"status"`
	BookingID uint   `json:"booking_id,omitempty"`
}

// BlockedKeys is the set of cell keys closed by manual overrides.
type BlockedKeys map[string]bool

// BlockSpan closes every cell overlapping span (breaks, closures).
func (b BlockedKeys) BlockSpan(cells []Cell, span Span) {
	for _, c := range cells {
		if c.Span().Overlaps(span) {
			b[c.Key()] = true
		}
	}
}

// Classify resolves the status of every cell. An occupying booking always
// wins over a block so admin views keep showing the real occupant; the
// first overlapping occupant in input order is reported.
func Classify(cells []Cell, occupants []Occupant, blocked BlockedKeys) []CellState {
	out := make([]CellState, len(cells))

	for i, c := range cells {
		st := CellState{Cell: c, Status: StatusAvailable}
		span := c.Span()

		for _, o := range occupants {
			if span.Overlaps(o.Span) {
				st.Status = StatusOccupied
				st.BookingID = o.BookingID
				break
			}
		}

		if st.Status == StatusAvailable && blocked[c.Key()] {
			st.Status = StatusBlocked
		}

		out[i] = st
	}

	return out
}

func Index(states []CellState) map[string]CellState {
	idx := make(map[string]CellState, len(states))
	for _, st := range states {
		idx[st.Key()] = st
	}
	return idx
}

// Cover returns the contiguous run of cells spanning span. The span must
// start exactly on a cell boundary and end inside the grid.
func Cover(states []CellState, span Span) ([]CellState, bool) {
	for i := range states {
		if states[i].Start.Equal(span.Start) {
			return coverFrom(states, i, span.End)
		}
	}
	return nil, false
}

func coverFrom(states []CellState, i int, end time.Time) ([]CellState, bool) {
	if !end.After(states[i].Start) {
		return nil, false
	}

	j := i
	for ; j < len(states) && states[j].Start.Before(end); j++ {
		if j > i && !states[j].Start.Equal(states[j-1].End) {
			return nil, false
		}
	}

	run := states[i:j]
	if run[len(run)-1].End.Before(end) {
		return nil, false
	}
	return run, true
}

// FirstUnavailable returns the first cell of run that is not available.
func FirstUnavailable(run []CellState) (CellState, bool) {
	for _, st := range run {
		if st.Status != StatusAvailable {
			return st, true
		}
	}
	return CellState{}, false
}
