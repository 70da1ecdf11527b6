package booking

import (
	"context"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// ConflictGuard re-runs occupancy for a booking's span against the state
// committed in the current transaction. Callers hold the provider lock.
type ConflictGuard struct {
	cellMinutes int
}

func NewConflictGuard(cellMinutes int) *ConflictGuard {
	return &ConflictGuard{cellMinutes: cellMinutes}
}

// Check returns nil when every cell under b is available, ignoring b itself.
// Spans outside the day's grid fail with outside_working_hours, spans that
// do not start on a cell boundary with invalid_slot, and a busy cell with a
// SlotConflictError naming the first one.
func (g *ConflictGuard) Check(
	ctx context.Context,
	tx domain.Repository,
	p *models.Provider,
	b *models.Booking,
) error {

	v, err := loadDay(ctx, tx, p, b.Date)
	if err != nil {
		return err
	}
	if !v.working {
		return httperr.ErrBusiness(httperr.CodeOutsideWorkingHours)
	}

	states := v.states(g.cellMinutes, b.ID)
	if len(states) == 0 {
		return httperr.ErrBusiness(httperr.CodeOutsideWorkingHours)
	}

	span := slot.Span{Start: b.StartTime.In(v.loc), End: b.EndTime.In(v.loc)}
	if span.Start.Before(states[0].Start) || span.End.After(states[len(states)-1].End) {
		return httperr.ErrBusiness(httperr.CodeOutsideWorkingHours)
	}

	run, ok := slot.Cover(states, span)
	if !ok {
		return httperr.ErrBusiness(httperr.CodeInvalidSlot)
	}

	if st, busy := slot.FirstUnavailable(run); busy {
		return httperr.SlotConflictError{
			ProviderID: p.ID,
			Cell:       st.Key(),
			Status:     string(st.Status),
		}
	}
	return nil
}

// offGrid reports guard failures that mean the span is no longer bookable
// at all, as opposed to a datastore error.
func offGrid(err error) bool {
	code := httperr.CodeOf(err)
	return code == httperr.CodeOutsideWorkingHours || code == httperr.CodeInvalidSlot
}
