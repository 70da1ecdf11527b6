package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

// dayView is everything the resolver needs for one provider and date.
type dayView struct {
	provider *models.Provider
	loc      *time.Location
	date     time.Time
	schedule domain.DaySchedule
	working  bool
	bookings []models.Booking
	blocked  []models.BlockedCell
}

func loadDay(
	ctx context.Context,
	repo domain.Repository,
	p *models.Provider,
	date string,
) (*dayView, error) {

	loc := timezone.Location(p.Timezone)
	d, err := timezone.ParseDate(date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	v := &dayView{provider: p, loc: loc, date: d}

	wh, err := repo.GetWorkingHours(ctx, p.ID, int(d.Weekday()))
	if err != nil {
		return nil, err
	}

	v.schedule, v.working = domain.ResolveSchedule(wh, d)
	if !v.working {
		return v, nil
	}

	if v.bookings, err = repo.ListBookingsForDay(ctx, p.ID, date); err != nil {
		return nil, err
	}
	if v.blocked, err = repo.ListBlockedCells(ctx, p.ID, date); err != nil {
		return nil, err
	}

	return v, nil
}

// states classifies the day, leaving out the booking with id exclude.
func (v *dayView) states(cellMinutes int, exclude uint) []slot.CellState {
	bookings := v.bookings
	if exclude != 0 {
		bookings = make([]models.Booking, 0, len(v.bookings))
		for _, b := range v.bookings {
			if b.ID != exclude {
				bookings = append(bookings, b)
			}
		}
	}
	return domain.ClassifyDay(v.date, v.schedule, cellMinutes, bookings, v.blocked)
}
