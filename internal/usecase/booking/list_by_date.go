package booking

import (
	"context"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/dto"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

type ListBookingsByDate struct {
	repo     domain.Repository
	settings Settings
}

func NewListBookingsByDate(
	repo domain.Repository,
	settings Settings,
) *ListBookingsByDate {
	return &ListBookingsByDate{
		repo:     repo,
		settings: settings,
	}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	actor domain.Actor,
	providerID uint,
	date string,
) ([]dto.BookingListDTO, error) {

	if err := domain.AuthorizeProvider(actor, providerID); err != nil {
		return nil, err
	}
	if !timezone.IsDate(date) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	p, err := uc.repo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(p.Timezone)

	bookings, err := uc.repo.ListBookingsForDay(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		out = append(out, dto.BookingListDTO{
			ID:               b.ID,
			CustomerID:       b.CustomerID,
			ServiceID:        b.ServiceID,
			Mode:             b.Mode,
			StartTime:        b.StartTime.In(loc),
			EndTime:          b.EndTime.In(loc),
			FulfilmentStatus: b.FulfilmentStatus,
			PaymentStatus:    b.PaymentStatus,
			ProviderApproval: b.ProviderApproval,
			Occupies:         domain.Occupies(b),
		})
	}

	return out, nil
}
