package booking

import (
	"context"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type GetBooking struct {
	repo     domain.Repository
	settings Settings
}

func NewGetBooking(repo domain.Repository, settings Settings) *GetBooking {
	return &GetBooking{repo: repo, settings: settings}
}

func (uc *GetBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	bookingID uint,
) (*models.Booking, error) {

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeView(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}
