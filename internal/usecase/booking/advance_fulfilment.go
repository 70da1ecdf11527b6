package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// AdvanceFulfilment moves a confirmed consultation to in_progress or
// completed on the provider's behalf. Completed bookings keep their span.
type AdvanceFulfilment struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	settings Settings
	log      *zap.Logger
}

func NewAdvanceFulfilment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	settings Settings,
	log *zap.Logger,
) *AdvanceFulfilment {
	return &AdvanceFulfilment{
		repo:     repo,
		audit:    audit,
		settings: settings,
		log:      log,
	}
}

func (uc *AdvanceFulfilment) Execute(
	ctx context.Context,
	actor domain.Actor,
	bookingID uint,
	target domain.Fulfilment,
) (*models.Booking, error) {

	if target != domain.FulfilmentInProgress && target != domain.FulfilmentCompleted {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	current, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeFulfilment(actor, current); err != nil {
		return nil, err
	}

	var b *models.Booking
	err = uc.repo.WithProviderLock(ctx, current.ProviderID, func(tx domain.Repository) error {
		var err error
		if b, err = tx.GetBooking(ctx, bookingID); err != nil {
			return err
		}

		if target == domain.FulfilmentInProgress {
			err = domain.Start(b)
		} else {
			err = domain.Complete(b, uc.settings.now())
		}
		if err != nil {
			return err
		}
		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(bookingEvent(actor, b, "booking_"+string(target), nil))
	return b, nil
}
