package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/payment"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type CancelBooking struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	refunder payment.Refunder
	settings Settings
	log      *zap.Logger
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	refunder payment.Refunder,
	settings Settings,
	log *zap.Logger,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		refunder: refunder,
		settings: settings,
		log:      log,
	}
}

// Execute cancels a pending or confirmed booking. Money already taken goes
// back through the refund path once the cancellation is committed.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	bookingID uint,
) (*models.Booking, error) {

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	current, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeCancel(actor, current); err != nil {
		return nil, err
	}

	var (
		b           *models.Booking
		needsRefund bool
	)
	err = uc.repo.WithProviderLock(ctx, current.ProviderID, func(tx domain.Repository) error {
		var err error
		if b, err = tx.GetBooking(ctx, bookingID); err != nil {
			return err
		}

		if needsRefund, err = domain.Cancel(b, uc.settings.now()); err != nil {
			return err
		}
		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	invalidateDay(ctx, uc.cache, uc.log, b.ProviderID, b.Date)
	uc.audit.Dispatch(bookingEvent(actor, b, "booking_cancelled", map[string]bool{
		"refund": needsRefund,
	}))

	if needsRefund {
		issueRefund(ctx, uc.refunder, uc.audit, uc.log, b)
	}

	return b, nil
}
