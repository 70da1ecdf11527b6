package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/payment"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type TransitionApprovalInput struct {
	BookingID uint
	Decision  domain.Approval
	// Reason is kept only on rejection; it may be empty.
	Reason string
}

type TransitionApproval struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	refunder payment.Refunder
	settings Settings
	log      *zap.Logger
}

func NewTransitionApproval(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	refunder payment.Refunder,
	settings Settings,
	log *zap.Logger,
) *TransitionApproval {
	return &TransitionApproval{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		refunder: refunder,
		settings: settings,
		log:      log,
	}
}

// Execute records the provider's decision. Rejecting a paid booking
// refunds it once the decision is committed.
func (uc *TransitionApproval) Execute(
	ctx context.Context,
	actor domain.Actor,
	in TransitionApprovalInput,
) (*models.Booking, error) {

	if in.Decision != domain.ApprovalAccepted && in.Decision != domain.ApprovalRejected {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	current, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeApproval(actor, current); err != nil {
		return nil, err
	}

	var (
		b           *models.Booking
		needsRefund bool
	)
	err = uc.repo.WithProviderLock(ctx, current.ProviderID, func(tx domain.Repository) error {
		var err error
		if b, err = tx.GetBooking(ctx, in.BookingID); err != nil {
			return err
		}

		now := uc.settings.now()
		if in.Decision == domain.ApprovalAccepted {
			err = domain.Accept(b, now)
		} else {
			needsRefund, err = domain.Reject(b, in.Reason, now)
		}
		if err != nil {
			return err
		}

		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	invalidateDay(ctx, uc.cache, uc.log, b.ProviderID, b.Date)

	meta := map[string]string{}
	if in.Decision == domain.ApprovalRejected {
		meta["reason"] = in.Reason
	}
	if needsRefund {
		meta["refund"] = "true"
	}
	uc.audit.Dispatch(bookingEvent(actor, b, "booking_"+string(in.Decision), meta))

	if needsRefund {
		issueRefund(ctx, uc.refunder, uc.audit, uc.log, b)
	}

	return b, nil
}
