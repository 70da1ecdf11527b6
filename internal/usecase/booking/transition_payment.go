package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/payment"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

// PaymentEvent is what the payment side reports for a booking.
type PaymentEvent string

const (
	PaymentSucceeded PaymentEvent = "succeeded"
	PaymentFailed    PaymentEvent = "failed"
	PaymentRefunded  PaymentEvent = "refunded"
)

type TransitionPaymentInput struct {
	BookingID  uint
	Event      PaymentEvent
	PaymentRef string
}

// ======================================================
// USE CASE
// ======================================================

type TransitionPayment struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	refunder payment.Refunder
	guard    *ConflictGuard
	settings Settings
	log      *zap.Logger
}

func NewTransitionPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	refunder payment.Refunder,
	settings Settings,
	log *zap.Logger,
) *TransitionPayment {
	return &TransitionPayment{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		refunder: refunder,
		guard:    NewConflictGuard(settings.CellMinutes),
		settings: settings,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute applies a payment event. A capture for a booking whose span was
// taken in the meantime (or that was already released) is recorded, turned
// into a refund, cancels the booking and returns a SlotConflictError.
func (uc *TransitionPayment) Execute(
	ctx context.Context,
	actor domain.Actor,
	in TransitionPaymentInput,
) (*models.Booking, error) {

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	current, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizePayment(actor, current); err != nil {
		return nil, err
	}

	switch in.Event {
	case PaymentFailed:
		uc.audit.Dispatch(bookingEvent(actor, current, "payment_failed", map[string]string{
			"payment_ref": in.PaymentRef,
		}))
		return current, nil
	case PaymentSucceeded, PaymentRefunded:
	default:
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	var (
		b        *models.Booking
		conflict error
	)

	err = uc.repo.WithProviderLock(ctx, current.ProviderID, func(tx domain.Repository) error {
		conflict = nil

		var err error
		if b, err = tx.GetBooking(ctx, in.BookingID); err != nil {
			return err
		}

		now := uc.settings.now()

		if in.Event == PaymentRefunded {
			if err := domain.Refund(b, now); err != nil {
				return err
			}
			return tx.UpdateBooking(ctx, b)
		}

		if err := domain.CanPay(domain.Payment(b.PaymentStatus), domain.PaymentPaid); err != nil {
			return err
		}

		conflict = uc.contest(ctx, tx, b)
		if conflict != nil {
			if !isConflict(conflict) {
				return conflict
			}
			domain.Lose(b, in.PaymentRef, now)
		} else if err := domain.MarkPaid(b, in.PaymentRef, now); err != nil {
			return err
		}

		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// After commit
	// --------------------------------------------------
	invalidateDay(ctx, uc.cache, uc.log, b.ProviderID, b.Date)

	switch {
	case in.Event == PaymentRefunded:
		uc.audit.Dispatch(bookingEvent(actor, b, "payment_refunded", nil))
	case conflict != nil:
		uc.audit.Dispatch(bookingEvent(actor, b, "payment_lost_slot", map[string]string{
			"reason": conflict.Error(),
		}))
		uc.log.Warn("payment arrived for a taken slot, refunding",
			zap.Uint("booking_id", b.ID),
			zap.Error(conflict),
		)
		issueRefund(ctx, uc.refunder, uc.audit, uc.log, b)

		var sc httperr.SlotConflictError
		if errors.As(conflict, &sc) {
			sc.BookingID = b.ID
			return b, sc
		}
		return b, conflict
	default:
		uc.audit.Dispatch(bookingEvent(actor, b, "payment_succeeded", map[string]string{
			"payment_ref": b.PaymentRef,
		}))
	}

	return b, nil
}

// contest decides whether b may start occupying its span. It returns a
// SlotConflictError when it may not, or a datastore error.
func (uc *TransitionPayment) contest(ctx context.Context, tx domain.Repository, b *models.Booking) error {
	p, err := tx.GetProvider(ctx, b.ProviderID)
	if err != nil {
		return err
	}

	loc := timezone.Location(p.Timezone)
	cell := slot.Key(b.Date, b.StartTime.In(loc).Format(timezone.ClockLayout))

	if !domain.Live(b) {
		return httperr.SlotConflictError{ProviderID: b.ProviderID, Cell: cell, Status: "released"}
	}

	err = uc.guard.Check(ctx, tx, p, b)
	if offGrid(err) {
		return httperr.SlotConflictError{ProviderID: b.ProviderID, Cell: cell, Status: "off_grid"}
	}
	return err
}

func isConflict(err error) bool {
	return httperr.IsBusiness(err, httperr.CodeSlotConflict)
}
