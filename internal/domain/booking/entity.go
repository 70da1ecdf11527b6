package booking

import (
	"time"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func MarkPaid(b *models.Booking, paymentRef string, now time.Time) error {
	if err := CanPay(Payment(b.PaymentStatus), PaymentPaid); err != nil {
		return err
	}

	b.PaymentStatus = string(PaymentPaid)
	if paymentRef != "" {
		b.PaymentRef = paymentRef
	}
	b.PaidAt = &now

	if Approval(b.ProviderApproval) == ApprovalAccepted && Fulfilment(b.FulfilmentStatus) == FulfilmentPending {
		b.FulfilmentStatus = string(FulfilmentConfirmed)
	}
	return nil
}

// Refund returns the money. A confirmed order is closed as refunded so it
// can no longer be started.
func Refund(b *models.Booking, now time.Time) error {
	if err := CanPay(Payment(b.PaymentStatus), PaymentRefunded); err != nil {
		return err
	}

	b.PaymentStatus = string(PaymentRefunded)
	b.RefundedAt = &now

	if Fulfilment(b.FulfilmentStatus) == FulfilmentConfirmed {
		b.FulfilmentStatus = string(FulfilmentRefunded)
	}
	return nil
}

// Accept records the provider's acceptance. A paid booking becomes a
// confirmed order at that point.
func Accept(b *models.Booking, now time.Time) error {
	if err := decide(b, ApprovalAccepted); err != nil {
		return err
	}

	b.ProviderApproval = string(ApprovalAccepted)
	b.DecidedAt = &now

	if Payment(b.PaymentStatus) == PaymentPaid && Fulfilment(b.FulfilmentStatus) == FulfilmentPending {
		b.FulfilmentStatus = string(FulfilmentConfirmed)
	}
	return nil
}

// Reject is terminal for the approval axis and releases the span. Like
// Cancel, it reports whether a payment has to be returned.
func Reject(b *models.Booking, reason string, now time.Time) (needsRefund bool, err error) {
	if err := decide(b, ApprovalRejected); err != nil {
		return false, err
	}

	b.ProviderApproval = string(ApprovalRejected)
	b.RejectReason = reason
	b.DecidedAt = &now

	if Payment(b.PaymentStatus) == PaymentPaid {
		if err := Refund(b, now); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func decide(b *models.Booking, target Approval) error {
	if f := Fulfilment(b.FulfilmentStatus); f.Terminal() {
		return httperr.ErrTransition(AxisFulfilment, string(f), string(target))
	}
	return CanDecide(Approval(b.ProviderApproval), target)
}

// Cancel moves fulfilment to cancelled. It reports whether money was taken
// and must go back through the refund path.
func Cancel(b *models.Booking, now time.Time) (needsRefund bool, err error) {
	if err := CanFulfil(Fulfilment(b.FulfilmentStatus), FulfilmentCancelled); err != nil {
		return false, err
	}

	b.FulfilmentStatus = string(FulfilmentCancelled)
	b.CancelledAt = &now

	if Payment(b.PaymentStatus) == PaymentPaid {
		if err := Refund(b, now); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Lose settles a payment that arrived for a booking whose span was taken.
// The payment is recorded, immediately marked refunded, and the booking
// cancelled.
func Lose(b *models.Booking, paymentRef string, now time.Time) {
	b.PaymentStatus = string(PaymentRefunded)
	if paymentRef != "" {
		b.PaymentRef = paymentRef
	}
	b.PaidAt = &now
	b.RefundedAt = &now

	if !Fulfilment(b.FulfilmentStatus).Terminal() {
		b.FulfilmentStatus = string(FulfilmentCancelled)
		b.CancelledAt = &now
	}
}

// paidFor guards fulfilment progress: only money actually held may be
// served.
func paidFor(b *models.Booking, target Fulfilment) error {
	if Payment(b.PaymentStatus) != PaymentPaid {
		return httperr.ErrTransition(AxisFulfilment, b.FulfilmentStatus, string(target))
	}
	return nil
}

func Start(b *models.Booking) error {
	if err := paidFor(b, FulfilmentInProgress); err != nil {
		return err
	}
	if err := CanFulfil(Fulfilment(b.FulfilmentStatus), FulfilmentInProgress); err != nil {
		return err
	}
	b.FulfilmentStatus = string(FulfilmentInProgress)
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := paidFor(b, FulfilmentCompleted); err != nil {
		return err
	}
	if err := CanFulfil(Fulfilment(b.FulfilmentStatus), FulfilmentCompleted); err != nil {
		return err
	}

	b.FulfilmentStatus = string(FulfilmentCompleted)
	b.CompletedAt = &now
	return nil
}

// Expired reports whether an unpaid hold outlived ttl.
func Expired(b *models.Booking, ttl time.Duration, now time.Time) bool {
	return Payment(b.PaymentStatus) == PaymentUnpaid &&
		Fulfilment(b.FulfilmentStatus) == FulfilmentPending &&
		Approval(b.ProviderApproval) != ApprovalRejected &&
		b.CreatedAt.Add(ttl).Before(now)
}
