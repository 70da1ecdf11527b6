package booking

import (
	"slices"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// ===============================
// Status axes
// ===============================

type Fulfilment string

const (
	FulfilmentPending    Fulfilment = "pending"
	FulfilmentConfirmed  Fulfilment = "confirmed"
	FulfilmentInProgress Fulfilment = "in_progress"
	FulfilmentCompleted  Fulfilment = "completed"
	FulfilmentCancelled  Fulfilment = "cancelled"
	FulfilmentRefunded   Fulfilment = "refunded"
)

type Payment string

const (
	PaymentUnpaid   Payment = "unpaid"
	PaymentPaid     Payment = "paid"
	PaymentRefunded Payment = "refunded"
)

type Approval string

const (
	ApprovalPending  Approval = "pending"
	ApprovalAccepted Approval = "accepted"
	ApprovalRejected Approval = "rejected"
)

const (
	AxisFulfilment = "fulfilment"
	AxisPayment    = "payment"
	AxisApproval   = "provider_approval"
)

var fulfilmentTransitions = map[Fulfilment][]Fulfilment{
	FulfilmentPending:    {FulfilmentConfirmed, FulfilmentCancelled},
	FulfilmentConfirmed:  {FulfilmentInProgress, FulfilmentCompleted, FulfilmentCancelled, FulfilmentRefunded},
	FulfilmentInProgress: {FulfilmentCompleted},
}

var paymentTransitions = map[Payment][]Payment{
	PaymentUnpaid: {PaymentPaid},
	PaymentPaid:   {PaymentRefunded},
}

var approvalTransitions = map[Approval][]Approval{
	ApprovalPending: {ApprovalAccepted, ApprovalRejected},
}

// ===============================
// Validations
// ===============================

func CanFulfil(current, target Fulfilment) error {
	if !slices.Contains(fulfilmentTransitions[current], target) {
		return httperr.ErrTransition(AxisFulfilment, string(current), string(target))
	}
	return nil
}

func CanPay(current, target Payment) error {
	if !slices.Contains(paymentTransitions[current], target) {
		return httperr.ErrTransition(AxisPayment, string(current), string(target))
	}
	return nil
}

func CanDecide(current, target Approval) error {
	if !slices.Contains(approvalTransitions[current], target) {
		return httperr.ErrTransition(AxisApproval, string(current), string(target))
	}
	return nil
}

func (f Fulfilment) Terminal() bool {
	return f == FulfilmentCancelled || f == FulfilmentRefunded || f == FulfilmentCompleted
}

// Occupies is the occupancy invariant: a booking holds its time span only
// while paid, not rejected by the provider and not cancelled or refunded.
func Occupies(b *models.Booking) bool {
	f := Fulfilment(b.FulfilmentStatus)
	return Payment(b.PaymentStatus) == PaymentPaid &&
		Approval(b.ProviderApproval) != ApprovalRejected &&
		f != FulfilmentCancelled && f != FulfilmentRefunded
}

// Live reports whether the booking still claims its cell key, paid or not.
// It mirrors the partial unique index on bookings.
func Live(b *models.Booking) bool {
	f := Fulfilment(b.FulfilmentStatus)
	return Payment(b.PaymentStatus) != PaymentRefunded &&
		Approval(b.ProviderApproval) != ApprovalRejected &&
		f != FulfilmentCancelled && f != FulfilmentRefunded
}

// InitialStatus returns the three axes every new booking starts with.
func InitialStatus() (Fulfilment, Payment, Approval) {
	return FulfilmentPending, PaymentUnpaid, ApprovalPending
}
