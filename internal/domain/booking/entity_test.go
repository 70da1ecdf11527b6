package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
)

var now = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func TestMarkPaid_ThenOccupies(t *testing.T) {
	b := bookingWith(InitialStatus())
	assert.False(t, Occupies(b))

	require.NoError(t, MarkPaid(b, "pay_1", now))
	assert.True(t, Occupies(b))
	assert.Equal(t, "pay_1", b.PaymentRef)
	assert.NotNil(t, b.PaidAt)

	err := MarkPaid(b, "pay_2", now)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidStateTransition))
	assert.Equal(t, "pay_1", b.PaymentRef)
}

func TestMarkPaid_ConfirmsAcceptedBooking(t *testing.T) {
	b := bookingWith(FulfilmentPending, PaymentUnpaid, ApprovalAccepted)
	require.NoError(t, MarkPaid(b, "", now))
	assert.Equal(t, string(FulfilmentConfirmed), b.FulfilmentStatus)
	assert.Equal(t, "", b.PaymentRef)
}

func TestReleaseTransitions(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		b := bookingWith(FulfilmentPending, PaymentPaid, ApprovalPending)
		needsRefund, err := Reject(b, "", now)
		require.NoError(t, err)
		assert.True(t, needsRefund)
		assert.Equal(t, string(PaymentRefunded), b.PaymentStatus)
		assert.False(t, Occupies(b))
		assert.Equal(t, "", b.RejectReason)

		assert.Error(t, Accept(b, now), "rejected is terminal")
	})

	t.Run("refund", func(t *testing.T) {
		b := bookingWith(FulfilmentConfirmed, PaymentPaid, ApprovalAccepted)
		require.NoError(t, Refund(b, now))
		assert.False(t, Occupies(b))
		assert.Equal(t, string(FulfilmentRefunded), b.FulfilmentStatus)

		assert.True(t, httperr.IsBusiness(Start(b), httperr.CodeInvalidStateTransition))
		assert.True(t, httperr.IsBusiness(Complete(b, now), httperr.CodeInvalidStateTransition))
	})

	t.Run("reject unpaid", func(t *testing.T) {
		b := bookingWith(InitialStatus())
		needsRefund, err := Reject(b, "full", now)
		require.NoError(t, err)
		assert.False(t, needsRefund)
		assert.Equal(t, string(PaymentUnpaid), b.PaymentStatus)
		assert.Equal(t, "full", b.RejectReason)
	})

	t.Run("cancel paid", func(t *testing.T) {
		b := bookingWith(FulfilmentPending, PaymentPaid, ApprovalPending)
		needsRefund, err := Cancel(b, now)
		require.NoError(t, err)
		assert.True(t, needsRefund)
		assert.Equal(t, string(PaymentRefunded), b.PaymentStatus)
		assert.False(t, Occupies(b))
	})

	t.Run("cancel unpaid", func(t *testing.T) {
		b := bookingWith(InitialStatus())
		needsRefund, err := Cancel(b, now)
		require.NoError(t, err)
		assert.False(t, needsRefund)
		assert.Equal(t, string(FulfilmentCancelled), b.FulfilmentStatus)
	})
}

func TestAccept_ConfirmsPaidBooking(t *testing.T) {
	b := bookingWith(FulfilmentPending, PaymentPaid, ApprovalPending)
	require.NoError(t, Accept(b, now))
	assert.Equal(t, string(ApprovalAccepted), b.ProviderApproval)
	assert.Equal(t, string(FulfilmentConfirmed), b.FulfilmentStatus)

	unpaid := bookingWith(InitialStatus())
	require.NoError(t, Accept(unpaid, now))
	assert.Equal(t, string(FulfilmentPending), unpaid.FulfilmentStatus)
}

func TestDecide_OnCancelledBooking(t *testing.T) {
	b := bookingWith(FulfilmentCancelled, PaymentUnpaid, ApprovalPending)

	var te httperr.TransitionError
	require.ErrorAs(t, Accept(b, now), &te)
	assert.Equal(t, AxisFulfilment, te.Axis)
	assert.Equal(t, "cancelled", te.From)
}

func TestCancel_Twice(t *testing.T) {
	b := bookingWith(InitialStatus())
	_, err := Cancel(b, now)
	require.NoError(t, err)

	_, err = Cancel(b, now)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidStateTransition))
}

func TestLose(t *testing.T) {
	b := bookingWith(InitialStatus())
	Lose(b, "pay_9", now)

	assert.Equal(t, string(PaymentRefunded), b.PaymentStatus)
	assert.Equal(t, string(FulfilmentCancelled), b.FulfilmentStatus)
	assert.Equal(t, "pay_9", b.PaymentRef)
	assert.False(t, Occupies(b))
}

func TestComplete(t *testing.T) {
	b := bookingWith(FulfilmentConfirmed, PaymentPaid, ApprovalAccepted)
	require.NoError(t, Start(b))
	require.NoError(t, Complete(b, now))
	assert.Equal(t, string(FulfilmentCompleted), b.FulfilmentStatus)
	assert.True(t, Occupies(b), "completed consultations keep their span")
}

func TestStart_RequiresPayment(t *testing.T) {
	for _, p := range []Payment{PaymentUnpaid, PaymentRefunded} {
		b := bookingWith(FulfilmentConfirmed, p, ApprovalAccepted)

		assert.True(t, httperr.IsBusiness(Start(b), httperr.CodeInvalidStateTransition), p)
		assert.True(t, httperr.IsBusiness(Complete(b, now), httperr.CodeInvalidStateTransition), p)
		assert.Equal(t, string(FulfilmentConfirmed), b.FulfilmentStatus)
	}
}

func TestExpired(t *testing.T) {
	b := bookingWith(InitialStatus())
	b.CreatedAt = now.Add(-20 * time.Minute)

	assert.True(t, Expired(b, 15*time.Minute, now))
	assert.False(t, Expired(b, 30*time.Minute, now))

	b.PaymentStatus = string(PaymentPaid)
	assert.False(t, Expired(b, 15*time.Minute, now))
}
