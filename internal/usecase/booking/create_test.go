package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

func (e *env) input(customer uint, start string, svc *models.Service) CreateBookingInput {
	return CreateBookingInput{
		ProviderID: e.provider.ID,
		ServiceID:  svc.ID,
		CustomerID: customer,
		Date:       monday,
		StartTime:  start,
	}
}

func TestCreateBooking_StartsAsUnpaidHold(t *testing.T) {
	e := newEnv(t)

	b, err := e.create().Execute(context.Background(), e.input(7, "09:30", e.long))
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.NotEmpty(t, b.OrderRef)
	assert.Equal(t, "video", b.Mode)
	assert.Equal(t, string(domain.FulfilmentPending), b.FulfilmentStatus)
	assert.Equal(t, string(domain.PaymentUnpaid), b.PaymentStatus)
	assert.Equal(t, string(domain.ApprovalPending), b.ProviderApproval)
	assert.True(t, b.EndTime.Equal(e.at(10, 30)))
	assert.False(t, domain.Occupies(b))

	e.audit.Close()
	logs, _, err := e.auditLog.List(context.Background(), audit.Filter{Action: "booking_created"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "customer", logs[0].ActorRole)
}

func TestCreateBooking_ExplicitEndTime(t *testing.T) {
	e := newEnv(t)

	in := e.input(7, "09:00", e.short)
	in.EndTime = "10:00"
	b, err := e.create().Execute(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, b.EndTime.Equal(e.at(10, 0)))
}

func TestCreateBooking_Rejections(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 10, 0, 30, domain.FulfilmentConfirmed, domain.PaymentPaid, domain.ApprovalAccepted)

	cases := []struct {
		name  string
		in    CreateBookingInput
		code  string
		setup func()
	}{
		{name: "bad time", in: e.input(7, "9h", e.short), code: httperr.CodeInvalidRequest},
		{name: "not aligned", in: e.input(7, "09:10", e.short), code: httperr.CodeInvalidSlot},
		{name: "runs past closing", in: e.input(7, "10:30", e.long), code: httperr.CodeOutsideWorkingHours},
		{name: "before opening", in: e.input(7, "08:30", e.short), code: httperr.CodeOutsideWorkingHours},
		{name: "overlaps occupant", in: e.input(7, "09:30", e.long), code: httperr.CodeSlotConflict},
		{name: "unknown service", in: CreateBookingInput{ProviderID: e.provider.ID, ServiceID: 99, Date: monday, StartTime: "09:00"}, code: httperr.CodeNotFound},
		{name: "unknown provider", in: CreateBookingInput{ProviderID: 99, ServiceID: e.short.ID, Date: monday, StartTime: "09:00"}, code: httperr.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.create().Execute(context.Background(), tc.in)
			assert.Equal(t, tc.code, httperr.CodeOf(err), "%v", err)
		})
	}

	t.Run("no schedule", func(t *testing.T) {
		in := e.input(7, "09:00", e.short)
		in.Date = "2026-10-20"
		_, err := e.create().Execute(context.Background(), in)
		assert.True(t, httperr.IsBusiness(err, httperr.CodeOutsideWorkingHours))
	})

	t.Run("too soon", func(t *testing.T) {
		e.clock.now = e.at(8, 50)
		defer func() { e.clock.now = e.at(6, 0) }()

		_, err := e.create().Execute(context.Background(), e.input(7, "09:00", e.short))
		assert.True(t, httperr.IsBusiness(err, httperr.CodeTooSoon))
	})
}

func TestCreateBooking_ConflictNamesFirstBusyCell(t *testing.T) {
	e := newEnv(t)
	occupant := e.seed(t, 9, 30, 30, domain.FulfilmentPending, domain.PaymentPaid, domain.ApprovalPending)

	_, err := e.create().Execute(context.Background(), e.input(7, "09:00", e.long))

	var conflict httperr.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "2026-10-19T09:30", conflict.Cell)
	assert.Equal(t, "occupied", conflict.Status)

	// rejecting the occupant releases the cell
	_, err = e.approval().Execute(context.Background(), e.providerActor(), TransitionApprovalInput{
		BookingID: occupant.ID, Decision: domain.ApprovalRejected,
	})
	require.NoError(t, err)

	_, err = e.create().Execute(context.Background(), e.input(7, "09:00", e.long))
	require.NoError(t, err)
}

func TestCreateBooking_IdenticalKeyIsHeld(t *testing.T) {
	e := newEnv(t)

	_, err := e.create().Execute(context.Background(), e.input(7, "09:00", e.short))
	require.NoError(t, err)

	_, err = e.create().Execute(context.Background(), e.input(8, "09:00", e.short))
	var conflict httperr.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "held", conflict.Status)
	assert.Equal(t, "2026-10-19T09:00", conflict.Cell)

	// overlapping holds with a different start are allowed until payment
	_, err = e.create().Execute(context.Background(), e.input(8, "09:00", e.long))
	require.Error(t, err)
	_, err = e.create().Execute(context.Background(), e.input(9, "09:30", e.short))
	require.NoError(t, err)
}

func TestCreateBooking_StaleHoldIsExpiredLazily(t *testing.T) {
	e := newEnv(t)

	first, err := e.create().Execute(context.Background(), e.input(7, "09:00", e.short))
	require.NoError(t, err)

	e.clock.Advance(20 * time.Minute)

	second, err := e.create().Execute(context.Background(), e.input(8, "09:00", e.short))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, string(domain.FulfilmentCancelled), e.reload(t, first.ID).FulfilmentStatus)
}

func TestCreateBooking_ConcurrentRaceHasOneWinner(t *testing.T) {
	e := newEnv(t)
	uc := e.create()

	const racers = 2
	var (
		wg   sync.WaitGroup
		errs = make([]error, racers)
	)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), e.input(uint(10+i), "10:00", e.short))
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case httperr.IsBusiness(err, httperr.CodeSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}

func TestCreateBooking_TimeoutIsTyped(t *testing.T) {
	e := newEnv(t)
	e.settings.DBTimeout = time.Nanosecond

	_, err := e.create().Execute(context.Background(), e.input(7, "09:00", e.short))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTimeout), "%v", err)
}

func TestExpireHolds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	stale, err := e.create().Execute(ctx, e.input(7, "09:00", e.short))
	require.NoError(t, err)

	paid, err := e.create().Execute(ctx, e.input(8, "10:00", e.short))
	require.NoError(t, err)
	_, err = e.payment().Execute(ctx, gateway, TransitionPaymentInput{BookingID: paid.ID, Event: PaymentSucceeded, PaymentRef: "77"})
	require.NoError(t, err)

	e.clock.Advance(10 * time.Minute)
	fresh, err := e.create().Execute(ctx, e.input(9, "10:30", e.short))
	require.NoError(t, err)

	e.clock.Advance(10 * time.Minute)

	uc := NewExpireHolds(e.repo, e.audit, e.cache, e.settings, e.log)
	n, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, string(domain.FulfilmentCancelled), e.reload(t, stale.ID).FulfilmentStatus)
	assert.Equal(t, string(domain.PaymentPaid), e.reload(t, paid.ID).PaymentStatus)
	assert.Equal(t, string(domain.FulfilmentPending), e.reload(t, fresh.ID).FulfilmentStatus)

	n, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
