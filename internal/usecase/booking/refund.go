package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/payment"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

const refundTimeout = 15 * time.Second

// issueRefund calls the gateway for a booking already committed as
// refunded. A gateway failure does not roll the status back; it is logged
// and audited for manual follow-up.
func issueRefund(
	ctx context.Context,
	refunder payment.Refunder,
	dispatcher *audit.Dispatcher,
	log *zap.Logger,
	b *models.Booking,
) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	if err := refunder.Refund(ctx, b); err != nil {
		log.Error("refund failed",
			zap.Uint("booking_id", b.ID),
			zap.String("payment_ref", b.PaymentRef),
			zap.Error(err),
		)
		dispatcher.Dispatch(bookingEvent(domain.SystemActor(), b, "refund_failed", map[string]string{
			"error": err.Error(),
		}))
		return
	}

	dispatcher.Dispatch(bookingEvent(domain.SystemActor(), b, "refund_issued", nil))
}
