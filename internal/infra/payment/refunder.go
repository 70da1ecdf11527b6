package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// Refunder returns money for a booking whose payment was marked refunded.
// It runs after the status change is committed.
type Refunder interface {
	Refund(ctx context.Context, b *models.Booking) error
}

type MercadoPago struct {
	client refund.Client
	log    *zap.Logger
}

func NewMercadoPago(accessToken string, log *zap.Logger) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{client: refund.NewClient(cfg), log: log}, nil
}

func (m *MercadoPago) Refund(ctx context.Context, b *models.Booking) error {
	paymentID, err := strconv.Atoi(b.PaymentRef)
	if err != nil {
		return fmt.Errorf("booking %d: payment ref %q is not a gateway id", b.ID, b.PaymentRef)
	}

	res, err := m.client.Create(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("refund payment %d: %w", paymentID, err)
	}

	m.log.Info("refund issued",
		zap.Uint("booking_id", b.ID),
		zap.Int("payment_id", paymentID),
		zap.Int("refund_id", res.ID),
		zap.String("status", res.Status),
	)
	return nil
}

// LogOnly records refunds that must be settled by hand. Used when no
// gateway token is configured.
type LogOnly struct {
	Log *zap.Logger
}

func (l LogOnly) Refund(_ context.Context, b *models.Booking) error {
	l.Log.Warn("manual refund required",
		zap.Uint("booking_id", b.ID),
		zap.String("order_ref", b.OrderRef),
		zap.String("payment_ref", b.PaymentRef),
	)
	return nil
}

var (
	_ Refunder = (*MercadoPago)(nil)
	_ Refunder = LogOnly{}
)
