package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// ======================================================
// SETTINGS
// ======================================================

type Settings struct {
	CellMinutes int
	MinLead     time.Duration
	HoldTTL     time.Duration
	DBTimeout   time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		CellMinutes: cfg.CellSizeMinutes,
		MinLead:     cfg.MinLead(),
		HoldTTL:     cfg.HoldTTL,
		DBTimeout:   cfg.DBTimeout,
	}
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// bound caps one use case call against the datastore.
func (s Settings) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.DBTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.DBTimeout)
}

// ======================================================
// CACHE
// ======================================================

// AvailabilityCache stores answers under a per-day generation. Generation
// must be read before the answer is computed; ok false disables caching for
// the call.
type AvailabilityCache interface {
	Generation(ctx context.Context, providerID uint, date string) (gen string, ok bool)
	Get(ctx context.Context, key string) (*domain.Availability, bool)
	Set(ctx context.Context, key string, a *domain.Availability)
	InvalidateDay(ctx context.Context, providerID uint, date string) error
	InvalidateProvider(ctx context.Context, providerID uint) error
}

const afterCommitTimeout = 2 * time.Second

// invalidateDay runs after commit. A failure leaves a stale entry until the
// cache TTL expires, so it is logged loudly.
func invalidateDay(ctx context.Context, cache AvailabilityCache, log *zap.Logger, providerID uint, date string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
	defer cancel()

	if err := cache.InvalidateDay(ctx, providerID, date); err != nil {
		log.Error("availability cache invalidation failed",
			zap.Uint("provider_id", providerID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
}

// ======================================================
// AUDIT
// ======================================================

func bookingEvent(actor domain.Actor, b *models.Booking, action string, meta any) audit.Event {
	ev := audit.Event{
		ProviderID: b.ProviderID,
		ActorRole:  string(actor.Role),
		Action:     action,
		Entity:     "booking",
		EntityID:   &b.ID,
		Metadata:   meta,
	}
	if actor.UserID != 0 {
		id := actor.UserID
		ev.ActorID = &id
	}
	return ev
}
