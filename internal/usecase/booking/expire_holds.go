package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
)

const expireBatch = 100

// ExpireHolds cancels unpaid pending bookings older than the hold TTL so
// their cell keys can be claimed again.
type ExpireHolds struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	settings Settings
	log      *zap.Logger
}

func NewExpireHolds(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	settings Settings,
	log *zap.Logger,
) *ExpireHolds {
	return &ExpireHolds{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		settings: settings,
		log:      log,
	}
}

// Execute returns how many holds were released.
func (uc *ExpireHolds) Execute(ctx context.Context) (int, error) {
	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	now := uc.settings.now()

	stale, err := uc.repo.ListExpiredHolds(ctx, now.Add(-uc.settings.HoldTTL), expireBatch)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range stale {
		id := stale[i].ID
		expired := false

		err := uc.repo.WithProviderLock(ctx, stale[i].ProviderID, func(tx domain.Repository) error {
			b, err := tx.GetBooking(ctx, id)
			if err != nil {
				return err
			}
			// Paid or decided while we were listing.
			if !domain.Expired(b, uc.settings.HoldTTL, now) {
				return nil
			}
			if _, err := domain.Cancel(b, now); err != nil {
				return err
			}
			stale[i] = *b
			expired = true
			return tx.UpdateBooking(ctx, b)
		})
		if err != nil {
			return released, err
		}
		if !expired {
			continue
		}

		released++
		invalidateDay(ctx, uc.cache, uc.log, stale[i].ProviderID, stale[i].Date)
		uc.audit.Dispatch(bookingEvent(domain.SystemActor(), &stale[i], "booking_expired", nil))
	}

	return released, nil
}
