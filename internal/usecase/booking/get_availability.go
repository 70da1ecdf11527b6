package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/cache"
)

// MaxDurationMinutes bounds a requested slot length to one day.
const MaxDurationMinutes = 24 * 60

type GetAvailability struct {
	repo     domain.Repository
	cache    AvailabilityCache
	settings Settings
	log      *zap.Logger
}

func NewGetAvailability(
	repo domain.Repository,
	cache AvailabilityCache,
	settings Settings,
	log *zap.Logger,
) *GetAvailability {
	return &GetAvailability{
		repo:     repo,
		cache:    cache,
		settings: settings,
		log:      log,
	}
}

// Execute lists the starts whose whole duration is free. Past starts and
// starts inside the lead time are dropped on every call, so cached answers
// never leak an expired start.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.Availability, error) {

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	p, err := uc.repo.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, httperr.ErrNotFound("provider", in.ProviderID)
	}

	duration, mode := in.DurationMinutes, in.Mode
	if in.ServiceID != 0 {
		svc, err := uc.repo.GetService(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if duration <= 0 {
			duration = svc.DurationMin
		}
		if mode == "" {
			mode = svc.Mode
		}
	}
	if duration <= 0 || duration > MaxDurationMinutes {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	var (
		a   *domain.Availability
		hit bool
		key string
	)
	gen, cacheable := uc.cache.Generation(ctx, p.ID, in.Date)
	if cacheable {
		key = cache.Key(p.ID, in.Date, gen, duration, mode)
		a, hit = uc.cache.Get(ctx, key)
	}
	if !hit {
		v, err := loadDay(ctx, uc.repo, p, in.Date)
		if err != nil {
			return nil, err
		}

		a = &domain.Availability{
			ProviderID:      p.ID,
			Date:            in.Date,
			DurationMinutes: duration,
			Mode:            mode,
			Slots:           []slot.Slot{},
		}
		if !v.working {
			a.Condition = httperr.CodeNoScheduleConfigured
		} else {
			a.Slots = slot.Slots(v.states(uc.settings.CellMinutes, 0), time.Duration(duration)*time.Minute)
		}

		if cacheable {
			uc.cache.Set(ctx, key, a)
		}
	}

	out := *a
	out.Slots = slot.NotBefore(a.Slots, uc.settings.now().Add(uc.settings.MinLead))
	return &out, nil
}
