package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type WorkingDay struct {
	Weekday    int
	Active     bool
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
}

type ManageWorkingHours struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	settings Settings
	log      *zap.Logger
}

func NewManageWorkingHours(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	settings Settings,
	log *zap.Logger,
) *ManageWorkingHours {
	return &ManageWorkingHours{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		settings: settings,
		log:      log,
	}
}

func (uc *ManageWorkingHours) Get(
	ctx context.Context,
	actor domain.Actor,
	providerID uint,
) ([]models.WorkingHours, error) {

	if err := domain.AuthorizeProvider(actor, providerID); err != nil {
		return nil, err
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	return uc.repo.ListWorkingHours(ctx, providerID)
}

// Replace swaps the whole weekly configuration. Existing bookings are kept
// even when they now fall outside the hours.
func (uc *ManageWorkingHours) Replace(
	ctx context.Context,
	actor domain.Actor,
	providerID uint,
	days []WorkingDay,
) ([]models.WorkingHours, error) {

	if err := domain.AuthorizeProvider(actor, providerID); err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	hours := make([]models.WorkingHours, 0, len(days))
	for _, d := range days {
		if seen[d.Weekday] || !validDay(d) {
			return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
		}
		seen[d.Weekday] = true

		hours = append(hours, models.WorkingHours{
			ProviderID: providerID,
			Weekday:    d.Weekday,
			Active:     d.Active,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			BreakStart: d.BreakStart,
			BreakEnd:   d.BreakEnd,
		})
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	if _, err := uc.repo.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	if err := uc.repo.ReplaceWorkingHours(ctx, providerID, hours); err != nil {
		return nil, err
	}

	if err := uc.cache.InvalidateProvider(ctx, providerID); err != nil {
		uc.log.Error("availability cache invalidation failed",
			zap.Uint("provider_id", providerID),
			zap.Error(err),
		)
	}

	ev := audit.Event{
		ProviderID: providerID,
		ActorRole:  string(actor.Role),
		Action:     "working_hours_updated",
		Entity:     "working_hours",
		Metadata:   days,
	}
	if actor.UserID != 0 {
		id := actor.UserID
		ev.ActorID = &id
	}
	uc.audit.Dispatch(ev)

	return hours, nil
}

func validDay(d WorkingDay) bool {
	if d.Weekday < 0 || d.Weekday > 6 {
		return false
	}
	if !d.Active {
		return true
	}

	start, err1 := slot.ParseClock(d.StartTime)
	end, err2 := slot.ParseClock(d.EndTime)
	if err1 != nil || err2 != nil || end <= start {
		return false
	}

	if d.BreakStart == "" && d.BreakEnd == "" {
		return true
	}
	bs, err1 := slot.ParseClock(d.BreakStart)
	be, err2 := slot.ParseClock(d.BreakEnd)
	return err1 == nil && err2 == nil && start <= bs && bs < be && be <= end
}
