package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

type BlockedCellInput struct {
	ProviderID uint
	Date       string
	StartTime  string
	Reason     string
}

// ManageBlockedCells adds and removes manual cell blocks. A block never
// hides a booking that already occupies the cell.
type ManageBlockedCells struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	settings Settings
	log      *zap.Logger
}

func NewManageBlockedCells(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	settings Settings,
	log *zap.Logger,
) *ManageBlockedCells {
	return &ManageBlockedCells{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		settings: settings,
		log:      log,
	}
}

func validCell(date, start string) bool {
	if !timezone.IsDate(date) {
		return false
	}
	c, err := slot.ParseClock(start)
	return err == nil && c < 24*60
}

func (uc *ManageBlockedCells) List(
	ctx context.Context,
	actor domain.Actor,
	providerID uint,
	date string,
) ([]models.BlockedCell, error) {

	if err := domain.AuthorizeProvider(actor, providerID); err != nil {
		return nil, err
	}
	if !timezone.IsDate(date) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	return uc.repo.ListBlockedCells(ctx, providerID, date)
}

func (uc *ManageBlockedCells) Block(
	ctx context.Context,
	actor domain.Actor,
	in BlockedCellInput,
) (*models.BlockedCell, error) {

	if err := domain.AuthorizeProvider(actor, in.ProviderID); err != nil {
		return nil, err
	}
	if !validCell(in.Date, in.StartTime) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	if _, err := uc.repo.GetProvider(ctx, in.ProviderID); err != nil {
		return nil, err
	}

	cell := &models.BlockedCell{
		ProviderID: in.ProviderID,
		Date:       in.Date,
		StartTime:  in.StartTime,
		Reason:     in.Reason,
		CreatedBy:  actor.UserID,
	}
	if err := uc.repo.CreateBlockedCell(ctx, cell); err != nil {
		return nil, err
	}

	invalidateDay(ctx, uc.cache, uc.log, in.ProviderID, in.Date)
	uc.dispatch(actor, in, "cell_blocked")

	return cell, nil
}

func (uc *ManageBlockedCells) Unblock(
	ctx context.Context,
	actor domain.Actor,
	in BlockedCellInput,
) error {

	if err := domain.AuthorizeProvider(actor, in.ProviderID); err != nil {
		return err
	}
	if !validCell(in.Date, in.StartTime) {
		return httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	if err := uc.repo.DeleteBlockedCell(ctx, in.ProviderID, in.Date, in.StartTime); err != nil {
		return err
	}

	invalidateDay(ctx, uc.cache, uc.log, in.ProviderID, in.Date)
	uc.dispatch(actor, in, "cell_unblocked")
	return nil
}

func (uc *ManageBlockedCells) dispatch(actor domain.Actor, in BlockedCellInput, action string) {
	ev := audit.Event{
		ProviderID: in.ProviderID,
		ActorRole:  string(actor.Role),
		Action:     action,
		Entity:     "blocked_cell",
		Metadata: map[string]string{
			"cell":   slot.Key(in.Date, in.StartTime),
			"reason": in.Reason,
		},
	}
	if actor.UserID != 0 {
		id := actor.UserID
		ev.ActorID = &id
	}
	uc.audit.Dispatch(ev)
}
