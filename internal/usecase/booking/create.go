package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ProviderID uint
	ServiceID  uint
	CustomerID uint
	Mode       string

	Date      string
	StartTime string
	// EndTime is optional; the service duration is used when empty.
	EndTime string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	cache    AvailabilityCache
	guard    *ConflictGuard
	settings Settings
	log      *zap.Logger
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache AvailabilityCache,
	settings Settings,
	log *zap.Logger,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		guard:    NewConflictGuard(settings.CellMinutes),
		settings: settings,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	// --------------------------------------------------
	// Provider and service
	// --------------------------------------------------
	p, err := uc.repo.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, httperr.ErrNotFound("provider", in.ProviderID)
	}

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Span in the provider's zone
	// --------------------------------------------------
	loc := timezone.Location(p.Timezone)

	start, err := timezone.ParseDateTime(in.Date, in.StartTime, loc)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	end := start.Add(time.Duration(svc.DurationMin) * time.Minute)
	if in.EndTime != "" {
		if end, err = timezone.ParseDateTime(in.Date, in.EndTime, loc); err != nil {
			return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
		}
	}
	if !end.After(start) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	now := uc.settings.now()
	if start.Before(now.Add(uc.settings.MinLead)) {
		return nil, httperr.ErrBusiness(httperr.CodeTooSoon)
	}

	mode := in.Mode
	if mode == "" {
		mode = svc.Mode
	}

	fulfilment, payment, approval := domain.InitialStatus()
	b := &models.Booking{
		ProviderID:       p.ID,
		ServiceID:        svc.ID,
		CustomerID:       in.CustomerID,
		Mode:             mode,
		Date:             in.Date,
		StartTime:        start,
		EndTime:          end,
		FulfilmentStatus: string(fulfilment),
		PaymentStatus:    string(payment),
		ProviderApproval: string(approval),
		OrderRef:         uuid.NewString(),
		CreatedAt:        now,
	}

	cell := slot.Key(in.Date, start.Format(timezone.ClockLayout))

	// --------------------------------------------------
	// Check and insert under the provider lock
	// --------------------------------------------------
	var expired []models.Booking

	err = uc.repo.WithProviderLock(ctx, p.ID, func(tx domain.Repository) error {
		expired = expired[:0]

		live, err := tx.ListLiveBookingsAt(ctx, p.ID, start)
		if err != nil {
			return err
		}

		for i := range live {
			hold := &live[i]
			if domain.Expired(hold, uc.settings.HoldTTL, now) {
				if _, err := domain.Cancel(hold, now); err != nil {
					return err
				}
				if err := tx.UpdateBooking(ctx, hold); err != nil {
					return err
				}
				expired = append(expired, *hold)
				continue
			}

			status := "held"
			if domain.Occupies(hold) {
				status = string(slot.StatusOccupied)
			}
			return httperr.SlotConflictError{ProviderID: p.ID, Cell: cell, Status: status}
		}

		if err := uc.guard.Check(ctx, tx, p, b); err != nil {
			return err
		}

		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		var conflict httperr.SlotConflictError
		if errors.As(err, &conflict) && conflict.Cell == "" {
			conflict.Cell = cell
			return nil, conflict
		}
		return nil, err
	}

	// --------------------------------------------------
	// After commit
	// --------------------------------------------------
	invalidateDay(ctx, uc.cache, uc.log, p.ID, in.Date)

	customer := domain.Actor{Role: domain.RoleCustomer, UserID: in.CustomerID}
	for i := range expired {
		uc.audit.Dispatch(bookingEvent(domain.SystemActor(), &expired[i], "booking_expired", nil))
	}
	uc.audit.Dispatch(bookingEvent(customer, b, "booking_created", map[string]any{
		"cell":      cell,
		"end":       end.Format(timezone.ClockLayout),
		"order_ref": b.OrderRef,
	}))

	uc.log.Info("booking created",
		zap.Uint("booking_id", b.ID),
		zap.Uint("provider_id", p.ID),
		zap.String("cell", cell),
	)

	return b, nil
}
