package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type Repository interface {
	// -------- Provider directory --------
	GetProvider(
		ctx context.Context,
		id uint,
	) (*models.Provider, error)

	ListProviders(
		ctx context.Context,
	) ([]models.Provider, error)

	GetWorkingHours(
		ctx context.Context,
		providerID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListWorkingHours(
		ctx context.Context,
		providerID uint,
	) ([]models.WorkingHours, error)

	ReplaceWorkingHours(
		ctx context.Context,
		providerID uint,
		hours []models.WorkingHours,
	) error

	ListBlockedCells(
		ctx context.Context,
		providerID uint,
		date string,
	) ([]models.BlockedCell, error)

	CreateBlockedCell(
		ctx context.Context,
		cell *models.BlockedCell,
	) error

	DeleteBlockedCell(
		ctx context.Context,
		providerID uint,
		date string,
		startTime string,
	) error

	// -------- Catalogue --------
	GetService(
		ctx context.Context,
		id uint,
	) (*models.Service, error)

	// -------- Booking (read) --------
	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	ListBookingsForDay(
		ctx context.Context,
		providerID uint,
		date string,
	) ([]models.Booking, error)

	ListLiveBookingsAt(
		ctx context.Context,
		providerID uint,
		start time.Time,
	) ([]models.Booking, error)

	ListExpiredHolds(
		ctx context.Context,
		createdBefore time.Time,
		limit int,
	) ([]models.Booking, error)

	// -------- Booking (write) --------
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// WithProviderLock runs fn inside one transaction that holds the
	// provider row lock; every booking write for that provider goes
	// through here.
	WithProviderLock(
		ctx context.Context,
		providerID uint,
		fn func(tx Repository) error,
	) error
}
