package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// livePredicate matches the partial unique index on bookings.
const livePredicate = "fulfilment_status NOT IN ('cancelled', 'refunded') AND payment_status <> 'refunded' AND provider_approval <> 'rejected'"

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// translate maps driver errors onto business conditions.
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case httperr.CodeOf(err) != "":
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return httperr.ErrTimeout(err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return httperr.ErrNotFound(entity, id)
	}
	return err
}

// --------------------------------------------------
// Provider directory
// --------------------------------------------------

func (r *BookingGormRepository) GetProvider(
	ctx context.Context,
	id uint,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "provider", id)
	}
	return &p, nil
}

func (r *BookingGormRepository) ListProviders(
	ctx context.Context,
) ([]models.Provider, error) {

	var providers []models.Provider
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&providers).Error; err != nil {
		return nil, translate(err, "provider", nil)
	}
	return providers, nil
}

// GetWorkingHours returns nil without error when the weekday has no row.
func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	providerID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND weekday = ?", providerID, weekday).
		First(&wh).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "working_hours", providerID)
	}
	return &wh, nil
}

func (r *BookingGormRepository) ListWorkingHours(
	ctx context.Context,
	providerID uint,
) ([]models.WorkingHours, error) {

	var hours []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		return nil, translate(err, "working_hours", providerID)
	}
	return hours, nil
}

func (r *BookingGormRepository) ReplaceWorkingHours(
	ctx context.Context,
	providerID uint,
	hours []models.WorkingHours,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("provider_id = ?", providerID).
			Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}

		if len(hours) == 0 {
			return nil
		}
		for i := range hours {
			hours[i].ID = 0
			hours[i].ProviderID = providerID
		}
		return tx.Create(&hours).Error
	})
	return translate(err, "working_hours", providerID)
}

func (r *BookingGormRepository) ListBlockedCells(
	ctx context.Context,
	providerID uint,
	date string,
) ([]models.BlockedCell, error) {

	var cells []models.BlockedCell
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND date = ?", providerID, date).
		Order("start_time ASC").
		Find(&cells).Error; err != nil {
		return nil, translate(err, "blocked_cell", providerID)
	}
	return cells, nil
}

// CreateBlockedCell is idempotent per (provider, date, start).
func (r *BookingGormRepository) CreateBlockedCell(
	ctx context.Context,
	cell *models.BlockedCell,
) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(cell).Error
	return translate(err, "blocked_cell", cell.ProviderID)
}

func (r *BookingGormRepository) DeleteBlockedCell(
	ctx context.Context,
	providerID uint,
	date string,
	startTime string,
) error {

	res := r.db.WithContext(ctx).
		Where("provider_id = ? AND date = ? AND start_time = ?", providerID, date, startTime).
		Delete(&models.BlockedCell{})
	if res.Error != nil {
		return translate(res.Error, "blocked_cell", providerID)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("blocked_cell", slot.Key(date, startTime))
	}
	return nil
}

// --------------------------------------------------
// Catalogue
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err, "service", id)
	}
	return &s, nil
}

// --------------------------------------------------
// Booking (read)
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err, "booking", id)
	}
	return &b, nil
}

// ListBookingsForDay returns every booking on the provider-local date,
// whatever its status; callers decide which ones occupy.
func (r *BookingGormRepository) ListBookingsForDay(
	ctx context.Context,
	providerID uint,
	date string,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND date = ?", providerID, date).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, translate(err, "booking", providerID)
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListLiveBookingsAt(
	ctx context.Context,
	providerID uint,
	start time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND start_time = ?", providerID, start.UTC()).
		Where(livePredicate).
		Find(&bookings).Error; err != nil {
		return nil, translate(err, "booking", providerID)
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListExpiredHolds(
	ctx context.Context,
	createdBefore time.Time,
	limit int,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where(
			"payment_status = ? AND fulfilment_status = ? AND provider_approval <> ? AND created_at < ?",
			booking.PaymentUnpaid, booking.FulfilmentPending, booking.ApprovalRejected, createdBefore.UTC(),
		).
		Order("created_at ASC").
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, translate(err, "booking", nil)
	}
	return bookings, nil
}

// --------------------------------------------------
// Booking (write)
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {

	utc(b)

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
	if httperr.IsExclusionConflict(err) {
		return httperr.SlotConflictError{ProviderID: b.ProviderID, Status: "held"}
	}
	return translate(err, "booking", b.ID)
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {

	utc(b)

	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
	if httperr.IsExclusionConflict(err) {
		return httperr.SlotConflictError{ProviderID: b.ProviderID, Status: "held", BookingID: b.ID}
	}
	return translate(err, "booking", b.ID)
}

// utc keeps every compared column in one zone so that string-typed
// datastores order and match them correctly.
func utc(b *models.Booking) {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	if !b.CreatedAt.IsZero() {
		b.CreatedAt = b.CreatedAt.UTC()
	}
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

// WithProviderLock serialises booking writes per provider by locking the
// provider row for the duration of fn.
func (r *BookingGormRepository) WithProviderLock(
	ctx context.Context,
	providerID uint,
	fn func(tx booking.Repository) error,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Provider
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, providerID).Error; err != nil {
			return translate(err, "provider", providerID)
		}

		return fn(&BookingGormRepository{db: tx})
	})
	return translate(err, "provider", providerID)
}

// Compile-time check
var _ booking.Repository = (*BookingGormRepository)(nil)
