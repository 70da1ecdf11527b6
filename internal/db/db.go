package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// activeCellIndex lets at most one live booking claim a provider cell start.
// The predicate must stay in sync with booking.Live.
const activeCellIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_cell
	ON bookings (provider_id, date, start_time)
	WHERE fulfilment_status NOT IN ('cancelled', 'refunded')
	  AND payment_status <> 'refunded'
	  AND provider_approval <> 'rejected'
`

// Options shared by every dialect. Times are persisted in UTC and driver
// errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func Options() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func NewDB(cfg *config.Config, log *zap.Logger) *gorm.DB {
	opts := Options()
	opts.PrepareStmt = true

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), opts)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	if cfg.DefaultTimezone != "" {
		db.Exec(`
			UPDATE providers
			SET timezone = ?
			WHERE timezone IS NULL OR timezone = ''
		`, cfg.DefaultTimezone)
	}

	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Provider{},
		&models.Service{},
		&models.WorkingHours{},
		&models.BlockedCell{},
		&models.Booking{},
		&models.AuditLog{},
		&models.User{},
	); err != nil {
		return err
	}

	return db.Exec(activeCellIndex).Error
}
