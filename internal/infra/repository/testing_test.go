package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/db"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo.db")), db.Options())
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedProvider(t *testing.T, gdb *gorm.DB, tz string) *models.Provider {
	t.Helper()
	p := &models.Provider{Name: "Acharya Rao", Timezone: tz, Active: true}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func at(t *testing.T, loc *time.Location, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 10, 19, hour, minute, 0, 0, loc)
}
