package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	return New(db)
}

func TestDispatcher_CloseFlushesQueue(t *testing.T) {
	l := newTestLogger(t)
	d := NewDispatcher(l, zap.NewNop())

	id := uint(7)
	d.Dispatch(Event{ProviderID: 1, Action: "booking_created", Entity: "booking", EntityID: &id, Metadata: map[string]string{"cell": "2026-10-19T09:00"}})
	d.Dispatch(Event{ProviderID: 1, Action: "booking_paid", Entity: "booking", EntityID: &id})
	d.Dispatch(Event{ProviderID: 2, Action: "booking_created", Entity: "booking"})
	d.Close()
	d.Close()

	logs, total, err := l.List(context.Background(), Filter{ProviderID: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	logs, _, err = l.List(context.Background(), Filter{Action: "booking_created", EntityID: 7})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"cell":"2026-10-19T09:00"}`, logs[0].Metadata)
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "ignored"})
	d.Close()
}
