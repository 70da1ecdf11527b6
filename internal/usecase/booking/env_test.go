package booking

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/db"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// 2026-10-19 is a Monday.
const monday = "2026-10-19"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memCache is a working in-process cache so tests observe invalidation.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Availability
	days    map[string][]string
	gens    map[string]int

	// beforeSet, when set, runs once right before the next Set stores.
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{
		entries: map[string]*domain.Availability{},
		days:    map[string][]string{},
		gens:    map[string]int{},
	}
}

func (m *memCache) Generation(_ context.Context, providerID uint, date string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("%d.%d", m.gens[fmt.Sprint(providerID)], m.gens[dayKey(providerID, date)]), true
}

func dayKey(providerID uint, date string) string {
	return fmt.Sprintf("%d/%s", providerID, date)
}

func (m *memCache) Get(_ context.Context, key string) (*domain.Availability, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.entries[key]
	return a, ok
}

func (m *memCache) Set(_ context.Context, key string, a *domain.Availability) {
	if hook := m.takeBeforeSet(); hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = a
	dk := dayKey(a.ProviderID, a.Date)
	m.days[dk] = append(m.days[dk], key)
}

func (m *memCache) InvalidateDay(_ context.Context, providerID uint, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dk := dayKey(providerID, date)
	m.gens[dk]++
	for _, k := range m.days[dk] {
		delete(m.entries, k)
	}
	delete(m.days, dk)
	return nil
}

func (m *memCache) InvalidateProvider(_ context.Context, providerID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[fmt.Sprint(providerID)]++
	m.entries = map[string]*domain.Availability{}
	m.days = map[string][]string{}
	return nil
}

func (m *memCache) takeBeforeSet() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	hook := m.beforeSet
	m.beforeSet = nil
	return hook
}

func (m *memCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type recordingRefunder struct {
	mu       sync.Mutex
	refunded []uint
}

func (r *recordingRefunder) Refund(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunded = append(r.refunded, b.ID)
	return nil
}

func (r *recordingRefunder) ids() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.refunded...)
}

type env struct {
	db       *gorm.DB
	repo     *repository.BookingGormRepository
	cache    *memCache
	audit    *audit.Dispatcher
	auditLog *audit.Logger
	refunder *recordingRefunder
	clock    *clock
	settings Settings
	log      *zap.Logger

	loc      *time.Location
	provider *models.Provider
	short    *models.Service
	long     *models.Service
}

// newEnv seeds one provider in Asia/Kolkata working Mondays 09:00-11:00,
// a 30 and a 60 minute service, and a clock at 06:00 on the Monday.
func newEnv(t *testing.T) *env {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "booking.db")), db.Options())
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	e := &env{
		db:       gdb,
		repo:     repository.NewBookingGormRepository(gdb),
		cache:    newMemCache(),
		auditLog: audit.New(gdb),
		refunder: &recordingRefunder{},
		clock:    &clock{now: time.Date(2026, 10, 19, 6, 0, 0, 0, loc)},
		log:      zap.NewNop(),
		loc:      loc,
	}
	e.audit = audit.NewDispatcher(e.auditLog, e.log)
	t.Cleanup(e.audit.Close)

	e.settings = Settings{
		CellMinutes: 30,
		MinLead:     15 * time.Minute,
		HoldTTL:     15 * time.Minute,
		DBTimeout:   5 * time.Second,
		Now:         e.clock.Now,
	}

	e.provider = &models.Provider{Name: "Acharya Rao", Timezone: "Asia/Kolkata", Active: true}
	require.NoError(t, gdb.Create(e.provider).Error)

	e.short = &models.Service{Name: "Quick question", DurationMin: 30, Mode: "video", Active: true}
	e.long = &models.Service{Name: "Full chart", DurationMin: 60, Mode: "video", Active: true}
	require.NoError(t, gdb.Create(e.short).Error)
	require.NoError(t, gdb.Create(e.long).Error)

	require.NoError(t, e.repo.ReplaceWorkingHours(context.Background(), e.provider.ID, []models.WorkingHours{
		{Weekday: int(time.Monday), StartTime: "09:00", EndTime: "11:00", Active: true},
	}))

	return e
}

func (e *env) at(hour, minute int) time.Time {
	return time.Date(2026, 10, 19, hour, minute, 0, 0, e.loc)
}

// seed inserts a booking directly with the given statuses.
func (e *env) seed(t *testing.T, hour, minute, minutes int, f domain.Fulfilment, p domain.Payment, a domain.Approval) *models.Booking {
	t.Helper()
	start := e.at(hour, minute)
	b := &models.Booking{
		ProviderID:       e.provider.ID,
		ServiceID:        e.short.ID,
		CustomerID:       100,
		Date:             monday,
		StartTime:        start,
		EndTime:          start.Add(time.Duration(minutes) * time.Minute),
		FulfilmentStatus: string(f),
		PaymentStatus:    string(p),
		ProviderApproval: string(a),
	}
	require.NoError(t, e.repo.CreateBooking(context.Background(), b))
	return b
}

func (e *env) reload(t *testing.T, id uint) *models.Booking {
	t.Helper()
	b, err := e.repo.GetBooking(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (e *env) availability() *GetAvailability {
	return NewGetAvailability(e.repo, e.cache, e.settings, e.log)
}

func (e *env) create() *CreateBooking {
	return NewCreateBooking(e.repo, e.audit, e.cache, e.settings, e.log)
}

func (e *env) payment() *TransitionPayment {
	return NewTransitionPayment(e.repo, e.audit, e.cache, e.refunder, e.settings, e.log)
}

func (e *env) approval() *TransitionApproval {
	return NewTransitionApproval(e.repo, e.audit, e.cache, e.refunder, e.settings, e.log)
}

func (e *env) cancel() *CancelBooking {
	return NewCancelBooking(e.repo, e.audit, e.cache, e.refunder, e.settings, e.log)
}

func (e *env) starts(t *testing.T, durationMinutes int) []string {
	t.Helper()
	a, err := e.availability().Execute(context.Background(), domain.AvailabilityInput{
		ProviderID:      e.provider.ID,
		Date:            monday,
		DurationMinutes: durationMinutes,
	})
	require.NoError(t, err)

	out := make([]string, 0, len(a.Slots))
	for _, s := range a.Slots {
		out = append(out, s.Start.In(e.loc).Format("15:04"))
	}
	return out
}

func (e *env) customer(id uint) domain.Actor {
	return domain.Actor{Role: domain.RoleCustomer, UserID: id}
}

func (e *env) providerActor() domain.Actor {
	return domain.Actor{Role: domain.RoleProvider, UserID: 500, ProviderID: e.provider.ID}
}

var gateway = domain.Actor{Role: domain.RolePaymentGateway}
