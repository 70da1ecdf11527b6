package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/handlers"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/payment"
	infraRepo "github.com/BruksfildServices01/consult-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
)

// Deps are the process-wide singletons the routes are built on.
type Deps struct {
	DB       *gorm.DB
	Audit    *audit.Dispatcher
	Cache    ucBooking.AvailabilityCache
	Refunder payment.Refunder
	Log      *zap.Logger
}

func RegisterRoutes(r *gin.Engine, deps Deps, cfg *config.Config) {

	// ======================================================
	// INFRA
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(deps.DB)
	settings := ucBooking.SettingsFrom(cfg)

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo, deps.Cache, settings, deps.Log)
	matrixUC := ucBooking.NewGetProviderDayMatrix(bookingRepo, settings, deps.Log)

	createUC := ucBooking.NewCreateBooking(
		bookingRepo,
		deps.Audit,
		deps.Cache,
		settings,
		deps.Log,
	)

	paymentUC := ucBooking.NewTransitionPayment(
		bookingRepo,
		deps.Audit,
		deps.Cache,
		deps.Refunder,
		settings,
		deps.Log,
	)

	approvalUC := ucBooking.NewTransitionApproval(
		bookingRepo,
		deps.Audit,
		deps.Cache,
		deps.Refunder,
		settings,
		deps.Log,
	)

	cancelUC := ucBooking.NewCancelBooking(
		bookingRepo,
		deps.Audit,
		deps.Cache,
		deps.Refunder,
		settings,
		deps.Log,
	)

	fulfilmentUC := ucBooking.NewAdvanceFulfilment(bookingRepo, deps.Audit, settings, deps.Log)
	getUC := ucBooking.NewGetBooking(bookingRepo, settings)
	listByDateUC := ucBooking.NewListBookingsByDate(bookingRepo, settings)

	blockedCellsUC := ucBooking.NewManageBlockedCells(bookingRepo, deps.Audit, deps.Cache, settings, deps.Log)
	workingHoursUC := ucBooking.NewManageWorkingHours(bookingRepo, deps.Audit, deps.Cache, settings, deps.Log)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(deps.DB, cfg)
	meHandler := handlers.NewMeHandler(deps.DB)
	publicHandler := handlers.NewPublicHandler(availabilityUC)

	bookingHandler := handlers.NewBookingHandler(
		createUC,
		getUC,
		listByDateUC,
		cancelUC,
		paymentUC,
		approvalUC,
		fulfilmentUC,
	)

	workingHoursHandler := handlers.NewWorkingHoursHandler(workingHoursUC)
	blockedCellsHandler := handlers.NewBlockedCellsHandler(blockedCellsUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(audit.New(deps.DB))
	adminHandler := handlers.NewAdminHandler(matrixUC)

	// ======================================================
	// ROUTES
	// ======================================================
	api := r.Group("/api")

	// ---------- Public ----------
	public := api.Group("/public")
	public.Use(middleware.NewRateLimiter(cfg.PublicRatePerMinute, deps.Log).Middleware())
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.GET("/providers/:id/availability", publicHandler.Availability)
	}

	// ---------- Authenticated ----------
	secured := api.Group("")
	secured.Use(middleware.AuthMiddleware(cfg))
	{
		secured.GET("/me", meHandler.GetMe)

		// Bookings
		secured.POST("/bookings", bookingHandler.Create)
		secured.GET("/bookings/:id", bookingHandler.Get)
		secured.POST("/bookings/:id/cancel", bookingHandler.Cancel)
		secured.POST("/bookings/:id/payment", bookingHandler.Payment)
		secured.POST("/bookings/:id/approval", bookingHandler.Approval)
		secured.POST("/bookings/:id/start", bookingHandler.Start)
		secured.POST("/bookings/:id/complete", bookingHandler.Complete)

		// Provider schedule
		secured.GET("/providers/:id/bookings", bookingHandler.ListByDate)
		secured.GET("/providers/:id/working-hours", workingHoursHandler.Get)
		secured.PUT("/providers/:id/working-hours", workingHoursHandler.Update)
		secured.GET("/providers/:id/blocked-cells", blockedCellsHandler.List)
		secured.POST("/providers/:id/blocked-cells", blockedCellsHandler.Block)
		secured.DELETE("/providers/:id/blocked-cells", blockedCellsHandler.Unblock)
		secured.GET("/providers/:id/audit-logs", auditLogsHandler.List)
	}

	// ---------- Admin ----------
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/matrix", adminHandler.DayMatrix)
	}
}
