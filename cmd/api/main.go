package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/consult-scheduler/internal/db"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/payment"
	infraRepo "github.com/BruksfildServices01/consult-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/consult-scheduler/internal/logger"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/routes"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
	ucBooking "github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/worker"
)

func main() {

	cfg := config.Load()
	log := logger.New(cfg)
	defer log.Sync() //nolint:errcheck

	timezone.SetDefault(cfg.DefaultTimezone)
	db := dbpkg.NewDB(cfg, log)

	// ======================================================
	// INFRA
	// ======================================================
	var availabilityCache ucBooking.AvailabilityCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		client := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		availabilityCache = cache.NewAvailabilityRedis(client, cfg.CacheTTL, log)
		log.Info("availability cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	var refunder payment.Refunder = payment.LogOnly{Log: log}
	if cfg.MercadoPagoToken != "" {
		mp, err := payment.NewMercadoPago(cfg.MercadoPagoToken, log)
		if err != nil {
			log.Fatal("failed to init payment client", zap.Error(err))
		}
		refunder = mp
	}

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	defer dispatcher.Close()

	// ======================================================
	// WORKERS
	// ======================================================
	expireHolds := ucBooking.NewExpireHolds(
		infraRepo.NewBookingGormRepository(db),
		dispatcher,
		availabilityCache,
		ucBooking.SettingsFrom(cfg),
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := worker.NewHoldSweeper(log, expireHolds, cfg.HoldSweepSpec)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORSMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Audit:    dispatcher,
		Cache:    availabilityCache,
		Refunder: refunder,
		Log:      log,
	}, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
