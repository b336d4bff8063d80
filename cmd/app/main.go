package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales_dashboard/internal/cache"
	"sales_dashboard/internal/commission"
	"sales_dashboard/internal/config"
	"sales_dashboard/internal/db"
	httpServer "sales_dashboard/internal/http"
	"sales_dashboard/internal/http/handlers"
	"sales_dashboard/internal/http/middleware"
	"sales_dashboard/internal/jobs"
	"sales_dashboard/internal/logger"
	"sales_dashboard/internal/repository"
	"sales_dashboard/internal/service"
	"sales_dashboard/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepository(dbPool)
	sales := repository.NewSaleRepository(dbPool)
	commissions := repository.NewCommissionRepository(dbPool)
	reports := repository.NewReportRepository(dbPool)
	audit := service.NewAuditService(repository.NewAuditRepository(dbPool))

	engine := commission.NewEngine(commission.DefaultRates())
	jwt := service.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	saleService := service.NewSaleService(dbPool, users, sales, commissions, engine, audit)
	affiliateService := service.NewAffiliateService(users, repository.NewReferralRepository(dbPool), audit)
	authService := service.NewAuthService(users, jwt, audit)
	dashboardService := service.NewDashboardService(reports, sales, cache.NewSummaryCache(rdb, cfg.DashboardCacheTTL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	saleService.AddListener(dashboardService)
	saleService.AddListener(hub)

	scheduler := jobs.NewScheduler()
	if err := scheduler.AddSummaryWarmer(cfg.DashboardRefreshCron, dashboardService); err != nil {
		logger.Fatal("invalid dashboard refresh schedule", "spec", cfg.DashboardRefreshCron, "error", err)
	}
	scheduler.Start()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.AllowedOrigin))

	httpServer.RegisterRoutes(r, cfg, httpServer.Deps{
		Handler: handlers.NewHandler(saleService, affiliateService, dashboardService, authService),
		Health:  handlers.NewHealthHandler(dbPool, rdb, cfg.AppVersion),
		Auth:    authService,
		Tokens:  authService,
		Hub:     hub,
		Redis:   rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}
