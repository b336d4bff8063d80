package http

import (
	"time"

	"sales_dashboard/internal/config"
	"sales_dashboard/internal/http/handlers"
	"sales_dashboard/internal/http/middleware"
	"sales_dashboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the router needs from main.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Auth    middleware.Authenticator
	Tokens  ws.TokenVerifier
	Hub     *ws.Hub
	Redis   *redis.Client
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, d Deps) {
	r.Use(middleware.RequestLogger(), middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(d.Redis, "api", cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, d, cfg.AuthRateLimit, cfg.AuthRateWindow)

	r.GET("/ws/sales", ws.HandleWS(d.Hub, d.Tokens, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, d Deps, authRateLimit int, authRateWindow time.Duration) {
	h := d.Handler

	api.POST("/auth/login", middleware.RedisRateLimit(d.Redis, "auth", authRateLimit, authRateWindow), h.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(d.Auth))
	authed.GET("/auth/me", h.Me)

	sales := authed.Group("/sales")
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.CreateSale)
		sales.GET("/search", h.SearchSales)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.DeleteSale)
	}

	affiliates := authed.Group("/affiliates")
	{
		affiliates.GET("", h.ListAffiliates)
		affiliates.POST("", h.CreateAffiliate)
		affiliates.GET("/sellers", h.Sellers)
		affiliates.GET("/referrers", h.PotentialReferrers)
		affiliates.GET("/:id", h.GetAffiliate)
		affiliates.GET("/:id/referrals", h.Referrals)
	}

	authed.GET("/levels/:level", h.Level)

	dashboard := authed.Group("/dashboard")
	{
		dashboard.GET("/summary", h.DashboardSummary)
		dashboard.GET("/commissions/by-level", h.CommissionsByLevel)
		dashboard.GET("/commissions/monthly", h.CommissionsByMonth)
		dashboard.GET("/commissions/top", h.TopEarners)
		dashboard.GET("/latest-sales", h.LatestSales)
	}
}
