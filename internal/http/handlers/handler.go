package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"
	"sales_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

type SaleAPI interface {
	CreateSale(ctx context.Context, in service.CreateSaleInput) (*domain.SaleResult, error)
	GetSale(ctx context.Context, id string) (*domain.SaleResult, error)
	DeleteSale(ctx context.Context, id string, req service.RequestInfo) error
	ListSales(ctx context.Context, page, limit int) (*domain.SalePage, error)
	SearchSales(ctx context.Context, query string, page int) (*domain.SalePage, error)
}

type AffiliateAPI interface {
	Create(ctx context.Context, in service.CreateAffiliateInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.AffiliateView, error)
	Sellers(ctx context.Context) ([]domain.User, error)
	PotentialReferrers(ctx context.Context, level int) ([]domain.User, error)
	Referrals(ctx context.Context, id string) (*domain.ReferralSummary, error)
}

type DashboardAPI interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
	CommissionsByLevel(ctx context.Context) ([]domain.LevelTotal, error)
	CommissionsByMonth(ctx context.Context) ([]domain.MonthTotal, error)
	TopEarners(ctx context.Context) ([]domain.AffiliateEarnings, error)
	AffiliatesByLevel(ctx context.Context, level int) ([]domain.AffiliateEarnings, error)
	LatestSales(ctx context.Context) ([]domain.SaleView, error)
}

type AuthAPI interface {
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
}

type Handler struct {
	Sales      SaleAPI
	Affiliates AffiliateAPI
	Dashboard  DashboardAPI
	Auth       AuthAPI
}

func NewHandler(sales SaleAPI, affiliates AffiliateAPI, dashboard DashboardAPI, auth AuthAPI) *Handler {
	return &Handler{
		Sales:      sales,
		Affiliates: affiliates,
		Dashboard:  dashboard,
		Auth:       auth,
	}
}

// respondError writes {"error": {kind, message, details}} with the status for the error's kind.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.WithContext(c.Request.Context()).Error("unhandled error", "error", err, "path", c.FullPath())
		de = domain.PersistenceError("internal error", err)
	}

	body := gin.H{"kind": de.Kind, "message": de.Message}
	if len(de.Fields) > 0 {
		body["details"] = de.Fields
	}
	c.JSON(statusFor(de.Kind), gin.H{"error": body})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	respondError(c, domain.ValidationError(msg, nil))
}

func requestInfo(c *gin.Context) service.RequestInfo {
	return service.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
