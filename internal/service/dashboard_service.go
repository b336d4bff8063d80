package service

import (
	"context"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"

	"github.com/google/uuid"
)

const (
	latestSalesCount = 5
	monthsOfHistory  = 12
	topEarnersCount  = 10
)

type ReportStore interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
	CommissionsByLevel(ctx context.Context) ([]domain.LevelTotal, error)
	CommissionsByMonth(ctx context.Context, months int) ([]domain.MonthTotal, error)
	AffiliatesByLevel(ctx context.Context, level int) ([]domain.AffiliateEarnings, error)
	TopEarners(ctx context.Context, limit int) ([]domain.AffiliateEarnings, error)
}

type LatestSalesStore interface {
	Latest(ctx context.Context, n int) ([]domain.SaleView, error)
}

type SummaryCache interface {
	Get(ctx context.Context) (*domain.DashboardSummary, bool)
	Set(ctx context.Context, s *domain.DashboardSummary)
	Invalidate(ctx context.Context)
}

// DashboardService serves the reporting views. It reads stored sales and
// commissions only; it never calls the commission engine.
type DashboardService struct {
	reports ReportStore
	sales   LatestSalesStore
	cache   SummaryCache
}

func NewDashboardService(reports ReportStore, sales LatestSalesStore, cache SummaryCache) *DashboardService {
	return &DashboardService{reports: reports, sales: sales, cache: cache}
}

// Summary returns the overview cards, from cache when possible.
func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}
	return s.RefreshSummary(ctx)
}

// RefreshSummary recomputes the cards and stores them in the cache.
func (s *DashboardService) RefreshSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	summary, err := s.reports.Summary(ctx)
	if err != nil {
		return nil, s.failure(ctx, "failed to load dashboard summary", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	return summary, nil
}

func (s *DashboardService) CommissionsByLevel(ctx context.Context) ([]domain.LevelTotal, error) {
	res, err := s.reports.CommissionsByLevel(ctx)
	if err != nil {
		return nil, s.failure(ctx, "failed to load commissions by level", err)
	}
	return res, nil
}

func (s *DashboardService) CommissionsByMonth(ctx context.Context) ([]domain.MonthTotal, error) {
	res, err := s.reports.CommissionsByMonth(ctx, monthsOfHistory)
	if err != nil {
		return nil, s.failure(ctx, "failed to load monthly commissions", err)
	}
	return res, nil
}

func (s *DashboardService) TopEarners(ctx context.Context) ([]domain.AffiliateEarnings, error) {
	res, err := s.reports.TopEarners(ctx, topEarnersCount)
	if err != nil {
		return nil, s.failure(ctx, "failed to load top earners", err)
	}
	return res, nil
}

// AffiliatesByLevel lists one tier with sales and commission totals.
func (s *DashboardService) AffiliatesByLevel(ctx context.Context, level int) ([]domain.AffiliateEarnings, error) {
	if !domain.ValidLevel(level) {
		return nil, domain.NotFoundError("level not found")
	}
	res, err := s.reports.AffiliatesByLevel(ctx, level)
	if err != nil {
		return nil, s.failure(ctx, "failed to load affiliates by level", err)
	}
	return res, nil
}

func (s *DashboardService) LatestSales(ctx context.Context) ([]domain.SaleView, error) {
	res, err := s.sales.Latest(ctx, latestSalesCount)
	if err != nil {
		return nil, s.failure(ctx, "failed to load latest sales", err)
	}
	return res, nil
}

func (s *DashboardService) OnSaleCreated(ctx context.Context, _ *domain.SaleResult) {
	s.invalidate(ctx)
}

func (s *DashboardService) OnSaleDeleted(ctx context.Context, _ uuid.UUID) {
	s.invalidate(ctx)
}

func (s *DashboardService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(context.WithoutCancel(ctx))
	}
}

func (s *DashboardService) failure(ctx context.Context, msg string, err error) error {
	logger.WithContext(ctx).Error(msg, "error", err)
	return domain.PersistenceError(msg, err)
}
