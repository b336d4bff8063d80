package service

import (
	"context"
	"errors"
	"math"
	"time"

	"sales_dashboard/internal/commission"
	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"
	"sales_dashboard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	searchPageSize  = 6
)

// largest value a NUMERIC(12,2) column holds
var maxSaleAmount = decimal.RequireFromString("9999999999.99")

const maxAmountExponent = 12

type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type SellerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	AncestorChain(ctx context.Context, q repository.Querier, userID uuid.UUID, maxDepth int) ([]domain.ChainNode, error)
}

type SaleStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, s *domain.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]domain.SaleView, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]domain.SaleView, int64, error)
}

type CommissionStore interface {
	CreateBatchWithTx(ctx context.Context, tx pgx.Tx, saleID uuid.UUID, entries []commission.Entry) ([]domain.Commission, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.Commission, error)
}

// SaleListener is told about committed changes to sales.
type SaleListener interface {
	OnSaleCreated(ctx context.Context, res *domain.SaleResult)
	OnSaleDeleted(ctx context.Context, saleID uuid.UUID)
}

// CreateSaleInput is a request to record a sale. Amount accepts a JSON number or string.
type CreateSaleInput struct {
	SellerID string          `json:"seller_id" validate:"required,uuid"`
	Amount   decimal.Decimal `json:"amount"`

	Request RequestInfo `json:"-"`
}

// SaleService records sales and is the only writer of commissions.
type SaleService struct {
	db          TxBeginner
	users       SellerStore
	sales       SaleStore
	commissions CommissionStore
	engine      *commission.Engine
	audit       *AuditService
	listeners   []SaleListener
}

func NewSaleService(db TxBeginner, users SellerStore, sales SaleStore, commissions CommissionStore, engine *commission.Engine, audit *AuditService) *SaleService {
	return &SaleService{
		db:          db,
		users:       users,
		sales:       sales,
		commissions: commissions,
		engine:      engine,
		audit:       audit,
	}
}

// AddListener registers l for sale events. Not safe to call once requests are being served.
func (s *SaleService) AddListener(l SaleListener) {
	s.listeners = append(s.listeners, l)
}

// CreateSale validates the input, computes the seller's commission plan and
// stores the sale with all of its commissions in one transaction.
func (s *SaleService) CreateSale(ctx context.Context, in CreateSaleInput) (*domain.SaleResult, error) {
	start := time.Now()
	res, err := s.createSale(ctx, in)
	SaleDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		SaleFailures.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}

	SalesCreated.Inc()
	for _, c := range res.Commissions {
		CommissionsPaid.WithLabelValues(levelLabel(c.Level)).Add(c.Amount.InexactFloat64())
	}

	sellerID := res.Sale.SellerID
	s.audit.LogWithRequest(ctx, &sellerID, domain.AuditActionSaleCreate, domain.AuditCategorySale, in.Request, map[string]interface{}{
		"sale_id":           res.Sale.ID.String(),
		"amount":            res.Sale.Amount.StringFixed(2),
		"total_commissions": res.Summary.TotalCommissions.StringFixed(2),
		"commissions_count": res.Summary.CommissionsCount,
	})
	for _, l := range s.listeners {
		l.OnSaleCreated(ctx, res)
	}
	return res, nil
}

func (s *SaleService) createSale(ctx context.Context, in CreateSaleInput) (*domain.SaleResult, error) {
	sellerID, amount, err := validateSaleInput(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, sellerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("seller not found")
		}
		return nil, s.persistenceFailure(ctx, "failed to load seller", err, sellerID, amount)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, s.persistenceFailure(ctx, "failed to create sale", err, sellerID, amount)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	chain, err := s.users.AncestorChain(ctx, tx, sellerID, s.engine.MaxDepth())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("seller not found")
		}
		return nil, s.persistenceFailure(ctx, "failed to create sale", err, sellerID, amount)
	}

	plan := s.engine.Compute(chain, amount)

	sale := &domain.Sale{SellerID: sellerID, Amount: amount}
	if err := s.sales.CreateWithTx(ctx, tx, sale); err != nil {
		return nil, s.persistenceFailure(ctx, "failed to create sale", err, sellerID, amount)
	}

	commissions, err := s.commissions.CreateBatchWithTx(ctx, tx, sale.ID, plan)
	if err != nil {
		return nil, s.persistenceFailure(ctx, "failed to create sale", err, sellerID, amount)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.persistenceFailure(ctx, "failed to create sale", err, sellerID, amount)
	}

	logger.WithContext(ctx).Info("sale created",
		"sale_id", sale.ID,
		"seller_id", sellerID,
		"amount", amount.StringFixed(2),
		"commissions", len(commissions),
	)

	return &domain.SaleResult{
		Sale:        sale,
		Commissions: commissions,
		Summary:     summarize(amount, commissions),
	}, nil
}

func validateSaleInput(in CreateSaleInput) (uuid.UUID, decimal.Decimal, error) {
	fields := validateStruct(in)

	switch {
	case !in.Amount.IsPositive():
		fields.Add("amount", "must be greater than 0")
	case in.Amount.Exponent() < -maxAmountExponent || in.Amount.Exponent() > maxAmountExponent:
		// Round and Cmp rescale through 10^|exp|.
		fields.Add("amount", "is out of range")
	case !in.Amount.Equal(in.Amount.Round(commission.Places)):
		fields.Add("amount", "must have at most 2 decimal places")
	case in.Amount.GreaterThan(maxSaleAmount):
		fields.Add("amount", "is too large")
	}

	if !fields.Empty() {
		return uuid.Nil, decimal.Zero, domain.ValidationError("invalid sale", fields)
	}

	sellerID, err := uuid.Parse(in.SellerID)
	if err != nil {
		return uuid.Nil, decimal.Zero, domain.ValidationError("invalid sale", map[string][]string{
			"seller_id": {"must be a valid UUID"},
		})
	}
	return sellerID, in.Amount.Round(commission.Places), nil
}

func summarize(amount decimal.Decimal, commissions []domain.Commission) domain.SaleSummary {
	total := decimal.Zero
	for _, c := range commissions {
		total = total.Add(c.Amount)
	}
	return domain.SaleSummary{
		TotalSale:        amount,
		TotalCommissions: total,
		CommissionsCount: len(commissions),
	}
}

func (s *SaleService) persistenceFailure(ctx context.Context, msg string, err error, sellerID uuid.UUID, amount decimal.Decimal) error {
	logger.WithContext(ctx).Error(msg, "error", err, "seller_id", sellerID, "amount", amount.StringFixed(2))
	return domain.PersistenceError(msg, err)
}

// GetSale returns a stored sale with its commissions.
func (s *SaleService) GetSale(ctx context.Context, id string) (*domain.SaleResult, error) {
	saleID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("sale not found")
		}
		logger.WithContext(ctx).Error("failed to load sale", "error", err, "sale_id", saleID)
		return nil, domain.PersistenceError("failed to load sale", err)
	}

	commissions, err := s.commissions.ListBySale(ctx, saleID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to load commissions", "error", err, "sale_id", saleID)
		return nil, domain.PersistenceError("failed to load sale", err)
	}

	return &domain.SaleResult{
		Sale:        sale,
		Commissions: commissions,
		Summary:     summarize(sale.Amount, commissions),
	}, nil
}

// DeleteSale removes a sale and, by cascade, its commissions.
func (s *SaleService) DeleteSale(ctx context.Context, id string, req RequestInfo) error {
	saleID, err := parseID("id", id)
	if err != nil {
		return err
	}

	if err := s.sales.Delete(ctx, saleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFoundError("sale not found")
		}
		logger.WithContext(ctx).Error("failed to delete sale", "error", err, "sale_id", saleID)
		return domain.PersistenceError("failed to delete sale", err)
	}

	logger.WithContext(ctx).Info("sale deleted", "sale_id", saleID)
	s.audit.LogWithRequest(ctx, nil, domain.AuditActionSaleDelete, domain.AuditCategorySale, req, map[string]interface{}{
		"sale_id": saleID.String(),
	})
	for _, l := range s.listeners {
		l.OnSaleDeleted(ctx, saleID)
	}
	return nil
}

// ListSales returns a page of sales, newest first. page is 1-based.
func (s *SaleService) ListSales(ctx context.Context, page, limit int) (*domain.SalePage, error) {
	page, limit = normalizePage(page, limit, defaultPageSize)

	sales, total, err := s.sales.List(ctx, limit, (page-1)*limit)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list sales", "error", err)
		return nil, domain.PersistenceError("failed to list sales", err)
	}
	return newSalePage(sales, total, page, limit), nil
}

// SearchSales filters sales by seller name, email or amount, six per page.
func (s *SaleService) SearchSales(ctx context.Context, query string, page int) (*domain.SalePage, error) {
	page, limit := normalizePage(page, searchPageSize, searchPageSize)

	sales, total, err := s.sales.Search(ctx, query, limit, (page-1)*limit)
	if err != nil {
		logger.WithContext(ctx).Error("failed to search sales", "error", err, "query", query)
		return nil, domain.PersistenceError("failed to search sales", err)
	}
	return newSalePage(sales, total, page, limit), nil
}

func newSalePage(sales []domain.SaleView, total int64, page, limit int) *domain.SalePage {
	return &domain.SalePage{
		Sales:      sales,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func normalizePage(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ValidationError("invalid "+field, map[string][]string{
			field: {"must be a valid UUID"},
		})
	}
	return id, nil
}

func levelLabel(level int) string {
	switch level {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	default:
		return "other"
	}
}
