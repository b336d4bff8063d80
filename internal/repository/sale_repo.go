package repository

import (
	"context"

	"sales_dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SaleRepository struct {
	db *pgxpool.Pool
}

func NewSaleRepository(db *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{db: db}
}

// CreateWithTx inserts a sale inside an existing transaction and fills its ID and CreatedAt.
func (r *SaleRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *domain.Sale) error {
	return tx.QueryRow(ctx,
		`INSERT INTO sales (seller_id, amount)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		s.SellerID, s.Amount,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var s domain.Sale
	err := r.db.QueryRow(ctx,
		`SELECT id, seller_id, amount, created_at FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.SellerID, &s.Amount, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Delete removes a sale; its commissions go with it through ON DELETE CASCADE.
func (r *SaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const saleViewSelect = `
	SELECT s.id, s.amount, s.created_at, u.id, u.name, u.email, u.level
	FROM sales s
	JOIN users u ON s.seller_id = u.id`

const saleSearchWhere = `
	WHERE u.name ILIKE $1 OR u.email ILIKE $1 OR s.amount::text ILIKE $1`

func scanSaleViews(rows pgx.Rows) ([]domain.SaleView, error) {
	defer rows.Close()

	res := []domain.SaleView{}
	for rows.Next() {
		var v domain.SaleView
		if err := rows.Scan(&v.ID, &v.Amount, &v.CreatedAt, &v.SellerID, &v.SellerName, &v.SellerEmail, &v.SellerLevel); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// List returns a page of sales, newest first, and the total number of sales.
func (r *SaleRepository) List(ctx context.Context, limit, offset int) ([]domain.SaleView, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, saleViewSelect+`
		ORDER BY s.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	sales, err := scanSaleViews(rows)
	return sales, total, err
}

// Search filters sales by seller name, seller email or amount text.
func (r *SaleRepository) Search(ctx context.Context, query string, limit, offset int) ([]domain.SaleView, int64, error) {
	pattern := "%" + query + "%"

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales s JOIN users u ON s.seller_id = u.id`+saleSearchWhere,
		pattern,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, saleViewSelect+saleSearchWhere+`
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	sales, err := scanSaleViews(rows)
	return sales, total, err
}

// Latest returns the n most recent sales.
func (r *SaleRepository) Latest(ctx context.Context, n int) ([]domain.SaleView, error) {
	rows, err := r.db.Query(ctx, saleViewSelect+`
		ORDER BY s.created_at DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	return scanSaleViews(rows)
}
