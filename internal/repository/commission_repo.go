package repository

import (
	"context"
	"fmt"

	"sales_dashboard/internal/commission"
	"sales_dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommissionRepository struct {
	db *pgxpool.Pool
}

func NewCommissionRepository(db *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// CreateBatchWithTx inserts one row per plan entry in a single round trip and
// returns the stored commissions in plan order.
func (r *CommissionRepository) CreateBatchWithTx(ctx context.Context, tx pgx.Tx, saleID uuid.UUID, entries []commission.Entry) ([]domain.Commission, error) {
	if len(entries) == 0 {
		return []domain.Commission{}, nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO commissions (sale_id, user_id, amount, percentage, level)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			saleID, e.BeneficiaryID, e.Amount, e.Percentage, e.Depth,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	created := make([]domain.Commission, 0, len(entries))
	for _, e := range entries {
		c := domain.Commission{
			SaleID:     saleID,
			UserID:     e.BeneficiaryID,
			UserName:   e.BeneficiaryName,
			Amount:     e.Amount,
			Percentage: e.Percentage,
			Level:      e.Depth,
		}
		if err := results.QueryRow().Scan(&c.ID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert commission level %d: %w", e.Depth, err)
		}
		created = append(created, c)
	}

	return created, results.Close()
}

// ListBySale returns a sale's commissions with beneficiary names, by level.
func (r *CommissionRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.Commission, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.sale_id, c.user_id, u.name, c.amount, c.percentage, c.level, c.created_at
		FROM commissions c
		JOIN users u ON c.user_id = u.id
		WHERE c.sale_id = $1
		ORDER BY c.level`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Commission{}
	for rows.Next() {
		var c domain.Commission
		if err := rows.Scan(&c.ID, &c.SaleID, &c.UserID, &c.UserName, &c.Amount, &c.Percentage, &c.Level, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
