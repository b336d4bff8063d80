package repository

import (
	"context"

	"sales_dashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository runs the dashboard aggregates. It only reads.
type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Summary counts sales and affiliates and sums every commission paid.
func (r *ReportRepository) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	batch := &pgx.Batch{}
	batch.Queue(`SELECT COUNT(*) FROM sales`)
	batch.Queue(`SELECT COALESCE(SUM(amount), 0) FROM commissions`)
	batch.Queue(`SELECT COUNT(*) FROM users`)

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	var s domain.DashboardSummary
	if err := results.QueryRow().Scan(&s.NumberOfSales); err != nil {
		return nil, err
	}
	if err := results.QueryRow().Scan(&s.TotalCommissionsAmount); err != nil {
		return nil, err
	}
	if err := results.QueryRow().Scan(&s.NumberOfAffiliates); err != nil {
		return nil, err
	}
	return &s, nil
}

// CommissionsByLevel groups commissions by chain depth.
func (r *ReportRepository) CommissionsByLevel(ctx context.Context) ([]domain.LevelTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT level, COUNT(*), COALESCE(SUM(amount), 0)
		FROM commissions
		GROUP BY level
		ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.LevelTotal{}
	for rows.Next() {
		var lt domain.LevelTotal
		if err := rows.Scan(&lt.Level, &lt.Count, &lt.Total); err != nil {
			return nil, err
		}
		res = append(res, lt)
	}
	return res, rows.Err()
}

// CommissionsByMonth returns totals for the last months calendar months, oldest first.
func (r *ReportRepository) CommissionsByMonth(ctx context.Context, months int) ([]domain.MonthTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('month', created_at) AS month, COUNT(*), COALESCE(SUM(amount), 0)
		FROM commissions
		WHERE created_at >= date_trunc('month', NOW()) - make_interval(months => $1 - 1)
		GROUP BY month
		ORDER BY month`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.MonthTotal{}
	for rows.Next() {
		var mt domain.MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Count, &mt.Total); err != nil {
			return nil, err
		}
		res = append(res, mt)
	}
	return res, rows.Err()
}

const earningsSelect = `
	SELECT u.id, u.name, u.email, u.level, r.name,
	       (SELECT COUNT(*) FROM sales s WHERE s.seller_id = u.id),
	       COALESCE((SELECT SUM(c.amount) FROM commissions c WHERE c.user_id = u.id), 0) AS total_commissions
	FROM users u
	LEFT JOIN users r ON u.referrer_id = r.id`

func scanEarnings(rows pgx.Rows) ([]domain.AffiliateEarnings, error) {
	defer rows.Close()

	res := []domain.AffiliateEarnings{}
	for rows.Next() {
		var a domain.AffiliateEarnings
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Level, &a.ReferrerName, &a.TotalSales, &a.TotalCommissions); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// AffiliatesByLevel lists one tier with each affiliate's sales count and earnings.
func (r *ReportRepository) AffiliatesByLevel(ctx context.Context, level int) ([]domain.AffiliateEarnings, error) {
	rows, err := r.db.Query(ctx, earningsSelect+`
		WHERE u.level = $1
		ORDER BY total_commissions DESC, u.name`, level)
	if err != nil {
		return nil, err
	}
	return scanEarnings(rows)
}

// TopEarners returns the affiliates with the highest commission totals.
func (r *ReportRepository) TopEarners(ctx context.Context, limit int) ([]domain.AffiliateEarnings, error) {
	rows, err := r.db.Query(ctx, earningsSelect+`
		ORDER BY total_commissions DESC, u.name
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanEarnings(rows)
}
