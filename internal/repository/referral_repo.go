package repository

import (
	"context"

	"sales_dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// DirectReferrals returns the affiliates referred by userID, newest first.
func (r *ReferralRepository) DirectReferrals(ctx context.Context, userID uuid.UUID) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.name, u.email, u.level, u.created_at,
		       (SELECT COUNT(*) FROM users d WHERE d.referrer_id = u.id)
		FROM users u
		WHERE u.referrer_id = $1
		ORDER BY u.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Referral{}
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email, &ref.Level, &ref.CreatedAt, &ref.DirectReferrals); err != nil {
			return nil, err
		}
		res = append(res, ref)
	}
	return res, rows.Err()
}

// ReferralStats counts userID's downline up to maxDepth levels below it and
// sums the commissions it has earned.
func (r *ReferralRepository) ReferralStats(ctx context.Context, userID uuid.UUID, maxDepth int) (*domain.ReferralStats, error) {
	stats := &domain.ReferralStats{}
	err := r.db.QueryRow(ctx, `
		WITH RECURSIVE downline AS (
			SELECT id, 1 AS depth FROM users WHERE referrer_id = $1
			UNION ALL
			SELECT u.id, d.depth + 1
			FROM users u
			JOIN downline d ON u.referrer_id = d.id
			WHERE d.depth < $2
		)
		SELECT
			(SELECT COUNT(*) FROM downline WHERE depth = 1),
			(SELECT COUNT(*) FROM downline),
			COALESCE((SELECT SUM(amount) FROM commissions WHERE user_id = $1), 0)`,
		userID, maxDepth,
	).Scan(&stats.DirectReferrals, &stats.Downline, &stats.TotalEarned)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
