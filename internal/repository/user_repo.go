package repository

import (
	"context"

	"sales_dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, level, referrer_id, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Level,
		&u.ReferrerID,
		&u.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// Create inserts u and fills its ID and CreatedAt.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, level, referrer_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Level, u.ReferrerID,
	).Scan(&u.ID, &u.CreatedAt)
}

// AncestorChain walks the referrer links upward from userID in one statement.
// The first node is the user itself at depth 1; the walk stops at a user
// without a referrer or at maxDepth. Passing a pgx.Tx as q makes the read part
// of that transaction.
func (r *UserRepository) AncestorChain(ctx context.Context, q Querier, userID uuid.UUID, maxDepth int) ([]domain.ChainNode, error) {
	if q == nil {
		q = r.db
	}

	rows, err := q.Query(ctx, `
		WITH RECURSIVE referral_chain AS (
			SELECT id, referrer_id, level, name, 1 AS depth
			FROM users
			WHERE id = $1

			UNION ALL

			SELECT u.id, u.referrer_id, u.level, u.name, rc.depth + 1
			FROM users u
			JOIN referral_chain rc ON u.id = rc.referrer_id
			WHERE rc.depth < $2
		)
		SELECT id, referrer_id, level, name, depth
		FROM referral_chain
		ORDER BY depth`,
		userID, maxDepth,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chain []domain.ChainNode
	for rows.Next() {
		var n domain.ChainNode
		if err := rows.Scan(&n.ID, &n.ReferrerID, &n.Level, &n.Name, &n.Depth); err != nil {
			return nil, err
		}
		chain = append(chain, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, domain.ErrNotFound
	}
	return chain, nil
}

// ListAffiliates returns every user with its referrer's name, directors first.
func (r *UserRepository) ListAffiliates(ctx context.Context) ([]domain.AffiliateView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.name, u.email, u.level, u.referrer_id, r.name, u.created_at
		FROM users u
		LEFT JOIN users r ON u.referrer_id = r.id
		ORDER BY u.level DESC, u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.AffiliateView
	for rows.Next() {
		var a domain.AffiliateView
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Level, &a.ReferrerID, &a.ReferrerName, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// ListByLevel returns the users of one tier ordered by name.
func (r *UserRepository) ListByLevel(ctx context.Context, level int) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE level = $1 ORDER BY name ASC`, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}
