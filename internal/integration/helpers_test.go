package integration

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"sales_dashboard/internal/db"
	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// openPool connects to DATABASE_URL and applies migrations, or skips.
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.NewPool(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applyMigrations(t, pool)
	return pool
}

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	entries, err := os.ReadDir(migDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		require.NoError(t, err)
		_, err = pool.Exec(context.Background(), string(b))
		require.NoError(t, err, "apply migration %s", name)
	}
}

type tree struct {
	director, manager, seller *domain.User
}

// seedTree creates a director -> manager -> seller chain with unique emails.
func seedTree(t *testing.T, users *repository.UserRepository) tree {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)

	mk := func(name string, level int, referrer *domain.User) *domain.User {
		u := &domain.User{
			Name:         name,
			Email:        name + "-" + uuid.NewString() + "@example.com",
			PasswordHash: string(hash),
			Level:        level,
		}
		if referrer != nil {
			u.ReferrerID = &referrer.ID
		}
		require.NoError(t, users.Create(context.Background(), u))
		return u
	}

	d := mk("carlos", domain.LevelDirector, nil)
	m := mk("ana", domain.LevelManager, d)
	s := mk("luis", domain.LevelSeller, m)
	return tree{director: d, manager: m, seller: s}
}

func countSalesBySeller(t *testing.T, pool *pgxpool.Pool, sellerID uuid.UUID) (sales, commissions int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE seller_id = $1`, sellerID).Scan(&sales))
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM commissions c JOIN sales s ON s.id = c.sale_id WHERE s.seller_id = $1
	`, sellerID).Scan(&commissions))
	return sales, commissions
}
