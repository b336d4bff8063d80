package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"sales_dashboard/internal/commission"
	"sales_dashboard/internal/db"
	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"
	"sales_dashboard/internal/repository"
	"sales_dashboard/internal/service"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type seedUser struct {
	key      string
	name     string
	email    string
	level    int
	referrer string
}

// Referrers come before the users that point at them.
var seedUsers = []seedUser{
	{key: "carlos", name: "Carlos", email: "carlos@example.com", level: domain.LevelDirector},
	{key: "ana", name: "Ana", email: "ana@example.com", level: domain.LevelManager, referrer: "carlos"},
	{key: "pedro", name: "Pedro", email: "pedro@example.com", level: domain.LevelManager, referrer: "carlos"},
	{key: "luis", name: "Luis", email: "luis@example.com", level: domain.LevelSeller, referrer: "ana"},
	{key: "sofia", name: "Sofía", email: "sofia@example.com", level: domain.LevelSeller, referrer: "ana"},
	{key: "diego", name: "Diego", email: "diego@example.com", level: domain.LevelSeller, referrer: "pedro"},
}

var seedSales = []struct {
	seller string
	amount string
}{
	{"luis", "1000.00"},
	{"luis", "500.00"},
}

func main() {
	password := flag.String("password", "123456", "password for every seeded user")
	withSales := flag.Bool("sales", true, "record sample sales for newly seeded sellers")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := db.Connect(dsn)
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	audit := service.NewAuditService(repository.NewAuditRepository(pool))
	affiliates := service.NewAffiliateService(users, repository.NewReferralRepository(pool), audit)
	sales := service.NewSaleService(pool, users, repository.NewSaleRepository(pool), repository.NewCommissionRepository(pool),
		commission.NewEngine(commission.DefaultRates()), audit)

	ids := make(map[string]string, len(seedUsers))
	created := make(map[string]bool, len(seedUsers))
	for _, su := range seedUsers {
		u, isNew, err := ensureUser(ctx, affiliates, users, su, ids[su.referrer], *password)
		if err != nil {
			logger.Fatal("seed user failed", "email", su.email, "error", err)
		}
		ids[su.key] = u.ID.String()
		created[su.key] = isNew
		logger.Info("seeded user", "name", u.Name, "level", u.Level, "id", u.ID, "created", isNew)
	}

	if !*withSales {
		return
	}
	for _, s := range seedSales {
		if !created[s.seller] {
			continue
		}
		res, err := sales.CreateSale(ctx, service.CreateSaleInput{
			SellerID: ids[s.seller],
			Amount:   decimal.RequireFromString(s.amount),
		})
		if err != nil {
			logger.Fatal("seed sale failed", "seller", s.seller, "error", err)
		}
		logger.Info("seeded sale", "sale_id", res.Sale.ID, "amount", res.Sale.Amount.StringFixed(2),
			"commissions", res.Summary.CommissionsCount, "total_commissions", res.Summary.TotalCommissions.StringFixed(2))
	}
}

func ensureUser(ctx context.Context, affiliates *service.AffiliateService, users *repository.UserRepository, su seedUser, referrerID, password string) (*domain.User, bool, error) {
	u, err := affiliates.Create(ctx, service.CreateAffiliateInput{
		Name:       su.name,
		Email:      su.email,
		Password:   password,
		Level:      su.level,
		ReferrerID: referrerID,
	})
	if err == nil {
		return u, true, nil
	}
	if domain.KindOf(err) != domain.KindConflict {
		return nil, false, err
	}

	existing, err := users.GetByEmail(ctx, su.email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, errors.New("user reported as duplicate but not found")
		}
		return nil, false, err
	}
	return existing, false, nil
}
