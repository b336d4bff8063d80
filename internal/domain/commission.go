package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Commission struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	SaleID     uuid.UUID       `db:"sale_id" json:"sale_id"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	UserName   string          `db:"user_name" json:"user_name"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Percentage decimal.Decimal `db:"percentage" json:"percentage"`
	Level      int             `db:"level" json:"level"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// LevelTotal aggregates commissions for one depth.
type LevelTotal struct {
	Level int             `json:"level"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// MonthTotal aggregates commissions for one calendar month.
type MonthTotal struct {
	Month time.Time       `json:"month"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// AffiliateEarnings is an affiliate with its sales count and earned commissions.
type AffiliateEarnings struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Level            int             `json:"level"`
	ReferrerName     *string         `json:"referrer_name,omitempty"`
	TotalSales       int64           `json:"total_sales"`
	TotalCommissions decimal.Decimal `json:"total_commissions"`
}

// DashboardSummary backs the overview cards.
type DashboardSummary struct {
	NumberOfSales          int64           `json:"number_of_sales"`
	TotalCommissionsAmount decimal.Decimal `json:"total_commissions_amount"`
	NumberOfAffiliates     int64           `json:"number_of_affiliates"`
}
