package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Sale struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	SellerID  uuid.UUID       `db:"seller_id" json:"seller_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// SaleView is a sale joined with its seller for listings.
type SaleView struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	SellerID    uuid.UUID       `json:"seller_id"`
	SellerName  string          `json:"seller_name"`
	SellerEmail string          `json:"seller_email"`
	SellerLevel int             `json:"seller_level"`
}

type SaleSummary struct {
	TotalSale        decimal.Decimal `json:"total_sale"`
	TotalCommissions decimal.Decimal `json:"total_commissions"`
	CommissionsCount int             `json:"commissions_count"`
}

// SaleResult is what recording a sale returns: the sale, its commission breakdown and totals.
type SaleResult struct {
	Sale        *Sale        `json:"sale"`
	Commissions []Commission `json:"commissions"`
	Summary     SaleSummary  `json:"summary"`
}

// SalePage is one page of a sales listing.
type SalePage struct {
	Sales      []SaleView `json:"sales"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
