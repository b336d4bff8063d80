package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral is an affiliate directly referred by another one.
type Referral struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Level           int       `json:"level"`
	DirectReferrals int64     `json:"direct_referrals"`
	CreatedAt       time.Time `json:"created_at"`
}

type ReferralStats struct {
	DirectReferrals int64           `json:"direct_referrals"`
	Downline        int64           `json:"downline"`
	TotalEarned     decimal.Decimal `json:"total_earned"`
}

// ReferralSummary is an affiliate's referral network.
type ReferralSummary struct {
	Stats     ReferralStats `json:"stats"`
	Referrals []Referral    `json:"referrals"`
}
