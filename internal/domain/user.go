package domain

import (
	"time"

	"github.com/google/uuid"
)

// Affiliate tiers. A user at level N may only be referred by a user at level N+1.
const (
	LevelSeller   = 1
	LevelManager  = 2
	LevelDirector = 3

	MaxLevel = LevelDirector
)

type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Level        int        `db:"level" json:"level"`
	ReferrerID   *uuid.UUID `db:"referrer_id" json:"referrer_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ValidLevel reports whether level is one of the three affiliate tiers.
func ValidLevel(level int) bool {
	return level >= LevelSeller && level <= MaxLevel
}

// ReferrerLevel returns the level a referrer of a user at level must have.
// ok is false for directors, who have no referrer.
func ReferrerLevel(level int) (int, bool) {
	if !ValidLevel(level) || level == MaxLevel {
		return 0, false
	}
	return level + 1, true
}

// LevelName is the dashboard label of a tier.
func LevelName(level int) string {
	switch level {
	case LevelSeller:
		return "seller"
	case LevelManager:
		return "manager"
	case LevelDirector:
		return "director"
	default:
		return "unknown"
	}
}

// AffiliateView is a user row joined with its referrer's name.
type AffiliateView struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Level        int        `json:"level"`
	ReferrerID   *uuid.UUID `json:"referrer_id,omitempty"`
	ReferrerName *string    `json:"referrer_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ChainNode is one step of a user's referral ancestry. Depth 1 is the user itself.
type ChainNode struct {
	ID         uuid.UUID  `db:"id"`
	ReferrerID *uuid.UUID `db:"referrer_id"`
	Level      int        `db:"level"`
	Depth      int        `db:"depth"`
	Name       string     `db:"name"`
}
