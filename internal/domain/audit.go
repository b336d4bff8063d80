package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    *uuid.UUID             `db:"user_id" json:"user_id,omitempty"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth      = "auth"
	AuditCategorySale      = "sale"
	AuditCategoryAffiliate = "affiliate"
)

// Audit actions
const (
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"

	AuditActionSaleCreate = "sale_create"
	AuditActionSaleDelete = "sale_delete"

	AuditActionAffiliateCreate = "affiliate_create"
)
