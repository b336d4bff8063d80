package service

import (
	"context"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"

	"github.com/google/uuid"
)

type auditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// AuditService handles audit logging. Failures are logged and never returned;
// a nil *AuditService is a no-op.
type AuditService struct {
	repo auditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo auditStore) *AuditService {
	return &AuditService{repo: repo}
}

// RequestInfo is the caller metadata attached to audit entries.
type RequestInfo struct {
	IP        string
	UserAgent string
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID *uuid.UUID, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, RequestInfo{}, details)
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID *uuid.UUID, action, category string, req RequestInfo, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}

	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}
