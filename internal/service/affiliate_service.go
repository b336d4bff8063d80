package service

import (
	"context"
	"errors"
	"strings"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"
	"sales_dashboard/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AffiliateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	ListAffiliates(ctx context.Context) ([]domain.AffiliateView, error)
	ListByLevel(ctx context.Context, level int) ([]domain.User, error)
}

type ReferralStore interface {
	DirectReferrals(ctx context.Context, userID uuid.UUID) ([]domain.Referral, error)
	ReferralStats(ctx context.Context, userID uuid.UUID, maxDepth int) (*domain.ReferralStats, error)
}

const maxPasswordBytes = 72

type CreateAffiliateInput struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Level      int    `json:"level" validate:"required,min=1,max=3"`
	ReferrerID string `json:"referrer_id" validate:"omitempty,uuid"`

	Request RequestInfo `json:"-"`
}

// AffiliateService onboards affiliates and serves affiliate listings.
type AffiliateService struct {
	users      AffiliateStore
	referrals  ReferralStore
	audit      *AuditService
	bcryptCost int
}

func NewAffiliateService(users AffiliateStore, referrals ReferralStore, audit *AuditService) *AffiliateService {
	return &AffiliateService{users: users, referrals: referrals, audit: audit, bcryptCost: bcrypt.DefaultCost}
}

// Create registers a new affiliate. A referrer, when given, must sit exactly
// one level above the new affiliate; directors take no referrer.
func (s *AffiliateService) Create(ctx context.Context, in CreateAffiliateInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.ReferrerID = strings.TrimSpace(in.ReferrerID)

	fields := validateStruct(in)
	// validator's max counts runes; bcrypt caps the input in bytes.
	if len(in.Password) > maxPasswordBytes {
		fields.Add("password", "must be at most 72 bytes")
	}
	if !fields.Empty() {
		return nil, domain.ValidationError("invalid affiliate", fields)
	}

	var referrerID *uuid.UUID
	if in.ReferrerID != "" {
		id, err := parseID("referrer_id", in.ReferrerID)
		if err != nil {
			return nil, err
		}
		referrerID = &id
	}

	if err := s.checkReferrer(ctx, in.Level, referrerID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		logger.WithContext(ctx).Error("failed to hash password", "error", err)
		return nil, domain.PersistenceError("failed to create affiliate", err)
	}

	u := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Level:        in.Level,
		ReferrerID:   referrerID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ConflictError("a user with that email already exists", err)
		}
		logger.WithContext(ctx).Error("failed to create affiliate", "error", err, "email", in.Email, "level", in.Level)
		return nil, domain.PersistenceError("failed to create affiliate", err)
	}

	logger.WithContext(ctx).Info("affiliate created", "user_id", u.ID, "level", u.Level)
	s.audit.LogWithRequest(ctx, &u.ID, domain.AuditActionAffiliateCreate, domain.AuditCategoryAffiliate, in.Request, map[string]interface{}{
		"level":       u.Level,
		"referrer_id": in.ReferrerID,
	})
	return u, nil
}

func (s *AffiliateService) checkReferrer(ctx context.Context, level int, referrerID *uuid.UUID) error {
	wantLevel, canHaveReferrer := domain.ReferrerLevel(level)
	if referrerID == nil {
		return nil
	}
	if !canHaveReferrer {
		return domain.ValidationError("invalid affiliate", map[string][]string{
			"referrer_id": {"level 3 affiliates cannot have a referrer"},
		})
	}

	referrer, err := s.users.GetByID(ctx, *referrerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFoundError("referrer not found")
		}
		logger.WithContext(ctx).Error("failed to load referrer", "error", err, "referrer_id", referrerID)
		return domain.PersistenceError("failed to create affiliate", err)
	}
	if referrer.Level != wantLevel {
		return domain.ValidationError("invalid affiliate", map[string][]string{
			"referrer_id": {"referrer must be a level " + levelLabel(wantLevel) + " affiliate"},
		})
	}
	return nil
}

// Get returns one affiliate.
func (s *AffiliateService) Get(ctx context.Context, id string) (*domain.User, error) {
	userID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("affiliate not found")
		}
		logger.WithContext(ctx).Error("failed to load affiliate", "error", err, "user_id", userID)
		return nil, domain.PersistenceError("failed to load affiliate", err)
	}
	return u, nil
}

// Referrals returns who an affiliate referred and the size of its downline.
func (s *AffiliateService) Referrals(ctx context.Context, id string) (*domain.ReferralSummary, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.referrals.DirectReferrals(ctx, u.ID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list referrals", "error", err, "user_id", u.ID)
		return nil, domain.PersistenceError("failed to load referrals", err)
	}
	stats, err := s.referrals.ReferralStats(ctx, u.ID, domain.MaxLevel-1)
	if err != nil {
		logger.WithContext(ctx).Error("failed to load referral stats", "error", err, "user_id", u.ID)
		return nil, domain.PersistenceError("failed to load referrals", err)
	}
	if refs == nil {
		refs = []domain.Referral{}
	}
	return &domain.ReferralSummary{Stats: *stats, Referrals: refs}, nil
}

// List returns all affiliates, directors first.
func (s *AffiliateService) List(ctx context.Context) ([]domain.AffiliateView, error) {
	list, err := s.users.ListAffiliates(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list affiliates", "error", err)
		return nil, domain.PersistenceError("failed to list affiliates", err)
	}
	if list == nil {
		list = []domain.AffiliateView{}
	}
	return list, nil
}

// Sellers returns the level 1 affiliates, the only ones who record sales in the dashboard.
func (s *AffiliateService) Sellers(ctx context.Context) ([]domain.User, error) {
	return s.byLevel(ctx, domain.LevelSeller)
}

// PotentialReferrers lists who may refer a new affiliate at level. Directors get none.
func (s *AffiliateService) PotentialReferrers(ctx context.Context, level int) ([]domain.User, error) {
	if !domain.ValidLevel(level) {
		return nil, domain.ValidationError("invalid level", map[string][]string{
			"level": {"must be 1, 2 or 3"},
		})
	}
	referrerLevel, ok := domain.ReferrerLevel(level)
	if !ok {
		return []domain.User{}, nil
	}
	return s.byLevel(ctx, referrerLevel)
}

func (s *AffiliateService) byLevel(ctx context.Context, level int) ([]domain.User, error) {
	users, err := s.users.ListByLevel(ctx, level)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list affiliates by level", "error", err, "level", level)
		return nil, domain.PersistenceError("failed to list affiliates", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
