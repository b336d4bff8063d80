package service

import (
	"context"
	"errors"
	"strings"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type credentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	Request RequestInfo `json:"-"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService checks email/password credentials and issues session tokens.
type AuthService struct {
	users credentialStore
	jwt   *JWTManager
	audit *AuditService
}

func NewAuthService(users credentialStore, jwt *JWTManager, audit *AuditService) *AuthService {
	return &AuthService{users: users, jwt: jwt, audit: audit}
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if fields := validateStruct(in); !fields.Empty() {
		return nil, domain.ValidationError("invalid credentials", fields)
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.audit.LogWithRequest(ctx, nil, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, in.Request, map[string]interface{}{"email": in.Email})
			return nil, domain.UnauthorizedError("invalid email or password")
		}
		logger.WithContext(ctx).Error("failed to load user for login", "error", err)
		return nil, domain.PersistenceError("failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		s.audit.LogWithRequest(ctx, &u.ID, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, in.Request, nil)
		return nil, domain.UnauthorizedError("invalid email or password")
	}

	token, err := s.jwt.Generate(u.ID, u.Level)
	if err != nil {
		logger.WithContext(ctx).Error("token generation failed", "error", err, "user_id", u.ID)
		return nil, domain.PersistenceError("failed to log in", err)
	}

	s.audit.LogWithRequest(ctx, &u.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, in.Request, nil)
	return &LoginResult{Token: token, User: u}, nil
}

// Authenticate resolves a bearer token to its claims.
func (s *AuthService) Authenticate(token string) (*Claims, error) {
	return s.jwt.Parse(token)
}

// UserIDFromToken is Authenticate for callers that only need the user.
func (s *AuthService) UserIDFromToken(token string) (uuid.UUID, error) {
	c, err := s.jwt.Parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	return c.UserID, nil
}
