package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks the registration fields.
func (r *RegisterRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if len(r.Password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the response to a successful register or login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AccountService handles registration, login and token introspection.
type AccountService interface {
	Register(ctx context.Context, req *RegisterRequest) (*Session, error)
	Login(ctx context.Context, req *LoginRequest) (*Session, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type accountService struct {
	userRepo repositories.UserRepository
	tokens   auth.TokenService
	logger   *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(userRepo repositories.UserRepository, tokens auth.TokenService, logger *zap.Logger) AccountService {
	return &accountService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.Named("account"),
	}
}

var _ AccountService = (*accountService)(nil)

// Register creates an account on the free plan and issues a token.
func (s *accountService) Register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account registered", zap.String("user_id", user.ID.String()))

	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error so callers cannot probe for accounts.
func (s *accountService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &Session{Token: token, User: user}, nil
}

// CurrentUser loads the account behind a verified token.
func (s *accountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
