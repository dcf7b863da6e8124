package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/crypto"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// UpdateSettingsRequest is the payload for PUT /api/settings. Pointer
// fields distinguish "not sent" from zero values so partial updates work.
type UpdateSettingsRequest struct {
	DisplayName        *string `json:"display_name,omitempty"`
	NotifyEmail        *bool   `json:"notify_email,omitempty"`
	NotifySlack        *bool   `json:"notify_slack,omitempty"`
	SlackWebhook       *string `json:"slack_webhook,omitempty"`
	DefaultLanguage    *string `json:"default_language,omitempty"`
	DefaultEnvironment *string `json:"default_environment,omitempty"`
}

// ChangePasswordRequest is the payload for PUT /api/settings/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TwoFactorSetup is returned when 2FA is enabled. Secret is the base32
// seed for manual entry; OTPAuthURL feeds QR-code generators.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// SettingsService manages user preferences and account security.
type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Update(ctx context.Context, userID uuid.UUID, req *UpdateSettingsRequest) (*models.UserSettings, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error
	EnableTwoFactor(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error)
	DisableTwoFactor(ctx context.Context, userID uuid.UUID) error
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	userRepo     repositories.UserRepository
	encryptor    *crypto.SecretEncryptor
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(
	settingsRepo repositories.SettingsRepository,
	userRepo repositories.UserRepository,
	encryptor *crypto.SecretEncryptor,
	logger *zap.Logger,
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		userRepo:     userRepo,
		encryptor:    encryptor,
		logger:       logger.Named("settings"),
	}
}

var _ SettingsService = (*settingsService)(nil)

// Get returns the user's settings, defaults included.
func (s *settingsService) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	return s.settingsRepo.Get(ctx, userID)
}

// Update applies the provided fields on top of the current settings.
func (s *settingsService) Update(ctx context.Context, userID uuid.UUID, req *UpdateSettingsRequest) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		settings.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.NotifyEmail != nil {
		settings.NotifyEmail = *req.NotifyEmail
	}
	if req.NotifySlack != nil {
		settings.NotifySlack = *req.NotifySlack
	}
	if req.SlackWebhook != nil {
		webhook := strings.TrimSpace(*req.SlackWebhook)
		if webhook != "" {
			if _, err := url.ParseRequestURI(webhook); err != nil {
				return nil, fmt.Errorf("slack_webhook must be a valid URL")
			}
		}
		settings.SlackWebhook = webhook
	}
	if req.DefaultLanguage != nil {
		settings.DefaultLanguage = strings.ToLower(strings.TrimSpace(*req.DefaultLanguage))
	}
	if req.DefaultEnvironment != nil {
		settings.DefaultEnvironment = strings.TrimSpace(*req.DefaultEnvironment)
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ChangePassword verifies the current credential before replacing it.
func (s *settingsService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if len(req.NewPassword) < auth.MinPasswordLength {
		return fmt.Errorf("new password must be at least %d characters", auth.MinPasswordLength)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// EnableTwoFactor generates a TOTP seed, stores it encrypted, and returns
// the setup material. The plaintext seed is only ever returned here.
func (s *settingsService) EnableTwoFactor(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, apperrors.ErrConflict
	}

	secret, err := crypto.NewTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate 2FA secret: %w", err)
	}

	encrypted, err := s.encryptor.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt 2FA secret: %w", err)
	}

	if err := s.userRepo.UpdateTOTP(ctx, userID, encrypted, true); err != nil {
		return nil, err
	}

	s.logger.Info("Two-factor enabled", zap.String("user_id", userID.String()))

	return &TwoFactorSetup{
		Secret:     secret,
		OTPAuthURL: otpauthURL(user.Email, secret),
	}, nil
}

// DisableTwoFactor clears the stored seed.
func (s *settingsService) DisableTwoFactor(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled {
		return apperrors.ErrConflict
	}

	if err := s.userRepo.UpdateTOTP(ctx, userID, "", false); err != nil {
		return err
	}

	s.logger.Info("Two-factor disabled", zap.String("user_id", userID.String()))
	return nil
}

func otpauthURL(email, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", "TestForge")
	return fmt.Sprintf("otpauth://totp/TestForge:%s?%s", url.PathEscape(email), v.Encode())
}
