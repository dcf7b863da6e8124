package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/testforge-ai/testforge-engine/pkg/database"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// SettingsRepository defines the interface for user settings data access.
type SettingsRepository interface {
	// Get returns the user's settings, creating the default row on first access.
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Upsert(ctx context.Context, settings *models.UserSettings) error
}

type settingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *database.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns settings for the user, falling back to defaults when no row exists.
func (r *settingsRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	query := `
		SELECT user_id, display_name, notify_email, notify_slack, slack_webhook, default_language, default_environment, updated_at
		FROM user_settings
		WHERE user_id = $1`

	var s models.UserSettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.DisplayName,
		&s.NotifyEmail,
		&s.NotifySlack,
		&s.SlackWebhook,
		&s.DefaultLanguage,
		&s.DefaultEnvironment,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultSettings(userID), nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &s, nil
}

// Upsert saves settings, inserting the row on first write.
func (r *settingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	settings.UpdatedAt = time.Now()

	query := `
		INSERT INTO user_settings (user_id, display_name, notify_email, notify_slack, slack_webhook, default_language, default_environment, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    notify_email = EXCLUDED.notify_email,
		    notify_slack = EXCLUDED.notify_slack,
		    slack_webhook = EXCLUDED.slack_webhook,
		    default_language = EXCLUDED.default_language,
		    default_environment = EXCLUDED.default_environment,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		settings.UserID,
		settings.DisplayName,
		settings.NotifyEmail,
		settings.NotifySlack,
		settings.SlackWebhook,
		settings.DefaultLanguage,
		settings.DefaultEnvironment,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}
