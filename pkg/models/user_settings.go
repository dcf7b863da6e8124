package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSettings holds per-user preferences for the dashboard.
type UserSettings struct {
	UserID             uuid.UUID `json:"user_id"`
	DisplayName        string    `json:"display_name"`
	NotifyEmail        bool      `json:"notify_email"`
	NotifySlack        bool      `json:"notify_slack"`
	SlackWebhook       string    `json:"slack_webhook,omitempty"`
	DefaultLanguage    string    `json:"default_language"`
	DefaultEnvironment string    `json:"default_environment"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings row created on first access.
func DefaultSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		NotifyEmail:        true,
		DefaultLanguage:    "javascript",
		DefaultEnvironment: "staging",
	}
}
