// Package models contains domain types for testforge-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // 'admin', 'user', 'viewer'
	Plan         string    `json:"plan"`
	TOTPSecret   string    `json:"-"` // AES-GCM encrypted, empty when 2FA disabled
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role constants for account roles.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleUser, RoleViewer}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
