// Package auth provides JWT-based authentication for testforge-engine.
// Tokens are issued and verified locally with an HS256 signing secret.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims issued at login/registration.
// It embeds RegisteredClaims for standard JWT fields (sub, exp, iat)
// and adds the account context the dashboard needs on every request.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Plan  string `json:"plan,omitempty"`
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// UserIDFromContext extracts the authenticated user ID from JWT claims in context.
// Returns an error if not authenticated or the subject is malformed.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	return userID, nil
}
