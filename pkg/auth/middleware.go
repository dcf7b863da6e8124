package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates token verification to TokenService.
type Middleware struct {
	tokens TokenService
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given TokenService.
func NewMiddleware(tokens TokenService, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and sets claims and token in
// context for downstream handlers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, token, err := m.tokens.ValidateRequest(r)
		if err != nil {
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole validates the bearer token and requires one of the given roles.
// Viewers are read-only; mutating endpoints require admin or user role.
func (m *Middleware) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, token, err := m.tokens.ValidateRequest(r)
			if err != nil {
				m.unauthorized(w, "Authentication required")
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				m.logger.Warn("Role not permitted for endpoint",
					zap.String("role", claims.Role),
					zap.String("path", r.URL.Path))
				m.forbidden(w, "Insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, TokenKey, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireWriter is RequireRole for the roles allowed to mutate resources.
func (m *Middleware) RequireWriter(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(models.RoleAdmin, models.RoleUser)(next)
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

// forbidden returns a 403 response with JSON error body.
func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "forbidden",
		"message": message,
	})
}
