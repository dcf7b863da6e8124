package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// TokenService issues and verifies bearer tokens.
// Verification fails closed: any signature or expiry problem yields an error
// and no claims.
type TokenService interface {
	// Issue signs a token for the given user with the configured TTL.
	Issue(user *models.User) (string, error)

	// Verify parses and validates a token string, returning its claims.
	Verify(tokenString string) (*Claims, error)

	// ValidateRequest extracts and verifies the bearer token from a request.
	ValidateRequest(r *http.Request) (*Claims, string, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with the given HS256 secret.
func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl}
}

var _ TokenService = (*tokenService)(nil)

// Issue signs a token carrying {sub, email, role, plan} with an expiry.
func (s *tokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: user.Email,
		Role:  user.Role,
		Plan:  user.Plan,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, rejecting unexpected signing methods.
func (s *tokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ValidateRequest extracts the bearer token from the Authorization header
// and verifies it.
func (s *tokenService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "", fmt.Errorf("missing Authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, "", fmt.Errorf("malformed Authorization header")
	}

	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, "", err
	}

	return claims, tokenString, nil
}
