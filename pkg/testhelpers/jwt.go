package testhelpers

import (
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// TestJWTSecret is the signing secret used by test token services.
const TestJWTSecret = "test-secret-not-for-production"

// NewTestTokenService returns a TokenService signing with TestJWTSecret.
func NewTestTokenService() auth.TokenService {
	return auth.NewTokenService(TestJWTSecret, time.Hour)
}

// IssueTestToken signs a token for a synthetic user with the given role.
// Returns the token and the user it was issued for.
func IssueTestToken(role string) (string, *models.User) {
	user := &models.User{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  "Test User",
		Role:  role,
		Plan:  models.PlanFree,
	}

	token, err := NewTestTokenService().Issue(user)
	if err != nil {
		panic(err)
	}
	return token, user
}

// BearerToken returns the token with the "Bearer " prefix for the
// Authorization header.
func BearerToken(token string) string {
	return "Bearer " + token
}
