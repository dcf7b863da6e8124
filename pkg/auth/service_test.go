package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "dev@example.com",
		Role:  models.RoleUser,
		Plan:  models.PlanStarter,
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	user := testUser()

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if claims.Subject != user.ID.String() {
		t.Errorf("unexpected subject: %q", claims.Subject)
	}
	if claims.Email != user.Email {
		t.Errorf("unexpected email: %q", claims.Email)
	}
	if claims.Role != models.RoleUser || claims.Plan != models.PlanStarter {
		t.Errorf("unexpected role/plan: %q/%q", claims.Role, claims.Plan)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Error("expiry should be in the future")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := NewTokenService("secret-b", time.Hour).Verify(token); err == nil {
		t.Error("token signed with another secret should fail verification")
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := NewTokenService("secret", -time.Minute)
	token, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := svc.Verify(token); err == nil {
		t.Error("expired token should fail verification")
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	if _, err := svc.Verify("not.a.token"); err == nil {
		t.Error("garbage input should fail verification")
	}
}

func TestValidateRequest(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	user := testUser()
	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	r, _ := http.NewRequest(http.MethodGet, "/api/testcases", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	claims, raw, err := svc.ValidateRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != token {
		t.Error("raw token should round-trip")
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("unexpected subject: %q", claims.Subject)
	}
}

func TestValidateRequest_BadHeaders(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _ := svc.Issue(testUser())

	headers := []string{
		"",
		"Basic dXNlcjpwYXNz",
		"bearer " + token,
		token,
	}
	for _, h := range headers {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		if h != "" {
			r.Header.Set("Authorization", h)
		}
		if _, _, err := svc.ValidateRequest(r); err == nil {
			t.Errorf("header %q should be rejected", h)
		}
	}
}
