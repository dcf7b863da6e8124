package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/services"
	"github.com/testforge-ai/testforge-engine/pkg/testhelpers"
)

type mockAccountService struct {
	session *services.Session
	user    *models.User
	err     error
}

func (m *mockAccountService) Register(ctx context.Context, req *services.RegisterRequest) (*services.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAccountService) Login(ctx context.Context, req *services.LoginRequest) (*services.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAccountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

var _ services.AccountService = (*mockAccountService)(nil)

func newAuthServer(t *testing.T, svc services.AccountService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	middleware := auth.NewMiddleware(testhelpers.NewTestTokenService(), zap.NewNop())
	NewAuthHandler(svc, zap.NewNop()).RegisterRoutes(mux, middleware)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "dev@example.com", Plan: models.PlanFree}
	server := newAuthServer(t, &mockAccountService{session: &services.Session{Token: "tok", User: user}})

	resp := postJSON(t, server.URL+"/api/auth/register", `{"email":"dev@example.com","password":"super-secret-1","name":"Dev"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var session services.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if session.Token != "tok" || session.User.Email != "dev@example.com" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestRegisterEndpoint_EmailTaken(t *testing.T) {
	server := newAuthServer(t, &mockAccountService{err: apperrors.ErrEmailTaken})

	resp := postJSON(t, server.URL+"/api/auth/register", `{"email":"dup@example.com","password":"super-secret-1","name":"Dev"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "email_taken" {
		t.Errorf("unexpected error code: %q", body["error"])
	}
}

func TestRegisterEndpoint_ValidationError(t *testing.T) {
	server := newAuthServer(t, &mockAccountService{err: fmt.Errorf("email is invalid")})

	resp := postJSON(t, server.URL+"/api/auth/register", `{"email":"bad","password":"super-secret-1","name":"Dev"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	server := newAuthServer(t, &mockAccountService{err: apperrors.ErrInvalidCredentials})

	resp := postJSON(t, server.URL+"/api/auth/login", `{"email":"dev@example.com","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "invalid_credentials" {
		t.Errorf("unexpected error code: %q", body["error"])
	}
}

func TestVerifyEndpoint(t *testing.T) {
	token, user := testhelpers.IssueTestToken(models.RoleUser)
	server := newAuthServer(t, &mockAccountService{user: user})

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/auth/verify", nil)
	req.Header.Set("Authorization", testhelpers.BearerToken(token))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got models.User
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestVerifyEndpoint_NoToken(t *testing.T) {
	server := newAuthServer(t, &mockAccountService{})

	resp, err := http.Get(server.URL + "/api/auth/verify")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}
