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

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/services"
	"github.com/testforge-ai/testforge-engine/pkg/testhelpers"
)

type mockGenerationService struct {
	result *services.GenerationResult
	err    error
	calls  int
}

func (m *mockGenerationService) GenerateTestCases(ctx context.Context, userID uuid.UUID, req *services.GenerationRequest) (*services.GenerationResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

var _ services.GenerationService = (*mockGenerationService)(nil)

func newGenerateServer(t *testing.T, svc services.GenerationService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	middleware := auth.NewMiddleware(testhelpers.NewTestTokenService(), zap.NewNop())
	NewGenerateHandler(svc, zap.NewNop()).RegisterRoutes(mux, middleware)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postGenerate(t *testing.T, server *httptest.Server, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/generate-tests", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", testhelpers.BearerToken(token))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGenerate(t *testing.T) {
	svc := &mockGenerationService{
		result: &services.GenerationResult{
			Artifacts: []services.Artifact{{
				TestCaseID: uuid.New(),
				TestType:   models.TestTypeBDD,
				Filename:   "checkout.feature",
				Content:    "Feature: checkout",
			}},
			Usage: models.UsageSummary{Limit: 100, Used: 1, Remaining: 99},
		},
	}
	server := newGenerateServer(t, svc)
	token, _ := testhelpers.IssueTestToken(models.RoleUser)

	resp := postGenerate(t, server, token, `{"input_type":"user_story","input_data":"As a user I can check out","test_types":["bdd"],"language":"javascript"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result services.GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Artifacts) != 1 || result.Artifacts[0].Filename != "checkout.feature" {
		t.Errorf("unexpected artifacts: %+v", result.Artifacts)
	}
	if result.Usage.Remaining != 99 {
		t.Errorf("unexpected usage: %+v", result.Usage)
	}
}

func TestGenerate_RequiresAuth(t *testing.T) {
	svc := &mockGenerationService{}
	server := newGenerateServer(t, svc)

	resp := postGenerate(t, server, "", `{"input_type":"user_story","input_data":"x"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	if svc.calls != 0 {
		t.Error("service should not be called without auth")
	}
}

func TestGenerate_ViewerForbidden(t *testing.T) {
	svc := &mockGenerationService{}
	server := newGenerateServer(t, svc)
	token, _ := testhelpers.IssueTestToken(models.RoleViewer)

	resp := postGenerate(t, server, token, `{"input_type":"user_story","input_data":"x","test_types":["bdd"]}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
	if svc.calls != 0 {
		t.Error("service should not be called for viewers")
	}
}

func TestGenerate_MalformedBody(t *testing.T) {
	server := newGenerateServer(t, &mockGenerationService{})
	token, _ := testhelpers.IssueTestToken(models.RoleUser)

	resp := postGenerate(t, server, token, `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGenerate_InvalidRequest(t *testing.T) {
	svc := &mockGenerationService{err: fmt.Errorf("input_data is required")}
	server := newGenerateServer(t, svc)
	token, _ := testhelpers.IssueTestToken(models.RoleUser)

	resp := postGenerate(t, server, token, `{"input_type":"user_story","input_data":"","test_types":["bdd"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "invalid_request" {
		t.Errorf("unexpected error code: %q", body["error"])
	}
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	svc := &mockGenerationService{err: &services.QuotaError{Limit: 100, Current: 100}}
	server := newGenerateServer(t, svc)
	token, _ := testhelpers.IssueTestToken(models.RoleUser)

	resp := postGenerate(t, server, token, `{"input_type":"user_story","input_data":"valid input","test_types":["bdd"]}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Limit   int    `json:"limit"`
		Current int    `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error != "quota_exceeded" {
		t.Errorf("unexpected error code: %q", body.Error)
	}
	if body.Limit != 100 || body.Current != 100 {
		t.Errorf("expected limit and current figures, got %+v", body)
	}
	if body.Message == "" {
		t.Error("expected a human readable message")
	}
}

func TestGenerate_InternalError(t *testing.T) {
	svc := &mockGenerationService{err: fmt.Errorf("store unavailable")}
	server := newGenerateServer(t, svc)
	token, _ := testhelpers.IssueTestToken(models.RoleUser)

	// Request is valid so a non-quota failure maps to 500.
	resp := postGenerate(t, server, token, `{"input_type":"user_story","input_data":"valid input","test_types":["bdd"]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}
