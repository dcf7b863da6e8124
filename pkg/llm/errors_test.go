package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError_Quota(t *testing.T) {
	cases := []string{
		"status code 429: too many requests",
		"rate limit reached for gpt-4o",
		"insufficient_quota: you exceeded your current quota",
		"overloaded_error: Anthropic is overloaded",
	}
	for _, msg := range cases {
		result := ClassifyError(errors.New(msg))
		if result.Type != ErrorTypeQuota {
			t.Errorf("ClassifyError(%q).Type = %s, want %s", msg, result.Type, ErrorTypeQuota)
		}
	}
}

func TestClassifyError_Auth(t *testing.T) {
	result := ClassifyError(errors.New("401 Unauthorized: invalid api key"))
	if result.Type != ErrorTypeAuth {
		t.Errorf("expected auth error, got %s", result.Type)
	}
	if result.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", result.StatusCode)
	}
}

func TestClassifyError_ModelNotFound(t *testing.T) {
	result := ClassifyError(errors.New("the model `gpt-99` does not exist"))
	if result.Type != ErrorTypeModel {
		t.Errorf("expected model error, got %s", result.Type)
	}
}

func TestClassifyError_Endpoint(t *testing.T) {
	cases := []string{
		"dial tcp 127.0.0.1:11434: connection refused",
		"context deadline exceeded",
		"status code 503: service unavailable",
	}
	for _, msg := range cases {
		result := ClassifyError(errors.New(msg))
		if result.Type != ErrorTypeEndpoint {
			t.Errorf("ClassifyError(%q).Type = %s, want %s", msg, result.Type, ErrorTypeEndpoint)
		}
	}
}

func TestClassifyError_Unknown(t *testing.T) {
	result := ClassifyError(errors.New("something odd happened"))
	if result.Type != ErrorTypeUnknown {
		t.Errorf("expected unknown error, got %s", result.Type)
	}
}

func TestClassifyError_PreservesExistingError(t *testing.T) {
	original := NewError(ErrorTypeQuota, "quota exceeded", nil)
	wrapped := fmt.Errorf("call failed: %w", original)

	result := ClassifyError(wrapped)
	if result != original {
		t.Error("expected the original *Error to be returned")
	}
}

func TestIsQuotaError(t *testing.T) {
	if !IsQuotaError(errors.New("rate limit exceeded")) {
		t.Error("expected rate limit to be a quota error")
	}
	if IsQuotaError(errors.New("connection refused")) {
		t.Error("connection failure should not be a quota error")
	}
	if IsQuotaError(nil) {
		t.Error("nil should not be a quota error")
	}
}
