package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies LLM failures.
type ErrorType string

const (
	// ErrorTypeQuota covers provider rate limits and exhausted quotas.
	ErrorTypeQuota ErrorType = "quota"
	// ErrorTypeAuth covers invalid or missing API keys.
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeModel covers unknown or unavailable models.
	ErrorTypeModel ErrorType = "model"
	// ErrorTypeEndpoint covers connection, timeout and server-side failures.
	ErrorTypeEndpoint ErrorType = "endpoint"
	// ErrorTypeUnknown is everything else.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured LLM error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// This consolidates error classification logic for consistent handling.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	// Extract HTTP status code from error string
	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	// Rate limiting and exhausted quota
	if strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") || strings.Contains(lower, "quota") ||
		strings.Contains(lower, "overloaded") {
		llmErr := NewError(ErrorTypeQuota, "quota or rate limit exceeded", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	// Authentication errors
	if strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication") {
		llmErr := NewError(ErrorTypeAuth, "authentication failed", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	// Model not found
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		llmErr := NewError(ErrorTypeModel, "model not found", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	// Endpoint not found
	if strings.Contains(errStr, "404") {
		llmErr := NewError(ErrorTypeEndpoint, "endpoint not found", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	// Connection errors
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		llmErr := NewError(ErrorTypeEndpoint, "connection failed", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	// Timeout and deadline exceeded
	if strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled") {
		llmErr := NewError(ErrorTypeEndpoint, "request timeout", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	// 5xx server errors
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		llmErr := NewError(ErrorTypeEndpoint, "server error", err)
		llmErr.StatusCode = statusCode
		return llmErr
	}

	llmErr = NewError(ErrorTypeUnknown, "llm error", err)
	llmErr.StatusCode = statusCode
	return llmErr
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}

// IsQuotaError reports whether the error is a provider quota or rate-limit
// failure. The generation pipeline uses this to pick the quota fallback
// template instead of the generic one.
func IsQuotaError(err error) bool {
	return GetErrorType(err) == ErrorTypeQuota
}
