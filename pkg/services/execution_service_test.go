package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

func executionFixture(t *testing.T) (ExecutionService, *fakeExecutionRepo, *models.TestCase, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	testCaseRepo := &fakeTestCaseRepo{}
	tc := &models.TestCase{
		UserID:   userID,
		Name:     "login-unit-test.js",
		TestType: models.TestTypeUnit,
		Language: "javascript",
		Content:  "test('ok', () => {});",
	}
	if err := testCaseRepo.Create(context.Background(), tc); err != nil {
		t.Fatalf("failed to seed test case: %v", err)
	}

	executionRepo := &fakeExecutionRepo{}
	svc := NewExecutionService(executionRepo, testCaseRepo, zap.NewNop())
	return svc, executionRepo, tc, userID
}

func TestExecute_RecordsSimulatedRun(t *testing.T) {
	svc, executionRepo, tc, userID := executionFixture(t)

	exec, err := svc.Execute(context.Background(), userID, tc.ID, "production")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.TestCaseID != tc.ID {
		t.Error("execution should reference the test case")
	}
	if exec.Environment != "production" {
		t.Errorf("expected environment 'production', got %q", exec.Environment)
	}
	switch exec.Status {
	case models.ExecutionPassed, models.ExecutionFailed, models.ExecutionSkipped:
	default:
		t.Errorf("unexpected status %q", exec.Status)
	}
	if exec.DurationMs < 100 || exec.DurationMs >= 5100 {
		t.Errorf("duration %dms outside simulated range", exec.DurationMs)
	}
	if len(executionRepo.created) != 1 {
		t.Fatalf("expected 1 persisted execution, got %d", len(executionRepo.created))
	}
}

func TestExecute_DefaultsEnvironmentToStaging(t *testing.T) {
	svc, _, tc, userID := executionFixture(t)

	exec, err := svc.Execute(context.Background(), userID, tc.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Environment != "staging" {
		t.Errorf("expected default environment 'staging', got %q", exec.Environment)
	}
}

func TestExecute_LogMentionsTestAndOutcome(t *testing.T) {
	svc, _, tc, userID := executionFixture(t)

	exec, err := svc.Execute(context.Background(), userID, tc.ID, "staging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(exec.Log, tc.Name) {
		t.Error("log should mention the test case name")
	}
	if !strings.Contains(exec.Log, exec.Status) {
		t.Error("log should mention the final status")
	}
}

func TestExecute_UnknownTestCase(t *testing.T) {
	svc, _, _, userID := executionFixture(t)

	_, err := svc.Execute(context.Background(), userID, uuid.New(), "")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExecute_OtherUsersTestCase(t *testing.T) {
	svc, _, tc, _ := executionFixture(t)

	_, err := svc.Execute(context.Background(), uuid.New(), tc.ID, "")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("cross-user access should be a not-found, got %v", err)
	}
}

func TestExecute_StatusDistribution(t *testing.T) {
	svc, _, tc, userID := executionFixture(t)

	counts := map[string]int{}
	for i := 0; i < 500; i++ {
		exec, err := svc.Execute(context.Background(), userID, tc.ID, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[exec.Status]++
	}

	// Loose sanity bounds on the 70/25/5 split.
	if counts[models.ExecutionPassed] < 250 {
		t.Errorf("passed count %d suspiciously low", counts[models.ExecutionPassed])
	}
	if counts[models.ExecutionFailed] == 0 {
		t.Error("expected some failed runs over 500 samples")
	}
}
