package models

import (
	"time"

	"github.com/google/uuid"
)

// Execution status constants.
const (
	ExecutionPassed  = "passed"
	ExecutionFailed  = "failed"
	ExecutionSkipped = "skipped"
)

// TestExecution is a single simulated run of a test case.
type TestExecution struct {
	ID          uuid.UUID `json:"id"`
	TestCaseID  uuid.UUID `json:"test_case_id"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	DurationMs  int       `json:"duration_ms"`
	Environment string    `json:"environment"`
	Log         string    `json:"log"`
	ExecutedAt  time.Time `json:"executed_at"`
}
