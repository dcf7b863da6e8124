package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TestType constants for generated artifacts.
const (
	TestTypeBDD         = "bdd"
	TestTypeUnit        = "unit"
	TestTypeAPI         = "api"
	TestTypeUI          = "ui"
	TestTypePerformance = "performance"
)

// ValidTestTypes contains all valid test type values.
var ValidTestTypes = []string{TestTypeBDD, TestTypeUnit, TestTypeAPI, TestTypeUI, TestTypePerformance}

// IsValidTestType checks if the given test type is valid.
func IsValidTestType(t string) bool {
	for _, v := range ValidTestTypes {
		if v == t {
			return true
		}
	}
	return false
}

// TestCaseMetadata is the free-form metadata stored alongside generated content.
type TestCaseMetadata struct {
	Description  string   `json:"description,omitempty"`
	Coverage     []string `json:"coverage,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Category     string   `json:"category,omitempty"`
	FallbackUsed bool     `json:"fallback_used,omitempty"`
	InputType    string   `json:"input_type,omitempty"`
}

// TestCase is a generated test artifact. Immutable after creation.
type TestCase struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	ProjectID *uuid.UUID       `json:"project_id,omitempty"`
	Name      string           `json:"name"`
	TestType  string           `json:"test_type"`
	Language  string           `json:"language"`
	Content   string           `json:"content"`
	Metadata  TestCaseMetadata `json:"metadata"`
	CreatedAt time.Time        `json:"created_at"`
}

// JSONBMap is a map type that handles PostgreSQL JSONB serialization.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	return json.Unmarshal(bytes, j)
}
