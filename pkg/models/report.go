package models

import (
	"time"

	"github.com/google/uuid"
)

// Report status constants.
const (
	ReportPending   = "pending"
	ReportGenerated = "generated"
)

// Report is a user-requested summary document over executions and test cases.
type Report struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	ReportType  string     `json:"report_type"` // 'summary', 'coverage', 'trend'
	TimeRange   string     `json:"time_range"`  // '7d', '30d', '90d'
	Status      string     `json:"status"`
	Content     JSONBMap   `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}
