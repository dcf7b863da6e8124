package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/database"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// ExecutionFilter narrows execution queries for the results/analytics views.
type ExecutionFilter struct {
	Since       time.Time
	Environment string
	TestType    string
	Limit       int
}

// ExecutionSummary holds aggregate counts for the results view.
type ExecutionSummary struct {
	Total         int     `json:"total"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Skipped       int     `json:"skipped"`
	PassRate      float64 `json:"pass_rate"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// DailyCount is one day's execution count for trend charts.
type DailyCount struct {
	Day    time.Time `json:"day"`
	Total  int       `json:"total"`
	Passed int       `json:"passed"`
	Failed int       `json:"failed"`
}

// ExecutionRepository defines the interface for execution data access.
type ExecutionRepository interface {
	Create(ctx context.Context, exec *models.TestExecution) error
	List(ctx context.Context, userID uuid.UUID, filter ExecutionFilter) ([]*models.TestExecution, error)
	Summarize(ctx context.Context, userID uuid.UUID, filter ExecutionFilter) (*ExecutionSummary, error)
	DailyCounts(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyCount, error)
}

type executionRepository struct {
	db *database.DB
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *database.DB) ExecutionRepository {
	return &executionRepository{db: db}
}

// Create inserts an execution record.
func (r *executionRepository) Create(ctx context.Context, exec *models.TestExecution) error {
	if exec.ID == uuid.Nil {
		exec.ID = uuid.New()
	}
	if exec.ExecutedAt.IsZero() {
		exec.ExecutedAt = time.Now()
	}

	query := `
		INSERT INTO test_executions (id, test_case_id, user_id, status, duration_ms, environment, log, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		exec.ID,
		exec.TestCaseID,
		exec.UserID,
		exec.Status,
		exec.DurationMs,
		exec.Environment,
		exec.Log,
		exec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}

	return nil
}

// filterClause builds the shared WHERE tail for filtered queries.
// The test type filter joins through test_cases.
func filterClause(filter ExecutionFilter, args []interface{}) (string, []interface{}) {
	clause := ""
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		clause += fmt.Sprintf(" AND e.executed_at >= $%d", len(args))
	}
	if filter.Environment != "" {
		args = append(args, filter.Environment)
		clause += fmt.Sprintf(" AND e.environment = $%d", len(args))
	}
	if filter.TestType != "" {
		args = append(args, filter.TestType)
		clause += fmt.Sprintf(" AND tc.test_type = $%d", len(args))
	}
	return clause, args
}

// List returns executions matching the filter, newest first.
func (r *executionRepository) List(ctx context.Context, userID uuid.UUID, filter ExecutionFilter) ([]*models.TestExecution, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	args := []interface{}{userID}
	clause, args := filterClause(filter, args)

	query := `
		SELECT e.id, e.test_case_id, e.user_id, e.status, e.duration_ms, e.environment, e.log, e.executed_at
		FROM test_executions e
		JOIN test_cases tc ON tc.id = e.test_case_id
		WHERE e.user_id = $1` + clause +
		fmt.Sprintf(` ORDER BY e.executed_at DESC LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var execs []*models.TestExecution
	for rows.Next() {
		var e models.TestExecution
		if err := rows.Scan(&e.ID, &e.TestCaseID, &e.UserID, &e.Status, &e.DurationMs, &e.Environment, &e.Log, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		execs = append(execs, &e)
	}

	return execs, rows.Err()
}

// Summarize returns aggregate counts over executions matching the filter.
func (r *executionRepository) Summarize(ctx context.Context, userID uuid.UUID, filter ExecutionFilter) (*ExecutionSummary, error) {
	args := []interface{}{userID}
	clause, args := filterClause(filter, args)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE e.status = 'passed'),
			COUNT(*) FILTER (WHERE e.status = 'failed'),
			COUNT(*) FILTER (WHERE e.status = 'skipped'),
			COALESCE(AVG(e.duration_ms), 0)
		FROM test_executions e
		JOIN test_cases tc ON tc.id = e.test_case_id
		WHERE e.user_id = $1` + clause

	var s ExecutionSummary
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.Total, &s.Passed, &s.Failed, &s.Skipped, &s.AvgDurationMs)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize executions: %w", err)
	}

	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}

	return &s, nil
}

// DailyCounts returns per-day execution counts since the given time.
func (r *executionRepository) DailyCounts(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyCount, error) {
	query := `
		SELECT
			date_trunc('day', executed_at) AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'passed'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM test_executions
		WHERE user_id = $1 AND executed_at >= $2
		GROUP BY day
		ORDER BY day`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var c DailyCount
		if err := rows.Scan(&c.Day, &c.Total, &c.Passed, &c.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
