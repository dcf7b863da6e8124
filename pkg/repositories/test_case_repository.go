package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/database"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// TestCaseRepository defines the interface for test case data access.
// Test cases are immutable after creation: there is no Update.
type TestCaseRepository interface {
	Create(ctx context.Context, tc *models.TestCase) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.TestCase, error)
	ListByUser(ctx context.Context, userID uuid.UUID, testType string, limit int) ([]*models.TestCase, error)
	CountByType(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

type testCaseRepository struct {
	db *database.DB
}

// NewTestCaseRepository creates a new test case repository.
func NewTestCaseRepository(db *database.DB) TestCaseRepository {
	return &testCaseRepository{db: db}
}

// Create inserts a generated artifact with its metadata blob.
func (r *testCaseRepository) Create(ctx context.Context, tc *models.TestCase) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	tc.CreatedAt = time.Now()

	metadata, err := json.Marshal(tc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO test_cases (id, user_id, project_id, name, test_type, language, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		tc.ID,
		tc.UserID,
		tc.ProjectID,
		tc.Name,
		tc.TestType,
		tc.Language,
		tc.Content,
		metadata,
		tc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test case: %w", err)
	}

	return nil
}

const testCaseColumns = `id, user_id, project_id, name, test_type, language, content, metadata, created_at`

func scanTestCase(row pgx.Row) (*models.TestCase, error) {
	var tc models.TestCase
	var metadata []byte

	err := row.Scan(
		&tc.ID,
		&tc.UserID,
		&tc.ProjectID,
		&tc.Name,
		&tc.TestType,
		&tc.Language,
		&tc.Content,
		&metadata,
		&tc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan test case: %w", err)
	}

	if err := json.Unmarshal(metadata, &tc.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &tc, nil
}

// Get retrieves a test case by ID, scoped to its owner.
func (r *testCaseRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE id = $1 AND user_id = $2`
	return scanTestCase(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns the user's test cases, newest first, optionally
// filtered by test type.
func (r *testCaseRepository) ListByUser(ctx context.Context, userID uuid.UUID, testType string, limit int) ([]*models.TestCase, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE user_id = $1`
	args := []interface{}{userID}

	if testType != "" {
		query += ` AND test_type = $2`
		args = append(args, testType)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var cases []*models.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}

	return cases, rows.Err()
}

// CountByType returns per-type counts of the user's test cases.
func (r *testCaseRepository) CountByType(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT test_type, COUNT(*)
		FROM test_cases
		WHERE user_id = $1
		GROUP BY test_type`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count test cases: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var testType string
		var count int
		if err := rows.Scan(&testType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[testType] = count
	}

	return counts, rows.Err()
}
