package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/database"
)

// Period returns the usage period key for a point in time (YYYY-MM).
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// UsageRepository tracks per-period test-generation counters.
type UsageRepository interface {
	// Get returns the tests generated in the given period (0 when no row).
	Get(ctx context.Context, userID uuid.UUID, period string) (int, error)

	// Increment adds n to the period counter atomically.
	Increment(ctx context.Context, userID uuid.UUID, period string, n int) error
}

type usageRepository struct {
	db *database.DB
}

// NewUsageRepository creates a new usage repository.
func NewUsageRepository(db *database.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Get returns the counter for the period.
func (r *usageRepository) Get(ctx context.Context, userID uuid.UUID, period string) (int, error) {
	query := `
		SELECT COALESCE(
			(SELECT tests_generated FROM usage_counters WHERE user_id = $1 AND period = $2),
			0)`

	var count int
	if err := r.db.QueryRow(ctx, query, userID, period).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get usage: %w", err)
	}
	return count, nil
}

// Increment bumps the counter, creating the row for a fresh period.
func (r *usageRepository) Increment(ctx context.Context, userID uuid.UUID, period string, n int) error {
	query := `
		INSERT INTO usage_counters (user_id, period, tests_generated)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, period) DO UPDATE
		SET tests_generated = usage_counters.tests_generated + EXCLUDED.tests_generated`

	if _, err := r.db.Exec(ctx, query, userID, period, n); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}
