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

// ReportRepository defines the interface for report data access.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Report, error)
	MarkGenerated(ctx context.Context, userID, id uuid.UUID, content models.JSONBMap) error
}

type reportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *database.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create inserts a pending report.
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	if report.Content == nil {
		report.Content = models.JSONBMap{}
	}

	content, err := json.Marshal(report.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	query := `
		INSERT INTO reports (id, user_id, name, report_type, time_range, status, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.Name,
		report.ReportType,
		report.TimeRange,
		report.Status,
		content,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

const reportColumns = `id, user_id, name, report_type, time_range, status, content, created_at, generated_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	var content []byte

	err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Name,
		&rep.ReportType,
		&rep.TimeRange,
		&rep.Status,
		&content,
		&rep.CreatedAt,
		&rep.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if err := json.Unmarshal(content, &rep.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}

	return &rep, nil
}

// Get retrieves a report by ID, scoped to its owner.
func (r *reportRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1 AND user_id = $2`
	return scanReport(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns the user's reports, newest first.
func (r *reportRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	return reports, rows.Err()
}

// MarkGenerated stores the computed content and flips status to generated.
func (r *reportRepository) MarkGenerated(ctx context.Context, userID, id uuid.UUID, content models.JSONBMap) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	query := `
		UPDATE reports
		SET status = $3, content = $4, generated_at = now()
		WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID, models.ReportGenerated, payload)
	if err != nil {
		return fmt.Errorf("failed to mark report generated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
