package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/database"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID, scoped to its owner.
func (r *projectRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2`

	var p models.Project
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

// ListByUser returns the user's projects, newest first.
func (r *projectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}

	return projects, rows.Err()
}

// Delete removes a project owned by the user.
func (r *projectRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
