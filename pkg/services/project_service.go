package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// CreateProjectRequest is the payload for POST /api/projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectService manages the user's projects.
type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, req *CreateProjectRequest) (*models.Project, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type projectService struct {
	projectRepo repositories.ProjectRepository
}

// NewProjectService creates a new project service.
func NewProjectService(projectRepo repositories.ProjectRepository) ProjectService {
	return &projectService{projectRepo: projectRepo}
}

var _ ProjectService = (*projectService)(nil)

// Create validates and inserts a project.
func (s *projectService) Create(ctx context.Context, userID uuid.UUID, req *CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	project := &models.Project{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns one project.
func (s *projectService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	return s.projectRepo.Get(ctx, userID, id)
}

// List returns the user's projects.
func (s *projectService) List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	return s.projectRepo.ListByUser(ctx, userID)
}

// Delete removes a project. Test cases keep their project_id reference
// nulled by the schema's ON DELETE SET NULL.
func (s *projectService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.projectRepo.Delete(ctx, userID, id)
}
