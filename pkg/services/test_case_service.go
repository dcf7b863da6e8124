package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// CreateTestCaseRequest is the payload for manually authored test cases.
// Generated cases come from the generation pipeline instead.
type CreateTestCaseRequest struct {
	Name      string     `json:"name"`
	TestType  string     `json:"test_type"`
	Language  string     `json:"language"`
	Content   string     `json:"content"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

// Validate checks the request fields.
func (r *CreateTestCaseRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !models.IsValidTestType(r.TestType) {
		return fmt.Errorf("invalid test type %q", r.TestType)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// TestCaseService reads test cases and records manually authored ones.
type TestCaseService interface {
	Create(ctx context.Context, userID uuid.UUID, req *CreateTestCaseRequest) (*models.TestCase, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.TestCase, error)
	List(ctx context.Context, userID uuid.UUID, testType string, limit int) ([]*models.TestCase, error)
}

type testCaseService struct {
	testCaseRepo repositories.TestCaseRepository
}

// NewTestCaseService creates a new test case service.
func NewTestCaseService(testCaseRepo repositories.TestCaseRepository) TestCaseService {
	return &testCaseService{testCaseRepo: testCaseRepo}
}

var _ TestCaseService = (*testCaseService)(nil)

func (s *testCaseService) Create(ctx context.Context, userID uuid.UUID, req *CreateTestCaseRequest) (*models.TestCase, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = "javascript"
	}

	tc := &models.TestCase{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Name:      strings.TrimSpace(req.Name),
		TestType:  req.TestType,
		Language:  language,
		Content:   req.Content,
		Metadata:  models.TestCaseMetadata{Category: "manual"},
	}
	if err := s.testCaseRepo.Create(ctx, tc); err != nil {
		return nil, err
	}
	return tc, nil
}

func (s *testCaseService) Get(ctx context.Context, userID, id uuid.UUID) (*models.TestCase, error) {
	return s.testCaseRepo.Get(ctx, userID, id)
}

func (s *testCaseService) List(ctx context.Context, userID uuid.UUID, testType string, limit int) ([]*models.TestCase, error) {
	return s.testCaseRepo.ListByUser(ctx, userID, testType, limit)
}
