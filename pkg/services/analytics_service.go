package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// ParseTimeRange maps the dashboard's timeRange query values to a start
// time. Unknown values default to 30 days.
func ParseTimeRange(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case "24h":
		return now.Add(-24 * time.Hour)
	case "7d":
		return now.AddDate(0, 0, -7)
	case "90d":
		return now.AddDate(0, 0, -90)
	default:
		return now.AddDate(0, 0, -30)
	}
}

// ResultsView is the payload behind GET /api/results.
type ResultsView struct {
	Summary    *repositories.ExecutionSummary `json:"summary"`
	Executions []*models.TestExecution        `json:"executions"`
}

// AnalyticsView is the payload behind GET /api/analytics.
type AnalyticsView struct {
	Daily      []repositories.DailyCount `json:"daily"`
	ByTestType map[string]int            `json:"by_test_type"`
	Usage      models.UsageSummary       `json:"usage"`
}

// AnalyticsService aggregates execution and generation data for the
// dashboard charts.
type AnalyticsService interface {
	Results(ctx context.Context, userID uuid.UUID, filter repositories.ExecutionFilter) (*ResultsView, error)
	Analytics(ctx context.Context, userID uuid.UUID, since time.Time) (*AnalyticsView, error)
}

type analyticsService struct {
	executionRepo repositories.ExecutionRepository
	testCaseRepo  repositories.TestCaseRepository
	usageRepo     repositories.UsageRepository
	userRepo      repositories.UserRepository
	plans         *PlanCatalog
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	executionRepo repositories.ExecutionRepository,
	testCaseRepo repositories.TestCaseRepository,
	usageRepo repositories.UsageRepository,
	userRepo repositories.UserRepository,
	plans *PlanCatalog,
) AnalyticsService {
	return &analyticsService{
		executionRepo: executionRepo,
		testCaseRepo:  testCaseRepo,
		usageRepo:     usageRepo,
		userRepo:      userRepo,
		plans:         plans,
	}
}

var _ AnalyticsService = (*analyticsService)(nil)

// Results returns recent executions plus their aggregate summary.
func (s *analyticsService) Results(ctx context.Context, userID uuid.UUID, filter repositories.ExecutionFilter) (*ResultsView, error) {
	summary, err := s.executionRepo.Summarize(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	executions, err := s.executionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &ResultsView{Summary: summary, Executions: executions}, nil
}

// Analytics returns trend and distribution data for the charts.
func (s *analyticsService) Analytics(ctx context.Context, userID uuid.UUID, since time.Time) (*AnalyticsView, error) {
	daily, err := s.executionRepo.DailyCounts(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	byType, err := s.testCaseRepo.CountByType(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan := s.plans.Get(user.Plan)
	used, err := s.usageRepo.Get(ctx, userID, repositories.Period(time.Now()))
	if err != nil {
		return nil, err
	}

	return &AnalyticsView{
		Daily:      daily,
		ByTestType: byType,
		Usage: models.UsageSummary{
			Limit:     plan.MonthlyTests,
			Used:      used,
			Remaining: remaining(plan, used),
		},
	}, nil
}
