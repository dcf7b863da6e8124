package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/testhelpers"
)

func createTestUser(t *testing.T, repo UserRepository) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "$2a$10$fakehashfortestingonly0000000000000000000000000000000",
		Name:         "Integration User",
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestUserRepository_Integration(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	user := createTestUser(t, repo)
	if user.ID == uuid.Nil {
		t.Fatal("create should assign an ID")
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Email != user.Email || byID.Plan != models.PlanFree {
		t.Errorf("unexpected user: %+v", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Error("GetByEmail should return the same user")
	}

	// Duplicate email maps to the sentinel.
	dup := &models.User{Email: user.Email, PasswordHash: "x", Name: "Dup", Role: models.RoleUser, Plan: models.PlanFree}
	if err := repo.Create(ctx, dup); !errors.Is(err, apperrors.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if err := repo.UpdatePlan(ctx, user.ID, models.PlanPro); err != nil {
		t.Fatalf("UpdatePlan failed: %v", err)
	}
	updated, _ := repo.GetByID(ctx, user.ID)
	if updated.Plan != models.PlanPro {
		t.Errorf("plan not updated: %q", updated.Plan)
	}

	if err := repo.UpdateTOTP(ctx, user.ID, "encrypted-seed", true); err != nil {
		t.Fatalf("UpdateTOTP failed: %v", err)
	}
	updated, _ = repo.GetByID(ctx, user.ID)
	if !updated.TOTPEnabled || updated.TOTPSecret != "encrypted-seed" {
		t.Errorf("totp not updated: %+v", updated)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUsageRepository_Integration(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := NewUserRepository(db.DB)
	repo := NewUsageRepository(db.DB)
	ctx := context.Background()

	user := createTestUser(t, users)
	period := Period(time.Now())

	used, err := repo.Get(ctx, user.ID, period)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if used != 0 {
		t.Errorf("fresh period should be 0, got %d", used)
	}

	if err := repo.Increment(ctx, user.ID, period, 3); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := repo.Increment(ctx, user.ID, period, 2); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	used, _ = repo.Get(ctx, user.ID, period)
	if used != 5 {
		t.Errorf("increments should accumulate, got %d", used)
	}

	// Other periods are independent.
	other, _ := repo.Get(ctx, user.ID, "1999-01")
	if other != 0 {
		t.Errorf("other period should be 0, got %d", other)
	}
}

func TestTestCaseRepository_Integration(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := NewUserRepository(db.DB)
	repo := NewTestCaseRepository(db.DB)
	ctx := context.Background()

	user := createTestUser(t, users)

	tc := &models.TestCase{
		UserID:   user.ID,
		Name:     "checkout flow",
		TestType: models.TestTypeBDD,
		Language: "javascript",
		Content:  "Feature: checkout flow",
		Metadata: models.TestCaseMetadata{
			Description:  "Covers the happy path",
			Coverage:     []string{"cart", "payment"},
			Dependencies: []string{"@cucumber/cucumber"},
			InputType:    "user_story",
		},
	}
	if err := repo.Create(ctx, tc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, user.ID, tc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Content != tc.Content || got.Metadata.Description != "Covers the happy path" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Metadata.Coverage) != 2 || got.Metadata.Dependencies[0] != "@cucumber/cucumber" {
		t.Errorf("metadata mismatch: %+v", got.Metadata)
	}

	// Scoped by owner.
	if _, err := repo.Get(ctx, uuid.New(), tc.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other owner, got %v", err)
	}

	unitTC := &models.TestCase{UserID: user.ID, Name: "parser", TestType: models.TestTypeUnit, Language: "go", Content: "func TestParser"}
	if err := repo.Create(ctx, unitTC); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := repo.ListByUser(ctx, user.ID, "", 0)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 test cases, got %d", len(all))
	}

	units, _ := repo.ListByUser(ctx, user.ID, models.TestTypeUnit, 0)
	if len(units) != 1 || units[0].TestType != models.TestTypeUnit {
		t.Errorf("type filter failed: %+v", units)
	}

	limited, _ := repo.ListByUser(ctx, user.ID, "", 1)
	if len(limited) != 1 {
		t.Errorf("limit failed, got %d", len(limited))
	}

	counts, err := repo.CountByType(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountByType failed: %v", err)
	}
	if counts[models.TestTypeBDD] != 1 || counts[models.TestTypeUnit] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestSettingsRepository_Integration(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := NewUserRepository(db.DB)
	repo := NewSettingsRepository(db.DB)
	ctx := context.Background()

	user := createTestUser(t, users)

	settings, err := repo.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if settings.DefaultLanguage != "javascript" || !settings.NotifyEmail {
		t.Errorf("unexpected defaults: %+v", settings)
	}

	settings.DisplayName = "Integration"
	settings.DefaultLanguage = "python"
	settings.NotifySlack = true
	if err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := repo.Get(ctx, user.ID)
	if got.DisplayName != "Integration" || got.DefaultLanguage != "python" || !got.NotifySlack {
		t.Errorf("upsert not persisted: %+v", got)
	}
}

func TestExecutionRepository_Integration(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := NewUserRepository(db.DB)
	tcRepo := NewTestCaseRepository(db.DB)
	repo := NewExecutionRepository(db.DB)
	ctx := context.Background()

	user := createTestUser(t, users)
	tc := &models.TestCase{UserID: user.ID, Name: "login", TestType: models.TestTypeAPI, Language: "javascript", Content: "test"}
	if err := tcRepo.Create(ctx, tc); err != nil {
		t.Fatalf("Create test case failed: %v", err)
	}

	statuses := []string{models.ExecutionPassed, models.ExecutionPassed, models.ExecutionFailed}
	for _, status := range statuses {
		exec := &models.TestExecution{
			TestCaseID:  tc.ID,
			UserID:      user.ID,
			Status:      status,
			DurationMs:  1500,
			Environment: "staging",
			Log:         "ran",
		}
		if err := repo.Create(ctx, exec); err != nil {
			t.Fatalf("Create execution failed: %v", err)
		}
	}

	list, err := repo.List(ctx, user.ID, ExecutionFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 executions, got %d", len(list))
	}

	failed, _ := repo.List(ctx, user.ID, ExecutionFilter{Environment: "staging", Limit: 10})
	if len(failed) != 3 {
		t.Errorf("environment filter failed, got %d", len(failed))
	}

	summary, err := repo.Summarize(ctx, user.ID, ExecutionFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Total != 3 || summary.Passed != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	daily, err := repo.DailyCounts(ctx, user.ID, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DailyCounts failed: %v", err)
	}
	if len(daily) != 1 || daily[0].Total != 3 {
		t.Errorf("unexpected daily counts: %+v", daily)
	}
}
