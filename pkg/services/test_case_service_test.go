package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/models"
)

func TestTestCaseService_Create(t *testing.T) {
	repo := &fakeTestCaseRepo{}
	svc := NewTestCaseService(repo)
	userID := uuid.New()

	tc, err := svc.Create(context.Background(), userID, &CreateTestCaseRequest{
		Name:     "  Login flow  ",
		TestType: models.TestTypeUnit,
		Language: "TypeScript",
		Content:  "describe('login', () => {})",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tc.ID == uuid.Nil {
		t.Error("expected assigned ID")
	}
	if tc.Name != "Login flow" {
		t.Errorf("name = %q, want trimmed", tc.Name)
	}
	if tc.Language != "typescript" {
		t.Errorf("language = %q, want lowercased", tc.Language)
	}
	if tc.Metadata.Category != "manual" {
		t.Errorf("category = %q, want manual", tc.Metadata.Category)
	}
	if tc.UserID != userID {
		t.Error("user ID not set")
	}
}

func TestTestCaseService_Create_DefaultLanguage(t *testing.T) {
	svc := NewTestCaseService(&fakeTestCaseRepo{})

	tc, err := svc.Create(context.Background(), uuid.New(), &CreateTestCaseRequest{
		Name:     "health check",
		TestType: models.TestTypeAPI,
		Content:  "GET /health returns 200",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tc.Language != "javascript" {
		t.Errorf("language = %q, want javascript default", tc.Language)
	}
}

func TestTestCaseService_Create_Invalid(t *testing.T) {
	svc := NewTestCaseService(&fakeTestCaseRepo{})

	cases := []struct {
		name string
		req  CreateTestCaseRequest
	}{
		{"missing name", CreateTestCaseRequest{TestType: models.TestTypeUnit, Content: "x"}},
		{"bad type", CreateTestCaseRequest{Name: "a", TestType: "regression", Content: "x"}},
		{"missing content", CreateTestCaseRequest{Name: "a", TestType: models.TestTypeUnit}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), uuid.New(), &tc.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTestCaseService_GetAndList(t *testing.T) {
	repo := &fakeTestCaseRepo{}
	svc := NewTestCaseService(repo)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, &CreateTestCaseRequest{
		Name:     "checkout",
		TestType: models.TestTypeBDD,
		Content:  "Feature: checkout",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "checkout" {
		t.Errorf("got %q", got.Name)
	}

	if _, err := svc.Get(context.Background(), uuid.New(), created.ID); err == nil {
		t.Error("expected not found for other user")
	}

	list, err := svc.List(context.Background(), owner, models.TestTypeBDD, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
}
