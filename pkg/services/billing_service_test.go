package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

func billingFixture(plan string) (BillingService, *models.User, *fakeUsageRepo) {
	user := &models.User{
		ID:    uuid.New(),
		Email: "owner@example.com",
		Role:  models.RoleAdmin,
		Plan:  plan,
	}
	usageRepo := newFakeUsageRepo()
	svc := NewBillingService(newFakeUserRepo(user), &fakeInvoiceRepo{}, usageRepo, NewPlanCatalog(), zap.NewNop())
	return svc, user, usageRepo
}

func TestOverview(t *testing.T) {
	svc, user, usageRepo := billingFixture(models.PlanStarter)
	_ = usageRepo.Increment(context.Background(), user.ID, periodNow(), 40)

	view, err := svc.Overview(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Plan.Name != models.PlanStarter {
		t.Errorf("expected starter plan, got %q", view.Plan.Name)
	}
	if view.Usage.Used != 40 || view.Usage.Limit != 1000 || view.Usage.Remaining != 960 {
		t.Errorf("unexpected usage: %+v", view.Usage)
	}
	if len(view.AllPlans) != 4 {
		t.Errorf("expected 4 plans in the catalog, got %d", len(view.AllPlans))
	}
}

func TestUpgrade_IssuesInvoiceAndChangesPlan(t *testing.T) {
	svc, user, _ := billingFixture(models.PlanFree)

	invoice, err := svc.Upgrade(context.Background(), user.ID, models.PlanPro)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if invoice.Plan != models.PlanPro {
		t.Errorf("invoice should record the new plan, got %q", invoice.Plan)
	}
	if invoice.AmountCents != 9900 {
		t.Errorf("expected 9900 cents, got %d", invoice.AmountCents)
	}
	if invoice.Number == "" {
		t.Error("invoice needs a number")
	}

	view, err := svc.Overview(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Plan.Name != models.PlanPro {
		t.Errorf("plan change not applied, still %q", view.Plan.Name)
	}

	invoices, err := svc.Invoices(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoices) != 1 {
		t.Errorf("expected 1 invoice, got %d", len(invoices))
	}
}

func TestUpgrade_UnknownPlan(t *testing.T) {
	svc, user, _ := billingFixture(models.PlanFree)

	_, err := svc.Upgrade(context.Background(), user.ID, "platinum")
	if !errors.Is(err, apperrors.ErrInvalidPlan) {
		t.Errorf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestUpgrade_SamePlan(t *testing.T) {
	svc, user, _ := billingFixture(models.PlanPro)

	_, err := svc.Upgrade(context.Background(), user.ID, models.PlanPro)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict for a no-op change, got %v", err)
	}
}

func TestInvoice_Scoping(t *testing.T) {
	svc, user, _ := billingFixture(models.PlanFree)

	invoice, err := svc.Upgrade(context.Background(), user.ID, models.PlanStarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Invoice(context.Background(), uuid.New(), invoice.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("other users must not see the invoice, got %v", err)
	}
}
