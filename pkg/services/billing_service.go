package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// BillingView is the payload behind GET /api/billing.
type BillingView struct {
	Plan     models.Plan         `json:"plan"`
	Usage    models.UsageSummary `json:"usage"`
	AllPlans []models.Plan       `json:"all_plans"`
}

// BillingService handles plan state, upgrades and invoices.
type BillingService interface {
	Overview(ctx context.Context, userID uuid.UUID) (*BillingView, error)
	Upgrade(ctx context.Context, userID uuid.UUID, planName string) (*models.Invoice, error)
	Invoices(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error)
	Invoice(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
}

type billingService struct {
	userRepo    repositories.UserRepository
	invoiceRepo repositories.InvoiceRepository
	usageRepo   repositories.UsageRepository
	plans       *PlanCatalog
	logger      *zap.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(
	userRepo repositories.UserRepository,
	invoiceRepo repositories.InvoiceRepository,
	usageRepo repositories.UsageRepository,
	plans *PlanCatalog,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		userRepo:    userRepo,
		invoiceRepo: invoiceRepo,
		usageRepo:   usageRepo,
		plans:       plans,
		logger:      logger.Named("billing"),
	}
}

var _ BillingService = (*billingService)(nil)

// Overview returns the user's plan, current usage and the catalog.
func (s *billingService) Overview(ctx context.Context, userID uuid.UUID) (*BillingView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan := s.plans.Get(user.Plan)
	used, err := s.usageRepo.Get(ctx, userID, repositories.Period(time.Now()))
	if err != nil {
		return nil, err
	}

	return &BillingView{
		Plan: plan,
		Usage: models.UsageSummary{
			Limit:     plan.MonthlyTests,
			Used:      used,
			Remaining: remaining(plan, used),
		},
		AllPlans: s.plans.All(),
	}, nil
}

// Upgrade moves the user to the named plan and issues an invoice for the
// current period. Downgrades use the same path; the invoice records the
// new plan's price.
func (s *billingService) Upgrade(ctx context.Context, userID uuid.UUID, planName string) (*models.Invoice, error) {
	if !s.plans.Has(planName) {
		return nil, apperrors.ErrInvalidPlan
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Plan == planName {
		return nil, apperrors.ErrConflict
	}

	if err := s.userRepo.UpdatePlan(ctx, userID, planName); err != nil {
		return nil, err
	}

	plan := s.plans.Get(planName)
	now := time.Now()
	invoice := &models.Invoice{
		UserID:      userID,
		Number:      invoiceNumber(userID, now),
		Plan:        planName,
		AmountCents: plan.PriceCents,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 1, 0),
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Plan changed",
		zap.String("user_id", userID.String()),
		zap.String("from", user.Plan),
		zap.String("to", planName))

	return invoice, nil
}

// Invoices lists the user's invoices.
func (s *billingService) Invoices(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	return s.invoiceRepo.ListByUser(ctx, userID)
}

// Invoice returns one invoice by ID.
func (s *billingService) Invoice(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.Get(ctx, userID, id)
}

// invoiceNumber derives a unique, human-readable invoice number.
func invoiceNumber(userID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("INV-%s-%s-%d", t.UTC().Format("200601"), userID.String()[:8], t.UnixNano()%1_000_000)
}
