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

// InvoiceRepository defines the interface for invoice data access.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error)
}

type invoiceRepository struct {
	db *database.DB
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(db *database.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts an invoice record.
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.IssuedAt.IsZero() {
		invoice.IssuedAt = time.Now()
	}
	if invoice.Currency == "" {
		invoice.Currency = "usd"
	}
	if invoice.Status == "" {
		invoice.Status = "paid"
	}

	query := `
		INSERT INTO invoices (id, user_id, number, plan, amount_cents, currency, status, period_start, period_end, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		invoice.ID,
		invoice.UserID,
		invoice.Number,
		invoice.Plan,
		invoice.AmountCents,
		invoice.Currency,
		invoice.Status,
		invoice.PeriodStart,
		invoice.PeriodEnd,
		invoice.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

const invoiceColumns = `id, user_id, number, plan, amount_cents, currency, status, period_start, period_end, issued_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.Number,
		&inv.Plan,
		&inv.AmountCents,
		&inv.Currency,
		&inv.Status,
		&inv.PeriodStart,
		&inv.PeriodEnd,
		&inv.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	return &inv, nil
}

// Get retrieves an invoice by ID, scoped to its owner.
func (r *invoiceRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND user_id = $2`
	return scanInvoice(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns the user's invoices, newest first.
func (r *invoiceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 ORDER BY issued_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}
