package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a billing record issued on plan upgrade or period rollover.
type Invoice struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Number      string    `json:"number"`
	Plan        string    `json:"plan"`
	AmountCents int       `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"` // 'paid', 'open'
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	IssuedAt    time.Time `json:"issued_at"`
}
