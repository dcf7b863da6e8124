package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrQuotaExceeded      = errors.New("plan quota exceeded")
	ErrSeatLimitReached   = errors.New("team seat limit reached")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrLastAdmin          = errors.New("cannot remove last admin")
)
