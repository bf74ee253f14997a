package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	// ErrTransient marks a backing store or delivery failure the caller may retry.
	ErrTransient = errors.New("temporarily unavailable")

	// ErrInvalidOrExpiredCode is the only code failure callers ever see.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrCodeInvalid          = fmt.Errorf("code mismatch: %w", ErrInvalidOrExpiredCode)
	ErrCodeExpired          = fmt.Errorf("code expired: %w", ErrInvalidOrExpiredCode)
)
