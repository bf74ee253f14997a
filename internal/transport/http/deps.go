package http

import (
	"context"
	"time"

	"github.com/catalog-accounts/internal/domain"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, hash string) error
	UpdateInterests(ctx context.Context, accountID string, interests []string) error
	// PushRecentView splices itemID to the front of the account's history
	// and trims it to max entries as one atomic step.
	PushRecentView(ctx context.Context, accountID, itemID string, at time.Time, max int) error
	GetRecentViews(ctx context.Context, accountID string) ([]domain.RecentView, error)
}

// CodeRepository is the minimal interface the router requires from a one-time-code store.
type CodeRepository interface {
	Issue(ctx context.Context, subjectKey, purpose, code string, ttl time.Duration) (*domain.OneTimeCode, error)
	VerifyAndConsume(ctx context.Context, subjectKey, purpose, code string) error
	Revoke(ctx context.Context, subjectKey, code string) error
}

// Notifier delivers a code over channel ("email" or "sms") to recipient.
type Notifier interface {
	Send(ctx context.Context, channel, recipient, subject, body string) error
}

// CodeGenerator produces one-time codes.
type CodeGenerator interface {
	Generate() string
}
