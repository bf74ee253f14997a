package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/catalog-accounts/internal/domain"
	"github.com/catalog-accounts/internal/pkg/password"
)

type Service interface {
	Login(ctx context.Context, email, pw string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateInterests(ctx context.Context, accountID string, interests []string) (*domain.Account, error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateInterests(ctx context.Context, accountID string, interests []string) error
}

type recorder interface {
	RecordLogin(ok bool)
}

type service struct {
	repo    accountStore
	metrics recorder
}

type ServiceDeps struct {
	AccountRepo accountStore
	Metrics     recorder
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.AccountRepo, metrics: deps.Metrics}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

// Login checks the credential pair. Unknown emails and wrong passwords are
// indistinguishable to the caller and take the same bcrypt work.
func (s *service) Login(ctx context.Context, email, pw string) (*domain.Account, error) {
	a, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash := ""
	if a != nil {
		hash = a.PasswordHash
	}
	if err := password.Compare(hash, pw); err != nil {
		s.metrics.RecordLogin(false)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	s.metrics.RecordLogin(true)
	return a.Sanitized(), nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return a.Sanitized(), nil
}

func (s *service) UpdateInterests(ctx context.Context, accountID string, interests []string) (*domain.Account, error) {
	if err := s.repo.UpdateInterests(ctx, accountID, normalizeInterests(interests)); err != nil {
		return nil, err
	}
	return s.Get(ctx, accountID)
}

// normalizeInterests trims names and drops blanks and repeats, keeping the
// first occurrence order.
func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

type nopRecorder struct{}

func (nopRecorder) RecordLogin(bool) {}
