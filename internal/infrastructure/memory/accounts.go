package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/catalog-accounts/internal/domain"
	"github.com/catalog-accounts/internal/pkg/recent"
)

// AccountStore is an in-memory credential store. Accounts are copied on the
// way in and out so callers never share slices with the store.
type AccountStore struct {
	locks    *keyLock
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	byEmail  map[string]string
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		locks:    newKeyLock(),
		accounts: make(map[string]*domain.Account),
		byEmail:  make(map[string]string),
	}
}

func (s *AccountStore) Create(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[a.Email]; taken {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, taken := s.accounts[a.AccountID]; taken {
		return fmt.Errorf("account id already exists: %w", domain.ErrConflict)
	}
	s.accounts[a.AccountID] = clone(a)
	s.byEmail[a.Email] = a.AccountID
	return nil
}

func (s *AccountStore) Get(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return clone(a), nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return s.Get(ctx, id)
}

func (s *AccountStore) UpdatePasswordHash(_ context.Context, accountID, hash string) error {
	return s.mutate(accountID, func(a *domain.Account) { a.PasswordHash = hash })
}

func (s *AccountStore) UpdateInterests(_ context.Context, accountID string, interests []string) error {
	cp := append([]string(nil), interests...)
	return s.mutate(accountID, func(a *domain.Account) { a.Interests = cp })
}

// PushRecentView performs the read-splice-write under the account's key lock.
func (s *AccountStore) PushRecentView(_ context.Context, accountID, itemID string, at time.Time, max int) error {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	s.mu.RLock()
	a, ok := s.accounts[accountID]
	var views []domain.RecentView
	if ok {
		views = a.RecentViews
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}

	next := recent.Promote(views, itemID, at, max)
	return s.mutate(accountID, func(a *domain.Account) {
		a.RecentViews = next
		a.Version++
	})
}

func (s *AccountStore) GetRecentViews(ctx context.Context, accountID string) ([]domain.RecentView, error) {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return a.RecentViews, nil
}

func (s *AccountStore) mutate(accountID string, fn func(*domain.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	fn(a)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	c.Interests = append([]string(nil), a.Interests...)
	c.RecentViews = append([]domain.RecentView(nil), a.RecentViews...)
	if a.Mobile != nil {
		m := *a.Mobile
		c.Mobile = &m
	}
	return &c
}
