package memory

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/catalog-accounts/internal/domain"
)

// CodeStore keeps one live OneTimeCode per subject in memory.
type CodeStore struct {
	locks *keyLock
	mu    sync.RWMutex
	codes map[string]domain.OneTimeCode
	now   func() time.Time
}

func NewCodeStore() *CodeStore {
	return &CodeStore{
		locks: newKeyLock(),
		codes: make(map[string]domain.OneTimeCode),
		now:   time.Now,
	}
}

// WithClock replaces the time source; tests use it to step past expiry.
func (s *CodeStore) WithClock(now func() time.Time) *CodeStore {
	s.now = now
	return s
}

func (s *CodeStore) Issue(_ context.Context, subjectKey, purpose, code string, ttl time.Duration) (*domain.OneTimeCode, error) {
	unlock := s.locks.Lock(subjectKey)
	defer unlock()

	c := domain.NewOneTimeCode(subjectKey, purpose, code, s.now(), ttl)
	s.mu.Lock()
	s.codes[subjectKey] = c
	s.mu.Unlock()
	return &c, nil
}

// VerifyAndConsume removes the subject's code when code and purpose match
// before expiry. A mismatch against a live code counts as a failed attempt,
// and the code is discarded once it runs out of attempts.
func (s *CodeStore) VerifyAndConsume(_ context.Context, subjectKey, purpose, code string) error {
	unlock := s.locks.Lock(subjectKey)
	defer unlock()

	s.mu.RLock()
	c, ok := s.codes[subjectKey]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrCodeInvalid
	}
	if c.Expired(s.now()) {
		return domain.ErrCodeExpired
	}
	if c.Exhausted() {
		return domain.ErrCodeInvalid
	}
	match := subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) == 1
	if !match || c.Purpose != purpose {
		c.Attempts++
		s.mu.Lock()
		if c.Exhausted() {
			delete(s.codes, subjectKey)
		} else {
			s.codes[subjectKey] = c
		}
		s.mu.Unlock()
		return domain.ErrCodeInvalid
	}
	s.mu.Lock()
	delete(s.codes, subjectKey)
	s.mu.Unlock()
	return nil
}

func (s *CodeStore) Revoke(_ context.Context, subjectKey, code string) error {
	unlock := s.locks.Lock(subjectKey)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.codes[subjectKey]; ok && c.Code == code {
		delete(s.codes, subjectKey)
	}
	return nil
}

// Live returns the subject's current code, if any.
func (s *CodeStore) Live(subjectKey string) (domain.OneTimeCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.codes[subjectKey]
	return c, ok
}
