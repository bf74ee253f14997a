package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catalog-accounts/internal/domain"
	"github.com/catalog-accounts/internal/pkg/recent"
)

// DefaultLimit is the number of ids GetRecentHistory returns when the caller
// asks for none.
const DefaultLimit = 6

type RecordViewRequest struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
}

type Service interface {
	RecordView(ctx context.Context, accountID, itemID string) error
	GetRecentHistory(ctx context.Context, accountID string, limit int) ([]string, error)
}

type viewStore interface {
	PushRecentView(ctx context.Context, accountID, itemID string, at time.Time, max int) error
	GetRecentViews(ctx context.Context, accountID string) ([]domain.RecentView, error)
}

type recorder interface {
	RecordView()
}

type service struct {
	repo         viewStore
	metrics      recorder
	max          int
	defaultLimit int
	now          func() time.Time
}

type ServiceDeps struct {
	AccountRepo  viewStore
	Metrics      recorder
	Max          int
	DefaultLimit int
	Now          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:         deps.AccountRepo,
		metrics:      deps.Metrics,
		max:          deps.Max,
		defaultLimit: deps.DefaultLimit,
		now:          deps.Now,
	}
	if s.max < 1 || s.max > domain.MaxRecentViews {
		s.max = domain.MaxRecentViews
	}
	if s.defaultLimit < 1 || s.defaultLimit > s.max {
		s.defaultLimit = min(DefaultLimit, s.max)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

func (s *service) RecordView(ctx context.Context, accountID, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return fmt.Errorf("item id required: %w", domain.ErrBadRequest)
	}
	if err := s.repo.PushRecentView(ctx, accountID, itemID, s.now().UTC(), s.max); err != nil {
		return err
	}
	s.metrics.RecordView()
	return nil
}

func (s *service) GetRecentHistory(ctx context.Context, accountID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.max {
		limit = s.max
	}
	views, err := s.repo.GetRecentViews(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return recent.IDs(views, limit), nil
}

type nopRecorder struct{}

func (nopRecorder) RecordView() {}
