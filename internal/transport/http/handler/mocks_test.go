package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalog-accounts/internal/application/verification"
	"github.com/catalog-accounts/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) InitiateSignup(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockVerificationSvc) CompleteSignup(ctx context.Context, req domain.SignupRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationSvc) InitiateReset(ctx context.Context, req verification.ResetRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockVerificationSvc) CompleteReset(ctx context.Context, email, otp, newPassword string) error {
	return m.Called(ctx, email, otp, newPassword).Error(0)
}

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Login(ctx context.Context, email, pw string) (*domain.Account, error) {
	args := m.Called(ctx, email, pw)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) UpdateInterests(ctx context.Context, accountID string, interests []string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, interests)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockHistorySvc struct{ mock.Mock }

func (m *mockHistorySvc) RecordView(ctx context.Context, accountID, itemID string) error {
	return m.Called(ctx, accountID, itemID).Error(0)
}
func (m *mockHistorySvc) GetRecentHistory(ctx context.Context, accountID string, limit int) ([]string, error) {
	args := m.Called(ctx, accountID, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(accountID string, privileged bool) (string, error) {
	args := m.Called(accountID, privileged)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func jsonReq(t *testing.T, method, target string, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

// withParams injects chi URL params into the request context.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}
