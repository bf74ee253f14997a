package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtinfra "github.com/catalog-accounts/internal/infrastructure/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func ownerReq(id string, claims *jwtinfra.Claims) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
	if claims != nil {
		ctx = WithClaims(ctx, claims)
	}
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestRequireOwnerOrPrivileged_NoClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireOwnerOrPrivileged("id")(http.HandlerFunc(okHandler)).ServeHTTP(rr, ownerReq("u1", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireOwnerOrPrivileged_OtherAccount(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireOwnerOrPrivileged("id")(http.HandlerFunc(okHandler)).ServeHTTP(rr, ownerReq("u2", &jwtinfra.Claims{UserID: "u1"}))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireOwnerOrPrivileged_Owner(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireOwnerOrPrivileged("id")(http.HandlerFunc(okHandler)).ServeHTTP(rr, ownerReq("u1", &jwtinfra.Claims{UserID: "u1"}))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireOwnerOrPrivileged_Privileged(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireOwnerOrPrivileged("id")(http.HandlerFunc(okHandler)).ServeHTTP(rr, ownerReq("u2", &jwtinfra.Claims{UserID: "admin", Privileged: true}))
	assert.Equal(t, http.StatusOK, rr.Code)
}
