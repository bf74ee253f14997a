package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RequireOwnerOrPrivileged lets a request through only when the caller's
// token names the account in URL param, or carries the privileged flag.
func RequireOwnerOrPrivileged(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if claims.Privileged || claims.UserID == chi.URLParam(r, param) {
				next.ServeHTTP(w, r)
				return
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}
