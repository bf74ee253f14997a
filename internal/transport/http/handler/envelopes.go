package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/catalog-accounts/internal/domain"
	"github.com/catalog-accounts/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AccountEnvelope wraps signup, login and profile responses. Bearer is set
// only when token signing is configured.
type AccountEnvelope struct {
	Bearer  string          `json:"Bearer,omitempty"`
	Account *domain.Account `json:"account,omitempty"`
}

// HistoryEnvelope carries recently viewed item ids, newest first.
type HistoryEnvelope struct {
	IDs []string `json:"ids"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decode reads a JSON body into dst and runs its validate tags. It writes
// the error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// httpError maps domain errors to status codes. Code failures always use the
// same message, and store failures never leak their cause.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidOrExpiredCode.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTransient):
		slog.Warn("transient failure", "err", err)
		writeError(w, http.StatusServiceUnavailable, domain.ErrTransient.Error())
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
