package handler

import (
	"net/http"

	"github.com/catalog-accounts/internal/application/verification"
	"github.com/go-chi/chi/v5"
)

// PasswordRecoveryHandler handles password recovery flow endpoints.
type PasswordRecoveryHandler struct {
	svc verification.Service
}

func NewPasswordRecoveryHandler(svc verification.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req verification.ResetRequest
		if !decode(w, r, &req) {
			return
		}
		if err := h.svc.InitiateReset(r.Context(), req); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
	case "validate-code":
		var req verification.CompleteResetRequest
		if !decode(w, r, &req) {
			return
		}
		if err := h.svc.CompleteReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
