package handler

import (
	"net/http"

	"github.com/catalog-accounts/internal/application/account"
	"github.com/catalog-accounts/internal/domain"
)

// SessionHandler handles login.
type SessionHandler struct {
	svc    account.Service
	signer tokenSigner
}

func NewSessionHandler(svc account.Service, signer tokenSigner) *SessionHandler {
	return &SessionHandler{svc: svc, signer: signer}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	bearer, err := sign(h.signer, a)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Bearer: bearer, Account: a})
}
