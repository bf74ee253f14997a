package handler

import (
	"net/http"

	"github.com/catalog-accounts/internal/application/verification"
	"github.com/catalog-accounts/internal/domain"
	"github.com/go-chi/chi/v5"
)

type tokenSigner interface {
	Sign(accountID string, privileged bool) (string, error)
}

// SignupHandler handles the two-step account creation flow.
type SignupHandler struct {
	svc    verification.Service
	signer tokenSigner
}

// NewSignupHandler returns a SignupHandler. signer may be nil, in which case
// no bearer token is returned on completion.
func NewSignupHandler(svc verification.Service, signer tokenSigner) *SignupHandler {
	return &SignupHandler{svc: svc, signer: signer}
}

func (h *SignupHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req verification.SignupCodeRequest
		if !decode(w, r, &req) {
			return
		}
		if err := h.svc.InitiateSignup(r.Context(), req.Email); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
	case "validate-code":
		var req domain.SignupRequest
		if !decode(w, r, &req) {
			return
		}
		a, err := h.svc.CompleteSignup(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		bearer, err := sign(h.signer, a)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, AccountEnvelope{Bearer: bearer, Account: a})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func sign(signer tokenSigner, a *domain.Account) (string, error) {
	if signer == nil {
		return "", nil
	}
	return signer.Sign(a.AccountID, a.IsPrivileged)
}
