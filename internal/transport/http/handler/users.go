package handler

import (
	"net/http"
	"strconv"

	"github.com/catalog-accounts/internal/application/account"
	"github.com/catalog-accounts/internal/application/history"
	"github.com/catalog-accounts/internal/domain"
	"github.com/go-chi/chi/v5"
)

// UserHandler serves per-account profile and view-history endpoints.
type UserHandler struct {
	accounts account.Service
	history  history.Service
}

func NewUserHandler(accounts account.Service, history history.Service) *UserHandler {
	return &UserHandler{accounts: accounts, history: history}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Account: a})
}

func (h *UserHandler) UpdateInterests(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateInterestsRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.accounts.UpdateInterests(r.Context(), chi.URLParam(r, "id"), req.Interests)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Account: a})
}

func (h *UserHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req history.RecordViewRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.history.RecordView(r.Context(), chi.URLParam(r, "id"), req.ProductID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "view recorded"})
}

func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	ids, err := h.history.GetRecentHistory(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryEnvelope{IDs: ids})
}
