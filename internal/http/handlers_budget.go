package http

import (
	"net/http"

	"butce/internal/core"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	username, err := queryUsername(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetPayload(budget))
}

type setBudgetRequest struct {
	Username string     `json:"username"`
	Amount   core.Money `json:"amount"`
	AddedBy  string     `json:"added_by,omitempty"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Username == "" {
		writeError(w, r, core.ErrMissingUsername)
		return
	}
	addedBy := req.AddedBy
	if addedBy == "" {
		addedBy = req.Username
	}

	budget, err := s.deps.Budgets.SetBudget(r.Context(), req.Username, req.Amount, addedBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetPayload(budget))
}
