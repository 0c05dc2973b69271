package http

import (
	"net/http"

	"butce/internal/core"
	"butce/internal/services"
)

type portfolioMutationResponse struct {
	Item   PortfolioPayload `json:"item"`
	Budget core.Money       `json:"budget"`
}

func (s *Server) handleCreatePortfolioItem(w http.ResponseWriter, r *http.Request) {
	var payload PortfolioPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.deps.Portfolio.CreateItem(r.Context(), payload.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), created.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, portfolioMutationResponse{
		Item:   newPortfolioPayload(created),
		Budget: budget.Amount,
	})
}

func (s *Server) handleUpdatePortfolioItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var payload PortfolioPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	item := payload.toCore()
	item.ID = id

	updated, err := s.deps.Portfolio.UpdateItem(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), updated.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, portfolioMutationResponse{
		Item:   newPortfolioPayload(updated),
		Budget: budget.Amount,
	})
}

func (s *Server) handleDeletePortfolioItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	item, err := s.deps.Portfolio.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.deps.Portfolio.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), item.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]core.Money{"budget": budget.Amount})
}

func (s *Server) handleGetPortfolioItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	item, err := s.deps.Portfolio.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPortfolioPayload(item))
}

func (s *Server) handleListPortfolio(w http.ResponseWriter, r *http.Request) {
	username, err := queryUsername(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := s.deps.Portfolio.ListItems(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       newPortfolioPayloads(items),
		"total_value": services.TotalEffectiveValue(items),
	})
}
