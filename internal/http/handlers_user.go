package http

import (
	"net/http"
	"strings"

	"butce/internal/core"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload UserPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.deps.Users.Register(r.Context(), payload.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserPayload(created))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := s.deps.Users.GetUser(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserPayload(user))
}

type linkPartnerRequest struct {
	Partner string `json:"partner"`
}

func (s *Server) handleLinkPartner(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req linkPartnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	partner := strings.TrimSpace(req.Partner)
	if partner == "" {
		writeError(w, r, core.ErrMissingUsername)
		return
	}

	linked, err := s.deps.Users.LinkPartner(r.Context(), username, partner, s.deps.Budgets)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserPayload(linked))
}

type portfolioToggleRequest struct {
	Included bool `json:"included"`
}

func (s *Server) handleSetPortfolioInBudget(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req portfolioToggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	user, err := s.deps.Users.SetPortfolioInBudget(r.Context(), username, req.Included)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserPayload(user))
}
