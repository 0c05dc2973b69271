package http

import (
	"net/http"

	"butce/internal/core"
)

type assetMutationResponse struct {
	Asset  AssetPayload `json:"asset"`
	Budget core.Money   `json:"budget"`
}

// Every asset mutation answers with the budget as seen after the mutation,
// so clients can render the new total without a second request.
func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var payload AssetPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.deps.Assets.CreateAsset(r.Context(), payload.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), created.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, assetMutationResponse{
		Asset:  newAssetPayload(created),
		Budget: budget.Amount,
	})
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var payload AssetPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	asset := payload.toCore()
	asset.ID = id

	updated, err := s.deps.Assets.UpdateAsset(r.Context(), asset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), updated.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, assetMutationResponse{
		Asset:  newAssetPayload(updated),
		Budget: budget.Amount,
	})
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	asset, err := s.deps.Assets.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.deps.Assets.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), asset.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]core.Money{"budget": budget.Amount})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	asset, err := s.deps.Assets.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssetPayload(asset))
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	username, err := queryUsername(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	assets, err := s.deps.Assets.ListAssets(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]AssetPayload{"assets": newAssetPayloads(assets)})
}
