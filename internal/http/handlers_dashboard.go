package http

import (
	"net/http"

	"butce/internal/core"
)

type dashboardResponse struct {
	Expenses       []ExpensePayload   `json:"expenses"`
	Assets         []AssetPayload     `json:"assets"`
	Portfolio      []PortfolioPayload `json:"portfolio"`
	Budget         BudgetPayload      `json:"budget"`
	PortfolioValue core.Money         `json:"portfolio_value"`
	Names          map[string]string  `json:"names"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	username, err := queryUsername(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dash, err := s.deps.Dashboards.Build(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Expenses:       newExpensePayloads(dash.Expenses),
		Assets:         newAssetPayloads(dash.Assets),
		Portfolio:      newPortfolioPayloads(dash.Portfolio),
		Budget:         newBudgetPayload(dash.Budget),
		PortfolioValue: dash.PortfolioValue,
		Names:          dash.Names,
	})
}
