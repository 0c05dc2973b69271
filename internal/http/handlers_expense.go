package http

import (
	"net/http"

	"butce/internal/core"
)

type expenseMutationResponse struct {
	Expense ExpensePayload `json:"expense"`
	Budget  core.Money     `json:"budget"`
}

// Expense mutations never change the budget; the response still carries the
// stored value so clients render one consistent shape for all mutations.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload ExpensePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	expense, err := payload.toCore()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.deps.Expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), created.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, expenseMutationResponse{
		Expense: newExpensePayload(created),
		Budget:  budget.Amount,
	})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var payload ExpensePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	expense, err := payload.toCore()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	expense.ID = id

	updated, err := s.deps.Expenses.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), updated.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expenseMutationResponse{
		Expense: newExpensePayload(updated),
		Budget:  budget.Amount,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	expense, err := s.deps.Expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.deps.Expenses.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.deps.Budgets.GetBudget(r.Context(), expense.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]core.Money{"budget": budget.Amount})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	expense, err := s.deps.Expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpensePayload(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	username, err := queryUsername(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := s.deps.Expenses.ListExpenses(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]ExpensePayload{"expenses": newExpensePayloads(expenses)})
}
