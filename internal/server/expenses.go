package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
)

type splitPayload struct {
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent,omitempty"`
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PayerID     string          `json:"payer_id"`
	CreatedBy   string          `json:"created_by"`
	Splits      []splitPayload  `json:"splits"`
}

type expenseResponse struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	BaseCurrency string          `json:"base_currency"`
	PayerID      string          `json:"payer_id"`
	Splits       []splitPayload  `json:"splits"`
	CreatedAt    int64           `json:"created_at"`
	CreatedBy    string          `json:"created_by"`
}

func toExpense(groupID string, req expenseRequest) *models.Expense {
	splits := make([]models.Split, len(req.Splits))
	for i, sp := range req.Splits {
		splits[i] = models.Split{UserID: sp.UserID, Amount: sp.Amount, Percent: sp.Percent}
	}
	return &models.Expense{
		GroupID:     groupID,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		PayerID:     req.PayerID,
		CreatedBy:   req.CreatedBy,
		Splits:      splits,
	}
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	splits := make([]splitPayload, len(e.Splits))
	for i, sp := range e.Splits {
		splits[i] = splitPayload{UserID: sp.UserID, Amount: sp.Amount, Percent: sp.Percent}
	}
	return expenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		Amount:       e.Amount,
		Currency:     e.Currency,
		BaseAmount:   e.BaseAmount,
		BaseCurrency: e.BaseCurrency,
		PayerID:      e.PayerID,
		Splits:       splits,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	expense, err := s.expenses.CreateExpense(r.Context(), toExpense(chi.URLParam(r, "groupID"), req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.expenses.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	expense := toExpense("", req)
	expense.ID = chi.URLParam(r, "expenseID")
	updated, err := s.expenses.UpdateExpense(r.Context(), expense)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), chi.URLParam(r, "expenseID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
