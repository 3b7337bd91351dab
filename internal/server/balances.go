package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/service"
)

type balancePayload struct {
	UserID   string          `json:"user_id"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type paymentPayload struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

type balancesResponse struct {
	GroupID  string                      `json:"group_id"`
	Balances map[string][]balancePayload `json:"balances"`
	Plans    map[string][]paymentPayload `json:"plans"`
}

type reconciledResponse struct {
	GroupID  string           `json:"group_id"`
	Currency string           `json:"currency"`
	Balances []balancePayload `json:"balances"`
	Plan     []paymentPayload `json:"plan"`
}

func toBalancePayloads(balances []models.Balance) []balancePayload {
	out := make([]balancePayload, len(balances))
	for i, b := range balances {
		out[i] = balancePayload{UserID: b.UserID, Currency: b.Currency, Amount: b.Amount}
	}
	return out
}

func toPaymentPayloads(payments []models.Payment) []paymentPayload {
	out := make([]paymentPayload, len(payments))
	for i, p := range payments {
		out[i] = paymentPayload{FromUserID: p.FromUserID, ToUserID: p.ToUserID, Amount: p.Amount, Currency: p.Currency}
	}
	return out
}

func toBalancesResponse(v *service.GroupBalances) balancesResponse {
	resp := balancesResponse{
		GroupID:  v.GroupID,
		Balances: make(map[string][]balancePayload, len(v.Balances)),
		Plans:    make(map[string][]paymentPayload, len(v.Plans)),
	}
	for currency, balances := range v.Balances {
		resp.Balances[currency] = toBalancePayloads(balances)
	}
	for currency, plan := range v.Plans {
		resp.Plans[currency] = toPaymentPayloads(plan)
	}
	return resp
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	view, err := s.balances.Balances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toBalancesResponse(view))
}

func (s *Server) getReconciledBalances(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		http.Error(w, "currency query parameter is required", http.StatusBadRequest)
		return
	}

	view, err := s.balances.Reconciled(r.Context(), chi.URLParam(r, "groupID"), currency)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reconciledResponse{
		GroupID:  view.GroupID,
		Currency: view.Currency,
		Balances: toBalancePayloads(view.Balances),
		Plan:     toPaymentPayloads(view.Plan),
	})
}
