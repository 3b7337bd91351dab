package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
)

type settlementRequest struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Note       string          `json:"note"`
	CreatedBy  string          `json:"created_by"`
}

type settlementResponse struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	FromUserID  string          `json:"from_user_id"`
	ToUserID    string          `json:"to_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	CreatedAt   int64           `json:"created_at"`
	CompletedAt int64           `json:"completed_at,omitempty"`
	CreatedBy   string          `json:"created_by"`
	Note        string          `json:"note,omitempty"`
}

// recordSettlementResponse reports whether the payment was recorded or
// recognized as an already-settled duplicate.
type recordSettlementResponse struct {
	Recorded   bool                `json:"recorded"`
	Settlement *settlementResponse `json:"settlement,omitempty"`
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:          s.ID,
		GroupID:     s.GroupID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Amount:      s.Amount,
		Currency:    s.Currency,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
		CreatedBy:   s.CreatedBy,
		Note:        s.Note,
	}
}

func (s *Server) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment := models.Payment{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Currency:   req.Currency,
	}
	settlement, recorded, err := s.settlements.RecordPayment(r.Context(), chi.URLParam(r, "groupID"), payment, req.Note, req.CreatedBy)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := recordSettlementResponse{Recorded: recorded}
	status := http.StatusOK
	if recorded {
		status = http.StatusCreated
		sr := toSettlementResponse(settlement)
		resp.Settlement = &sr
	}
	respondJSON(w, status, resp)
}

func (s *Server) suggestSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment := models.Payment{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Currency:   req.Currency,
	}
	settlement, err := s.settlements.SuggestSettlement(r.Context(), chi.URLParam(r, "groupID"), payment, req.Note, req.CreatedBy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

func (s *Server) listSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.settlements.ListSettlements(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]settlementResponse, len(settlements))
	for i := range settlements {
		out[i] = toSettlementResponse(&settlements[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.settlements.GetSettlement(r.Context(), chi.URLParam(r, "settlementID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (s *Server) deleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := s.settlements.DeleteSettlement(r.Context(), chi.URLParam(r, "settlementID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
