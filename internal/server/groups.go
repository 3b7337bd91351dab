package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabsplit/tabsplit/internal/models"
)

type memberPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type createGroupRequest struct {
	Name         string          `json:"name"`
	BaseCurrency string          `json:"base_currency"`
	Members      []memberPayload `json:"members"`
}

type groupResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	BaseCurrency string          `json:"base_currency"`
	Members      []memberPayload `json:"members"`
	CreatedAt    int64           `json:"created_at"`
}

func toMembers(payload []memberPayload) []models.Member {
	members := make([]models.Member, len(payload))
	for i, m := range payload {
		members[i] = models.Member{UserID: m.UserID, DisplayName: m.DisplayName}
	}
	return members
}

func toGroupResponse(g *models.Group) groupResponse {
	members := make([]memberPayload, len(g.Members))
	for i, m := range g.Members {
		members[i] = memberPayload{UserID: m.UserID, DisplayName: m.DisplayName}
	}
	return groupResponse{
		ID:           g.ID,
		Name:         g.Name,
		BaseCurrency: g.BaseCurrency,
		Members:      members,
		CreatedAt:    g.CreatedAt,
	}
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.BaseCurrency, toMembers(req.Members))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	group, err := s.groups.UpdateGroup(r.Context(), &models.Group{
		ID:      chi.URLParam(r, "groupID"),
		Name:    req.Name,
		Members: toMembers(req.Members),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) addMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Members []memberPayload `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.groups.AddMembers(r.Context(), chi.URLParam(r, "groupID"), toMembers(req.Members)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
