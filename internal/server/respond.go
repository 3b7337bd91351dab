// Package server exposes the settlement engine over HTTP with JSON bodies.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tabsplit/tabsplit/internal/fx"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// respondError maps domain errors onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidExpense),
		errors.Is(err, models.ErrInvalidSettlement),
		errors.Is(err, models.ErrInvalidGroup):
		status = http.StatusBadRequest
	case errors.Is(err, fx.ErrMissingRate):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}
