package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(d deps.Deps, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(d deps.Deps, w http.ResponseWriter, status int, msg string) {
	writeJSON(d, w, status, errorResponse{Error: msg})
}
