// handlers/admin_handler.go
package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/models"
	"github.com/gewnthar/fundscout/services"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, models.ErrorResponse{Error: message})
}

// AdminHandler starts ingest runs on request.
type AdminHandler struct {
	runner services.Runner
	token  string
	// runs outlive the request that started them
	baseCtx context.Context
	log     logger.Logger
}

func NewAdminHandler(baseCtx context.Context, runner services.Runner, token string, log logger.Logger) *AdminHandler {
	return &AdminHandler{runner: runner, token: token, baseCtx: baseCtx, log: log}
}

// TriggerIngest handles POST /api/admin/ingest. The caller must send the
// configured token in X-Admin-Token; with no token configured the endpoint
// is disabled.
func (h *AdminHandler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if h.token == "" {
		respondWithError(w, http.StatusNotFound, "Admin endpoints are disabled")
		return
	}
	given := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	err := h.runner.Trigger(h.baseCtx)
	switch {
	case errors.Is(err, services.ErrRunInProgress):
		respondWithError(w, http.StatusConflict, "An ingest run is already in progress")
	case err != nil:
		h.log.Error("Failed to start ingest run", logger.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to start ingest run")
	default:
		h.log.Info("Ingest run triggered", logger.String("remote", peerIP(r)))
		respondWithJSON(w, http.StatusAccepted, models.IngestAcceptedResponse{Message: "Ingest run started in background."})
	}
}
