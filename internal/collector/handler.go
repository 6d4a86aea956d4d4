package collector

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Handler exposes the collection run lifecycle over HTTP.
type Handler struct {
	manager *RunManager
}

// NewHandler creates a new handler with the given manager.
func NewHandler(manager *RunManager) *Handler {
	return &Handler{
		manager: manager,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// StartCollect handles POST /api/v1/collect
func (h *Handler) StartCollect(w http.ResponseWriter, r *http.Request) {
	job, err := h.manager.Start(r.Context())
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":     job.ID.String(),
		"status":     "running",
		"started_at": job.StartedAt.Format(time.RFC3339),
	})
}

// StopCollect handles DELETE /api/v1/collect/current
func (h *Handler) StopCollect(w http.ResponseWriter, r *http.Request) {
	h.manager.Stop()
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "collection run stopped",
	})
}

// Status handles GET /api/v1/collect/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	current := h.manager.Current()
	if current == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "idle",
			"telegram_status": string(h.manager.GetTelegramStatus()),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "running",
		"run_id":          current.ID.String(),
		"started_at":      current.StartedAt.Format(time.RFC3339),
		"telegram_status": string(h.manager.GetTelegramStatus()),
	})
}

// helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
