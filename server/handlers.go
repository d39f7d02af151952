package server

import (
	"encoding/json"
	"net/http"

	"cutroom/config"
	"cutroom/core/session"
	"cutroom/metrics"
	"cutroom/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo    repository.UserRepository
	assetRepo   repository.AssetRepository
	projectRepo repository.ProjectRepository
	sessions    *session.Manager
	metrics     *metrics.Metrics
	cfg         *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
	projectRepo repository.ProjectRepository,
	sessions *session.Manager,
	m *metrics.Metrics,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:    userRepo,
		assetRepo:   assetRepo,
		projectRepo: projectRepo,
		sessions:    sessions,
		metrics:     m,
		cfg:         cfg,
	}
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError writes a JSON error body with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes a JSON request body into dst, answering 400 itself
// on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
