package server

import (
	"net/http"

	"cutroom/cache"
	"cutroom/logger"
	"cutroom/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CreateProjectRequest is the body for creating a project.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// CreateProjectHandler creates an empty project for the caller.
func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Project name is required")
		return
	}

	project := &model.Project{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   req.Name,
		Zoom:   1.0,
	}
	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		logger.Error("failed to create project", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// ListProjectsHandler lists the caller's projects plus their recently
// opened project IDs.
func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	projects, err := h.projectRepo.GetAllByUserID(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list projects", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	recent, err := cache.GetRecentProjects(r.Context(), userID)
	if err != nil {
		logger.Warn("failed to read recent projects", logger.ErrorField(err))
		recent = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"recent":   recent,
	})
}

// GetProjectHandler returns one project's metadata.
func (h *APIHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// DeleteProjectHandler removes a project. An open session is discarded
// without saving; deletion is explicit intent to drop the timeline.
func (h *APIHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	h.sessions.Discard(project.ID)
	if err := h.projectRepo.Delete(r.Context(), project.ID); err != nil {
		logger.Error("failed to delete project", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	if err := cache.DropSnapshot(r.Context(), project.ID); err != nil {
		logger.Warn("failed to drop autosave snapshot", logger.ErrorField(err))
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// OpenProjectHandler loads the project into a live editing session.
func (h *APIHandler) OpenProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	projectID := mux.Vars(r)["id"]

	sess, err := h.sessions.Open(r.Context(), projectID, userID)
	if err != nil {
		logger.Warn("failed to open project", logger.String("project", projectID), logger.ErrorField(err))
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	h.withTimeline(sess, func(payload map[string]interface{}) {
		respondJSON(w, http.StatusOK, payload)
	})
}

// SaveProjectHandler persists an open session.
func (h *APIHandler) SaveProjectHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownedProject(w, r); !ok {
		return
	}
	projectID := mux.Vars(r)["id"]
	if err := h.sessions.Save(r.Context(), projectID); err != nil {
		respondError(w, http.StatusConflict, "Project is not open")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// CloseProjectHandler saves and closes an open session.
func (h *APIHandler) CloseProjectHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownedProject(w, r); !ok {
		return
	}
	projectID := mux.Vars(r)["id"]
	if err := h.sessions.Close(r.Context(), projectID); err != nil {
		logger.Error("failed to close project", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to close project")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

// ownedProject resolves the {id} route variable to a project owned by
// the caller, answering the error response itself when that fails.
func (h *APIHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*model.Project, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	projectID := mux.Vars(r)["id"]
	project, err := h.projectRepo.GetByID(r.Context(), projectID)
	if err != nil {
		logger.Error("failed to load project", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load project")
		return nil, false
	}
	if project == nil || project.UserID != userID {
		respondError(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	return project, true
}
