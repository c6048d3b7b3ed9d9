package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"memora-backend/internal/middleware"
	"memora-backend/internal/path"
	"memora-backend/internal/repository"
)

type PathHandler struct {
	progression *path.Progression
}

func NewPathHandler(progression *path.Progression) *PathHandler {
	return &PathHandler{progression: progression}
}

func (h *PathHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	paths, err := h.progression.ListPaths(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch paths", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"paths": paths})
}

func (h *PathHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Path slug is required", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	p, err := h.progression.LoadPath(r.Context(), userID, slug)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Path not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch path", r))
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// CompleteNode records a node completion. Re-completing an already completed
// node succeeds without effect.
func (h *PathHandler) CompleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(chi.URLParam(r, "nodeID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid node ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	if err := h.progression.CompleteNode(r.Context(), userID, nodeID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to complete node", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Node completed"})
}
