package handlers

import (
	"encoding/json"
	"net/http"

	"memora-backend/internal/middleware"
	"memora-backend/internal/models"
	"memora-backend/internal/progress"
)

type ProgressHandler struct {
	tracker *progress.Tracker
}

func NewProgressHandler(tracker *progress.Tracker) *ProgressHandler {
	return &ProgressHandler{tracker: tracker}
}

// Get returns the learner's streak, XP and daily-goal snapshot. Reads never
// fail: a storage problem degrades to a default account.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	acc, err := h.tracker.Read(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch progress", r))
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

func (h *ProgressHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.ProgressSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.DailyGoalTarget != nil && *req.DailyGoalTarget <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "daily_goal_target must be greater than 0", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	acc, err := h.tracker.SetSettings(r.Context(), userID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update settings", r))
		return
	}

	writeJSON(w, http.StatusOK, acc)
}
