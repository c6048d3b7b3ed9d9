package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"memora-backend/internal/middleware"
	"memora-backend/internal/models"
	"memora-backend/internal/reminder"
	"memora-backend/internal/repository"
)

type ReminderHandler struct {
	prefs     *repository.ReminderRepo
	scheduler *reminder.Scheduler
}

func NewReminderHandler(prefs *repository.ReminderRepo, scheduler *reminder.Scheduler) *ReminderHandler {
	return &ReminderHandler{prefs: prefs, scheduler: scheduler}
}

// Get returns the learner's reminder settings; a learner who never saved any
// sees the disabled defaults.
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	p, err := h.prefs.Get(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		p = &models.ReminderPrefs{
			UserID:   userID,
			Enabled:  false,
			RemindAt: reminder.DefaultRemindAt,
			Timezone: "UTC",
		}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch reminder settings", r))
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Update saves reminder settings and re-arms the learner's timer so the
// change takes effect immediately, not at the next sweep.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ReminderPrefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.RemindAt != nil {
		if _, err := time.Parse("15:04", *req.RemindAt); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "remind_at must be HH:MM in 24h format", r))
			return
		}
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown timezone", r))
			return
		}
	}

	userID := middleware.GetUserID(r.Context())

	p, err := h.prefs.Get(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		p = &models.ReminderPrefs{
			UserID:   userID,
			RemindAt: reminder.DefaultRemindAt,
			Timezone: "UTC",
		}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch reminder settings", r))
		return
	}

	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}
	if req.RemindAt != nil {
		p.RemindAt = *req.RemindAt
	}
	if req.Timezone != nil {
		p.Timezone = *req.Timezone
	}

	if err := h.prefs.Upsert(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save reminder settings", r))
		return
	}

	h.scheduler.Schedule(*p)

	writeJSON(w, http.StatusOK, p)
}
