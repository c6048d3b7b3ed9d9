package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"memora-backend/internal/middleware"
	"memora-backend/internal/models"
	"memora-backend/internal/progress"
	"memora-backend/internal/repository"
	"memora-backend/internal/srs"
)

const defaultDueLimit = 20

type ReviewHandler struct {
	schedules *repository.ScheduleRepo
	tracker   *progress.Tracker
}

func NewReviewHandler(schedules *repository.ScheduleRepo, tracker *progress.Tracker) *ReviewHandler {
	return &ReviewHandler{schedules: schedules, tracker: tracker}
}

// Rate records one review of a card and returns the updated schedule.
// A card never seen before gets a fresh schedule on the spot.
func (h *ReviewHandler) Rate(w http.ResponseWriter, r *http.Request) {
	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return
	}

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	quality := srs.QualityForDifficulty(srs.Difficulty(req.Difficulty))
	if req.Quality != nil {
		quality = *req.Quality
	}

	userID := middleware.GetUserID(r.Context())
	now := time.Now()

	prev, err := h.schedules.Get(r.Context(), userID, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		fresh := srs.Init(now)
		prev = &fresh
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load schedule", r))
		return
	}

	next := srs.Next(*prev, quality, now)
	next.UserID = userID
	next.CardID = cardID

	if err := h.schedules.Put(r.Context(), &next); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save schedule", r))
		return
	}

	h.tracker.RecordReview(userID, 1)

	writeJSON(w, http.StatusOK, next)
}

// Due lists the cards whose next review time has arrived, hardest first.
func (h *ReviewHandler) Due(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := defaultDueLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "limit must be a positive integer", r))
			return
		}
		limit = n
	}

	due, err := h.schedules.ListDue(r.Context(), userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch due cards", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"due":   due,
		"count": len(due),
	})
}
