package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"memora-backend/internal/models"
	"memora-backend/internal/services"
)

// ─── Shared Helper Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "ok" {
		t.Errorf("Expected message 'ok', got %q", result["message"])
	}
}

func TestErrorRespEchoesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Path not found", req)

	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", resp.Error.Code)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "Invalid"}}, http.StatusBadRequest},
		{"conflict", &services.ConflictError{Message: "Email already registered"}, http.StatusConflict},
		{"not found", &services.NotFoundError{Message: "User not found"}, http.StatusNotFound},
		{"unauthorized", &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized},
		{"forbidden", &services.ForbiddenError{Message: "Access denied"}, http.StatusForbidden},
		{"rate limited", &services.RateLimitError{Message: "Too many attempts"}, http.StatusTooManyRequests},
		{"unknown", http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantCode {
				t.Errorf("Expected status %d, got %d", tc.wantCode, rr.Code)
			}
		})
	}
}

// ─── Request Parsing Tests ───

func TestReviewRequestParsing(t *testing.T) {
	body := []byte(`{"difficulty": "easy"}`)

	var req models.ReviewRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		t.Fatalf("Failed to parse request body: %v", err)
	}

	if req.Difficulty != "easy" {
		t.Errorf("Expected difficulty 'easy', got %q", req.Difficulty)
	}
	if req.Quality != nil {
		t.Errorf("Expected quality unset, got %d", *req.Quality)
	}
}

func TestReviewRequestParsing_RawQuality(t *testing.T) {
	body := []byte(`{"quality": 4}`)

	var req models.ReviewRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		t.Fatalf("Failed to parse request body: %v", err)
	}

	if req.Quality == nil || *req.Quality != 4 {
		t.Errorf("Expected quality 4, got %v", req.Quality)
	}
}

func TestReminderPrefsRequestParsing_PartialUpdate(t *testing.T) {
	body := []byte(`{"remind_at": "07:30"}`)

	var req models.ReminderPrefsRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		t.Fatalf("Failed to parse request body: %v", err)
	}

	if req.RemindAt == nil || *req.RemindAt != "07:30" {
		t.Errorf("Expected remind_at '07:30', got %v", req.RemindAt)
	}
	if req.Enabled != nil {
		t.Errorf("Expected enabled unset, got %v", *req.Enabled)
	}
	if req.Timezone != nil {
		t.Errorf("Expected timezone unset, got %v", *req.Timezone)
	}
}
