package models

import (
	"time"

	"github.com/google/uuid"
)

// CardSchedule is the per-(learner, card) spaced-repetition state.
// One row per pair; it is upserted on every review and never deleted.
type CardSchedule struct {
	UserID         uuid.UUID  `json:"user_id"`
	CardID         uuid.UUID  `json:"card_id"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
}

type ReviewRequest struct {
	// Difficulty is the three-button UI rating: "easy" | "medium" | "hard".
	Difficulty string `json:"difficulty"`
	// Quality optionally supplies a raw 0-5 recall rating instead.
	Quality *int `json:"quality,omitempty"`
}
