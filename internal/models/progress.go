package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultDailyGoal = 20
	XPPerCard        = 10
)

// ProgressAccount is the per-learner streak/XP/daily-goal aggregate.
// Created with zeroed defaults on first access; never deleted.
type ProgressAccount struct {
	UserID              uuid.UUID  `json:"user_id"`
	CardsLearnedTotal   int        `json:"cards_learned_total"`
	DailyGoalTarget     int        `json:"daily_goal_target"`
	DailyCardsCompleted int        `json:"daily_cards_completed"`
	CurrentStreak       int        `json:"current_streak"`
	XP                  int        `json:"xp"`
	LastStudyAt         *time.Time `json:"last_study_at"`
	// Timezone is the IANA zone used for all calendar-day comparisons
	// (streak continuation, daily rollover). Defaults to UTC.
	Timezone  string    `json:"timezone"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProgressSettingsRequest struct {
	DailyGoalTarget *int    `json:"daily_goal_target,omitempty"`
	Timezone        *string `json:"timezone,omitempty"`
}
