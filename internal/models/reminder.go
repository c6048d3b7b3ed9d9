package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderPrefs holds a learner's daily study-reminder settings.
// RemindAt is a local wall-clock time in "HH:MM" 24h format.
type ReminderPrefs struct {
	UserID         uuid.UUID  `json:"user_id"`
	Enabled        bool       `json:"enabled"`
	RemindAt       string     `json:"remind_at"`
	Timezone       string     `json:"timezone"`
	LastNotifiedAt *time.Time `json:"last_notified_at"`
}

type ReminderPrefsRequest struct {
	Enabled  *bool   `json:"enabled,omitempty"`
	RemindAt *string `json:"remind_at,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

// WSMessage is the envelope pushed to connected clients over the hub.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ReminderNotification is the payload for type "study_reminder".
type ReminderNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
