// Package srs implements the SM-2 spaced-repetition schedule math. Everything
// here is a pure computation over models.CardSchedule; callers persist the
// result keyed by (learner, card).
package srs

import (
	"math"
	"time"

	"memora-backend/internal/models"
)

const (
	// MinEaseFactor is the SM-2 floor; ease never drops below it.
	MinEaseFactor = 1.3
	// InitialEaseFactor is the ease assigned to a never-reviewed card.
	InitialEaseFactor = 2.5

	// Quality thresholds on the 0-5 recall scale. Ratings below PassQuality
	// are lapses that reset the repetition ladder.
	PassQuality = 3
	MaxQuality  = 5
)

// Difficulty is the three-button UI rating.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// QualityForDifficulty maps the three-button rating onto the 0-5 SM-2 scale.
// Only {1, 3, 5} are reachable through this path; qualities {0, 2, 4} are
// intentionally skipped. Unknown labels are treated as medium.
func QualityForDifficulty(d Difficulty) int {
	switch d {
	case Easy:
		return 5
	case Hard:
		return 1
	default:
		return 3
	}
}

// Init returns the schedule for a card reviewed for the first time.
func Init(now time.Time) models.CardSchedule {
	return models.CardSchedule{
		EaseFactor:   InitialEaseFactor,
		IntervalDays: 1,
		Repetitions:  0,
		NextReviewAt: now,
	}
}

// Next computes the schedule after a review of the given quality. Out-of-range
// quality is clamped rather than rejected: scheduling never fails on human
// input. Stored intervals below one day are treated as one day.
func Next(prev models.CardSchedule, quality int, now time.Time) models.CardSchedule {
	if quality < 0 {
		quality = 0
	}
	if quality > MaxQuality {
		quality = MaxQuality
	}

	next := prev

	// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at 1.3.
	miss := float64(MaxQuality - quality)
	next.EaseFactor = prev.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	if next.EaseFactor < MinEaseFactor {
		next.EaseFactor = MinEaseFactor
	}

	if quality < PassQuality {
		// Lapse: back to the start of the ladder, no memory of the old interval.
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions = prev.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			prevInterval := prev.IntervalDays
			if prevInterval < 1 {
				prevInterval = 1
			}
			next.IntervalDays = int(math.Round(float64(prevInterval) * next.EaseFactor))
		}
	}

	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	reviewed := now
	next.LastReviewedAt = &reviewed
	return next
}

// IsDue reports whether the card should be shown at the given instant.
func IsDue(s models.CardSchedule, now time.Time) bool {
	return !now.Before(s.NextReviewAt)
}
