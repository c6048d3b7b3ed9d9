package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

// ScheduleRepo stores one CardSchedule row per (learner, card) pair.
type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

func (r *ScheduleRepo) Get(ctx context.Context, userID, cardID uuid.UUID) (*models.CardSchedule, error) {
	s := &models.CardSchedule{}
	query := `SELECT user_id, card_id, ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at
		FROM card_schedules WHERE user_id = $1 AND card_id = $2`

	err := r.pool.QueryRow(ctx, query, userID, cardID).Scan(
		&s.UserID, &s.CardID, &s.EaseFactor, &s.IntervalDays, &s.Repetitions, &s.NextReviewAt, &s.LastReviewedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Put upserts the schedule. A review always supersedes the prior row; last
// write wins across devices.
func (r *ScheduleRepo) Put(ctx context.Context, s *models.CardSchedule) error {
	query := `INSERT INTO card_schedules
			(user_id, card_id, ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			next_review_at = EXCLUDED.next_review_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at`

	_, err := r.pool.Exec(ctx, query,
		s.UserID, s.CardID, s.EaseFactor, s.IntervalDays, s.Repetitions, s.NextReviewAt, s.LastReviewedAt,
	)
	return err
}

// ListDue returns schedules due at or before now, hardest-first (lowest ease,
// then most overdue).
func (r *ScheduleRepo) ListDue(ctx context.Context, userID uuid.UUID, limit int) ([]models.CardSchedule, error) {
	query := `SELECT user_id, card_id, ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at
		FROM card_schedules
		WHERE user_id = $1 AND next_review_at <= NOW()
		ORDER BY ease_factor ASC, next_review_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []models.CardSchedule
	for rows.Next() {
		s := models.CardSchedule{}
		err := rows.Scan(&s.UserID, &s.CardID, &s.EaseFactor, &s.IntervalDays, &s.Repetitions, &s.NextReviewAt, &s.LastReviewedAt)
		if err != nil {
			return nil, err
		}
		due = append(due, s)
	}
	return due, nil
}
