package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

// ReminderRepo stores per-learner study-reminder preferences and the
// last-notified marker that suppresses duplicate reminders within a day.
type ReminderRepo struct {
	pool *pgxpool.Pool
}

func NewReminderRepo(pool *pgxpool.Pool) *ReminderRepo {
	return &ReminderRepo{pool: pool}
}

func (r *ReminderRepo) Get(ctx context.Context, userID uuid.UUID) (*models.ReminderPrefs, error) {
	p := &models.ReminderPrefs{}
	query := `SELECT user_id, enabled, remind_at, timezone, last_notified_at
		FROM reminder_prefs WHERE user_id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Enabled, &p.RemindAt, &p.Timezone, &p.LastNotifiedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Upsert writes the learner's reminder settings, preserving last_notified_at.
func (r *ReminderRepo) Upsert(ctx context.Context, p *models.ReminderPrefs) error {
	query := `INSERT INTO reminder_prefs (user_id, enabled, remind_at, timezone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			remind_at = EXCLUDED.remind_at,
			timezone = EXCLUDED.timezone`

	_, err := r.pool.Exec(ctx, query, p.UserID, p.Enabled, p.RemindAt, p.Timezone)
	return err
}

func (r *ReminderRepo) SetLastNotified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE reminder_prefs SET last_notified_at = $2 WHERE user_id = $1", userID, at)
	return err
}

// ListEnabled returns every learner with reminders switched on, for the
// periodic sweep that re-arms their timers.
func (r *ReminderRepo) ListEnabled(ctx context.Context) ([]models.ReminderPrefs, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, enabled, remind_at, timezone, last_notified_at
		FROM reminder_prefs WHERE enabled = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []models.ReminderPrefs
	for rows.Next() {
		p := models.ReminderPrefs{}
		if err := rows.Scan(&p.UserID, &p.Enabled, &p.RemindAt, &p.Timezone, &p.LastNotifiedAt); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}
