package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

// AccountRepo stores the per-learner ProgressAccount row.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Get(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error) {
	a := &models.ProgressAccount{}
	query := `SELECT user_id, cards_learned_total, daily_goal_target, daily_cards_completed,
			current_streak, xp, last_study_at, timezone, updated_at
		FROM progress_accounts WHERE user_id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&a.UserID, &a.CardsLearnedTotal, &a.DailyGoalTarget, &a.DailyCardsCompleted,
		&a.CurrentStreak, &a.XP, &a.LastStudyAt, &a.Timezone, &a.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// CreateDefault inserts the zeroed first-use account and returns it. Safe to
// race with another device: the existing row wins.
func (r *AccountRepo) CreateDefault(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error) {
	query := `INSERT INTO progress_accounts (user_id, daily_goal_target)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, models.DefaultDailyGoal); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// Update persists the whole account row. Last write wins at row granularity;
// the engine does not attempt conflict merging across devices.
func (r *AccountRepo) Update(ctx context.Context, a *models.ProgressAccount) error {
	query := `UPDATE progress_accounts SET
			cards_learned_total = $2,
			daily_goal_target = $3,
			daily_cards_completed = $4,
			current_streak = $5,
			xp = $6,
			last_study_at = $7,
			timezone = $8,
			updated_at = NOW()
		WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query,
		a.UserID, a.CardsLearnedTotal, a.DailyGoalTarget, a.DailyCardsCompleted,
		a.CurrentStreak, a.XP, a.LastStudyAt, a.Timezone,
	)
	return err
}

// SetDailyGoal updates only the goal/timezone settings fields.
func (r *AccountRepo) SetDailyGoal(ctx context.Context, userID uuid.UUID, target int, timezone string) error {
	query := `UPDATE progress_accounts SET
			daily_goal_target = $2,
			timezone = $3,
			updated_at = NOW()
		WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID, target, timezone)
	return err
}
