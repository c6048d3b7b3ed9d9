package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

// PathRepo serves learning-path topology (static catalog data) and the
// per-learner completion facts derived statuses are computed from.
type PathRepo struct {
	pool *pgxpool.Pool
}

func NewPathRepo(pool *pgxpool.Pool) *PathRepo {
	return &PathRepo{pool: pool}
}

// PathBySlug returns the path and its ordered node topology. Node statuses
// are left at the zero value; the progression engine assigns them.
func (r *PathRepo) PathBySlug(ctx context.Context, slug string) (*models.LearningPath, error) {
	p := &models.LearningPath{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, slug, title FROM learning_paths WHERE slug = $1", slug,
	).Scan(&p.ID, &p.Slug, &p.Title)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, path_id, title, topic_slug, step_order
		FROM path_nodes
		WHERE path_id = $1
		ORDER BY step_order ASC`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		n := models.PathNode{}
		if err := rows.Scan(&n.ID, &n.PathID, &n.Title, &n.TopicSlug, &n.StepOrder); err != nil {
			return nil, err
		}
		p.Nodes = append(p.Nodes, n)
	}
	return p, nil
}

// ListCompleted returns the set of node ids this learner has completed on the
// given path.
func (r *PathRepo) ListCompleted(ctx context.Context, userID, pathID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT nc.node_id
		FROM node_completions nc
		JOIN path_nodes pn ON pn.id = nc.node_id
		WHERE nc.user_id = $1 AND pn.path_id = $2`, userID, pathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var nodeID uuid.UUID
		if err := rows.Scan(&nodeID); err != nil {
			return nil, err
		}
		completed[nodeID] = struct{}{}
	}
	return completed, nil
}

// MarkComplete appends a completion fact. Idempotent: re-completing a node
// keeps the original timestamp and is not an error.
func (r *PathRepo) MarkComplete(ctx context.Context, userID, nodeID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO node_completions (user_id, node_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, node_id) DO NOTHING`, userID, nodeID, at)
	return err
}

// ListPaths returns the path catalog with per-learner completion counts.
func (r *PathRepo) ListPaths(ctx context.Context, userID uuid.UUID) ([]models.PathSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lp.id, lp.slug, lp.title,
			COUNT(pn.id),
			COUNT(nc.node_id)
		FROM learning_paths lp
		LEFT JOIN path_nodes pn ON pn.path_id = lp.id
		LEFT JOIN node_completions nc ON nc.node_id = pn.id AND nc.user_id = $1
		GROUP BY lp.id, lp.slug, lp.title
		ORDER BY lp.title ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []models.PathSummary
	for rows.Next() {
		p := models.PathSummary{}
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.TotalNodes, &p.CompletedNodes); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
