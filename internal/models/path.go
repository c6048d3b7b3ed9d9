package models

import (
	"time"

	"github.com/google/uuid"
)

type NodeStatus string

const (
	NodeLocked    NodeStatus = "locked"
	NodeUnlocked  NodeStatus = "unlocked"
	NodeCompleted NodeStatus = "completed"
)

// PathNode is one step of a learning path. Topology (id, title, order) is
// static catalog data; Status is derived per learner from completion facts.
type PathNode struct {
	ID        uuid.UUID  `json:"id"`
	PathID    uuid.UUID  `json:"path_id"`
	Title     string     `json:"title"`
	TopicSlug string     `json:"topic_slug"`
	StepOrder int        `json:"step_order"`
	Status    NodeStatus `json:"status"`
}

// LearningPath is the read model built from topology plus completion facts.
type LearningPath struct {
	ID             uuid.UUID  `json:"id"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Nodes          []PathNode `json:"nodes"`
	TotalNodes     int        `json:"total_nodes"`
	CompletedNodes int        `json:"completed_nodes"`
}

// NodeCompletion is a durable completion fact for (learner, node).
// Append-only; completing an already-completed node is a no-op.
type NodeCompletion struct {
	UserID      uuid.UUID `json:"user_id"`
	NodeID      uuid.UUID `json:"node_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// PathSummary is the catalog listing entry with per-learner progress counts.
type PathSummary struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	TotalNodes     int       `json:"total_nodes"`
	CompletedNodes int       `json:"completed_nodes"`
}
