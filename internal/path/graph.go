// Package path computes learning-path unlock state. Node topology is static
// catalog data; per-learner completion facts drive the locked → unlocked →
// completed progression.
package path

import (
	"context"
	"time"

	"github.com/google/uuid"

	"memora-backend/internal/calendar"
	"memora-backend/internal/models"
)

// Build assigns node statuses from completion facts and derives the progress
// counts. Pure: the input path's nodes are copied, not mutated. An empty
// topology yields an empty read model, never an error.
//
// A node is completed iff a fact exists for it, unlocked iff it is first or
// its immediate predecessor is completed, else locked. A forward-chaining
// pass then promotes the successor of every completed node, so facts supplied
// out of order still open the right doors.
func Build(p models.LearningPath, completed map[uuid.UUID]struct{}) models.LearningPath {
	out := p
	out.Nodes = make([]models.PathNode, len(p.Nodes))
	copy(out.Nodes, p.Nodes)

	for i := range out.Nodes {
		out.Nodes[i].StepOrder = i + 1

		_, done := completed[out.Nodes[i].ID]
		switch {
		case done:
			out.Nodes[i].Status = models.NodeCompleted
		case i == 0:
			out.Nodes[i].Status = models.NodeUnlocked
		case out.Nodes[i-1].Status == models.NodeCompleted:
			out.Nodes[i].Status = models.NodeUnlocked
		default:
			out.Nodes[i].Status = models.NodeLocked
		}
	}

	// Forward chaining: a completed node opens its successor even when the
	// completion arrived out of order.
	for i := 0; i+1 < len(out.Nodes); i++ {
		if out.Nodes[i].Status == models.NodeCompleted && out.Nodes[i+1].Status == models.NodeLocked {
			out.Nodes[i+1].Status = models.NodeUnlocked
		}
	}

	out.TotalNodes = len(out.Nodes)
	out.CompletedNodes = 0
	for _, n := range out.Nodes {
		if n.Status == models.NodeCompleted {
			out.CompletedNodes++
		}
	}
	return out
}

// TopologyProvider serves static path topology; owned by catalog data, not
// this engine. Satisfied by repository.PathRepo.
type TopologyProvider interface {
	PathBySlug(ctx context.Context, slug string) (*models.LearningPath, error)
	ListPaths(ctx context.Context, userID uuid.UUID) ([]models.PathSummary, error)
}

// FactStore persists completion facts. Satisfied by repository.PathRepo.
type FactStore interface {
	ListCompleted(ctx context.Context, userID, pathID uuid.UUID) (map[uuid.UUID]struct{}, error)
	MarkComplete(ctx context.Context, userID, nodeID uuid.UUID, at time.Time) error
}

// Progression is the learner-facing service over topology plus facts.
type Progression struct {
	topo  TopologyProvider
	facts FactStore
	clock calendar.Clock
}

func NewProgression(topo TopologyProvider, facts FactStore, clock calendar.Clock) *Progression {
	return &Progression{topo: topo, facts: facts, clock: clock}
}

// LoadPath rebuilds the read model for one learner from persisted facts.
func (p *Progression) LoadPath(ctx context.Context, userID uuid.UUID, slug string) (*models.LearningPath, error) {
	topo, err := p.topo.PathBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	completed, err := p.facts.ListCompleted(ctx, userID, topo.ID)
	if err != nil {
		return nil, err
	}

	built := Build(*topo, completed)
	return &built, nil
}

// CompleteNode appends the completion fact for (learner, node). Idempotent:
// re-completing is a no-op for the caller.
func (p *Progression) CompleteNode(ctx context.Context, userID, nodeID uuid.UUID) error {
	return p.facts.MarkComplete(ctx, userID, nodeID, p.clock.Now())
}

// ListPaths returns the catalog with the learner's completion counts.
func (p *Progression) ListPaths(ctx context.Context, userID uuid.UUID) ([]models.PathSummary, error) {
	return p.topo.ListPaths(ctx, userID)
}
