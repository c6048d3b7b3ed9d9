package path

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"memora-backend/internal/models"
)

func topology(n int) (models.LearningPath, []uuid.UUID) {
	p := models.LearningPath{ID: uuid.New(), Slug: "go-basics", Title: "Go Basics"}
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		ids[i] = uuid.New()
		p.Nodes = append(p.Nodes, models.PathNode{
			ID:        ids[i],
			PathID:    p.ID,
			Title:     "Step",
			StepOrder: i + 1,
		})
	}
	return p, ids
}

func completedSet(ids ...uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{})
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func statuses(p models.LearningPath) []models.NodeStatus {
	out := make([]models.NodeStatus, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.Status
	}
	return out
}

func assertStatuses(t *testing.T, got, want []models.NodeStatus) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d statuses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("node %d: status %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestBuildNoCompletions(t *testing.T) {
	topo, _ := topology(3)
	built := Build(topo, completedSet())

	assertStatuses(t, statuses(built),
		[]models.NodeStatus{models.NodeUnlocked, models.NodeLocked, models.NodeLocked})
	if built.TotalNodes != 3 || built.CompletedNodes != 0 {
		t.Fatalf("counts = %d/%d, want 3/0", built.TotalNodes, built.CompletedNodes)
	}
}

func TestBuildFirstNodeCompleted(t *testing.T) {
	topo, ids := topology(3)
	built := Build(topo, completedSet(ids[0]))

	assertStatuses(t, statuses(built),
		[]models.NodeStatus{models.NodeCompleted, models.NodeUnlocked, models.NodeLocked})
	if built.CompletedNodes != 1 {
		t.Fatalf("completed = %d, want 1", built.CompletedNodes)
	}
}

func TestBuildOutOfOrderCompletionForwardChains(t *testing.T) {
	// A and C done, B skipped: B must still be unlocked by the chaining pass.
	topo, ids := topology(3)
	built := Build(topo, completedSet(ids[0], ids[2]))

	assertStatuses(t, statuses(built),
		[]models.NodeStatus{models.NodeCompleted, models.NodeUnlocked, models.NodeCompleted})
	if built.CompletedNodes != 2 {
		t.Fatalf("completed = %d, want 2", built.CompletedNodes)
	}
}

func TestBuildMiddleOnlyCompletion(t *testing.T) {
	// Only B done: A stays unlocked (first node), C opens behind B.
	topo, ids := topology(3)
	built := Build(topo, completedSet(ids[1]))

	assertStatuses(t, statuses(built),
		[]models.NodeStatus{models.NodeUnlocked, models.NodeCompleted, models.NodeUnlocked})
}

func TestBuildAllCompleted(t *testing.T) {
	topo, ids := topology(4)
	built := Build(topo, completedSet(ids...))

	for i, n := range built.Nodes {
		if n.Status != models.NodeCompleted {
			t.Fatalf("node %d not completed", i)
		}
	}
	if built.CompletedNodes != 4 {
		t.Fatalf("completed = %d, want 4", built.CompletedNodes)
	}
}

func TestBuildEmptyTopology(t *testing.T) {
	built := Build(models.LearningPath{Slug: "empty"}, completedSet())

	if built.TotalNodes != 0 || built.CompletedNodes != 0 || len(built.Nodes) != 0 {
		t.Fatalf("empty topology should yield an empty read model, got %+v", built)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	topo, ids := topology(2)
	Build(topo, completedSet(ids[0]))

	for i, n := range topo.Nodes {
		if n.Status != "" {
			t.Fatalf("input topology mutated at node %d: %q", i, n.Status)
		}
	}
}

// fakeFacts is an in-memory FactStore with upsert semantics matching the
// SQL ON CONFLICT DO NOTHING behavior.
type fakeFacts struct {
	mu    sync.Mutex
	facts map[uuid.UUID]map[uuid.UUID]time.Time // user -> node -> completed at
}

func newFakeFacts() *fakeFacts {
	return &fakeFacts{facts: make(map[uuid.UUID]map[uuid.UUID]time.Time)}
}

func (f *fakeFacts) ListCompleted(_ context.Context, userID, _ uuid.UUID) (map[uuid.UUID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[uuid.UUID]struct{})
	for node := range f.facts[userID] {
		set[node] = struct{}{}
	}
	return set, nil
}

func (f *fakeFacts) MarkComplete(_ context.Context, userID, nodeID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.facts[userID] == nil {
		f.facts[userID] = make(map[uuid.UUID]time.Time)
	}
	if _, exists := f.facts[userID][nodeID]; !exists {
		f.facts[userID][nodeID] = at
	}
	return nil
}

type fakeTopo struct {
	path models.LearningPath
}

func (f *fakeTopo) PathBySlug(context.Context, string) (*models.LearningPath, error) {
	p := f.path
	return &p, nil
}

func (f *fakeTopo) ListPaths(context.Context, uuid.UUID) ([]models.PathSummary, error) {
	return []models.PathSummary{{ID: f.path.ID, Slug: f.path.Slug, Title: f.path.Title, TotalNodes: len(f.path.Nodes)}}, nil
}

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func TestCompleteNodeIsIdempotent(t *testing.T) {
	topo, ids := topology(3)
	facts := newFakeFacts()
	prog := NewProgression(&fakeTopo{path: topo}, facts, stubClock{now: time.Now()})
	userID := uuid.New()
	ctx := context.Background()

	if err := prog.CompleteNode(ctx, userID, ids[0]); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if err := prog.CompleteNode(ctx, userID, ids[0]); err != nil {
		t.Fatalf("repeat completion must be a no-op, not an error: %v", err)
	}

	built, err := prog.LoadPath(ctx, userID, topo.Slug)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if built.CompletedNodes != 1 {
		t.Fatalf("completed = %d after double completion, want 1", built.CompletedNodes)
	}
}

func TestLoadPathRecomputesFromFacts(t *testing.T) {
	topo, ids := topology(3)
	facts := newFakeFacts()
	prog := NewProgression(&fakeTopo{path: topo}, facts, stubClock{now: time.Now()})
	userID := uuid.New()
	ctx := context.Background()

	// Complete the last node first; chaining still only opens node 2.
	if err := prog.CompleteNode(ctx, userID, ids[2]); err != nil {
		t.Fatalf("complete: %v", err)
	}

	built, err := prog.LoadPath(ctx, userID, topo.Slug)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertStatuses(t, statuses(*built),
		[]models.NodeStatus{models.NodeUnlocked, models.NodeLocked, models.NodeCompleted})
}
