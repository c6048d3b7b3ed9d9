// Package progress maintains the per-learner streak, XP and daily-goal
// aggregate. Review events are coalesced through a trailing-edge debounce so a
// burst of card flips produces a single persisted update.
package progress

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"memora-backend/internal/calendar"
	"memora-backend/internal/models"
	"memora-backend/internal/repository"
)

// DefaultDebounce is the flush delay; each new review event restarts it.
const DefaultDebounce = 2 * time.Second

// AccountStore is the persistence contract the tracker needs. Satisfied by
// repository.AccountRepo.
type AccountStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error)
	CreateDefault(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error)
	Update(ctx context.Context, a *models.ProgressAccount) error
}

// Tracker owns one pending-increment counter and one resettable timer per
// learner. All state is explicit and instance-scoped; tests inject a fake
// clock and a short debounce.
type Tracker struct {
	store    AccountStore
	clock    calendar.Clock
	debounce time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*batch
}

type batch struct {
	count int
	gen   int
	timer *time.Timer
}

func NewTracker(store AccountStore, clock calendar.Clock, debounce time.Duration) *Tracker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Tracker{
		store:    store,
		clock:    clock,
		debounce: debounce,
		pending:  make(map[uuid.UUID]*batch),
	}
}

// RecordReview queues cards reviewed by the learner. Calls within the
// debounce window merge additively and restart the timer: a burst delays the
// flush, it never produces partial flushes. Non-positive counts count as one.
func (t *Tracker) RecordReview(userID uuid.UUID, count int) {
	if count < 1 {
		count = 1
	}

	t.mu.Lock()
	b := t.pending[userID]
	if b == nil {
		b = &batch{}
		t.pending[userID] = b
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.count += count
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(t.debounce, func() { t.flushTimer(userID, gen) })
	t.mu.Unlock()
}

// flushTimer is the debounce trailing edge. The generation check discards a
// fire that lost the race with a concurrent RecordReview reset.
func (t *Tracker) flushTimer(userID uuid.UUID, gen int) {
	t.mu.Lock()
	b := t.pending[userID]
	if b == nil || b.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.pending, userID)
	total := b.count
	t.mu.Unlock()

	t.apply(context.Background(), userID, total)
}

// Close flushes every pending batch synchronously. Called on shutdown so
// queued progress is not silently lost.
func (t *Tracker) Close() {
	t.mu.Lock()
	remaining := make(map[uuid.UUID]int, len(t.pending))
	for id, b := range t.pending {
		if b.timer != nil {
			b.timer.Stop()
		}
		remaining[id] = b.count
		delete(t.pending, id)
	}
	t.mu.Unlock()

	for id, total := range remaining {
		t.apply(context.Background(), id, total)
	}
}

// apply reads the account, performs the calendar rollover, adds the batch and
// persists. A failed write is logged and the batch dropped; the caller's next
// session re-establishes totals from storage.
func (t *Tracker) apply(ctx context.Context, userID uuid.UUID, total int) {
	acc, err := t.getOrCreate(ctx, userID)
	if err != nil {
		log.Printf("progress: flush for user %s dropped: %v", userID, err)
		return
	}

	now := t.clock.Now()
	loc := calendar.Location(acc.Timezone)
	today := calendar.DateOf(now, loc)

	var last calendar.Date
	if acc.LastStudyAt != nil {
		last = calendar.DateOf(*acc.LastStudyAt, loc)
	}

	if last != today {
		acc.DailyCardsCompleted = 0
		if !last.IsZero() && last == today.Prev() {
			acc.CurrentStreak++
		} else {
			// Never studied, or missed at least one day: today restarts the streak.
			acc.CurrentStreak = 1
		}
	}

	acc.CardsLearnedTotal += total
	acc.DailyCardsCompleted += total
	acc.XP += total * models.XPPerCard
	acc.LastStudyAt = &now

	if err := t.store.Update(ctx, acc); err != nil {
		log.Printf("progress: flush for user %s dropped: %v", userID, err)
	}
}

// Read returns the account with a non-persisting display correction: a lapsed
// streak reads as zero and a new day reads as zero cards, but storage is only
// corrected by the next actual review flush.
func (t *Tracker) Read(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error) {
	acc, err := t.getOrCreate(ctx, userID)
	if err != nil {
		// Degraded read: a storage hiccup shows defaults, never an error page.
		log.Printf("progress: read for user %s degraded to defaults: %v", userID, err)
		return defaultAccount(userID), nil
	}

	view := *acc
	if view.LastStudyAt == nil {
		return &view, nil
	}

	loc := calendar.Location(view.Timezone)
	today := calendar.DateOf(t.clock.Now(), loc)
	last := calendar.DateOf(*view.LastStudyAt, loc)

	switch {
	case last == today:
		// Studied today: stored values are current.
	case last == today.Prev():
		// Streak intact but a new day has started.
		view.DailyCardsCompleted = 0
	default:
		// Streak lapsed. Show zeros; the authoritative reset happens lazily
		// on the next review, not on viewing.
		view.CurrentStreak = 0
		view.DailyCardsCompleted = 0
	}
	return &view, nil
}

// SetSettings updates the learner-tunable fields through the same
// get-or-create path, so first use still initializes the row.
func (t *Tracker) SetSettings(ctx context.Context, userID uuid.UUID, req models.ProgressSettingsRequest) (*models.ProgressAccount, error) {
	acc, err := t.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DailyGoalTarget != nil && *req.DailyGoalTarget > 0 {
		acc.DailyGoalTarget = *req.DailyGoalTarget
	}
	if req.Timezone != nil {
		acc.Timezone = calendar.Location(*req.Timezone).String()
	}

	if err := t.store.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (t *Tracker) getOrCreate(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error) {
	acc, err := t.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return t.store.CreateDefault(ctx, userID)
	}
	return acc, err
}

func defaultAccount(userID uuid.UUID) *models.ProgressAccount {
	return &models.ProgressAccount{
		UserID:          userID,
		DailyGoalTarget: models.DefaultDailyGoal,
		Timezone:        "UTC",
	}
}
