// Package reminder decides whether and when a learner gets their daily study
// nudge. It shares the "has the user acted today" calendar predicate with the
// progress tracker and keeps at most one armed timer per learner.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"memora-backend/internal/calendar"
	"memora-backend/internal/models"
)

// DefaultRemindAt is used when a stored time-of-day fails to parse.
const DefaultRemindAt = "20:00"

// ShouldNotifyToday reports whether a reminder is warranted at this instant:
// true iff the learner has neither studied nor been notified today, by
// calendar-day comparison in loc.
func ShouldNotifyToday(lastStudyAt, lastNotifiedAt *time.Time, now time.Time, loc *time.Location) bool {
	today := calendar.DateOf(now, loc)

	if lastStudyAt != nil && calendar.DateOf(*lastStudyAt, loc) == today {
		return false
	}
	if lastNotifiedAt != nil && calendar.DateOf(*lastNotifiedAt, loc) == today {
		return false
	}
	return true
}

// ParseTimeOfDay parses a "HH:MM" 24h wall-clock string. Bad input falls back
// to DefaultRemindAt rather than erroring (clamp policy for human input).
func ParseTimeOfDay(s string) (hour, minute int) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 20, 0
	}
	return hour, minute
}

// Store is the reminder-prefs persistence contract (repository.ReminderRepo).
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ReminderPrefs, error)
	SetLastNotified(ctx context.Context, userID uuid.UUID, at time.Time) error
	ListEnabled(ctx context.Context) ([]models.ReminderPrefs, error)
}

// StudyLog answers when the learner last studied (repository.AccountRepo).
type StudyLog interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ProgressAccount, error)
}

// Sink delivers the actual notification; fire-and-forget from the engine's
// perspective.
type Sink interface {
	Notify(ctx context.Context, userID uuid.UUID, n models.ReminderNotification) error
}

// Scheduler arms one-shot per-learner timers at the chosen reminder time of
// day, plus an hourly sweep that re-arms timers for every enabled learner
// (covers process restarts and prefs changed from another device).
type Scheduler struct {
	store Store
	study StudyLog
	sink  Sink
	clock calendar.Clock
	cron  *gocron.Scheduler

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func NewScheduler(store Store, study StudyLog, sink Sink, clock calendar.Clock) *Scheduler {
	return &Scheduler{
		store:  store,
		study:  study,
		sink:   sink,
		clock:  clock,
		cron:   gocron.NewScheduler(time.UTC),
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

// Start runs the sweep now and then hourly.
func (s *Scheduler) Start() {
	s.cron.Every(1).Hour().Do(s.sweep)
	s.cron.StartAsync()
	go s.sweep()
}

// Stop halts the sweep and disarms every pending timer.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

// Schedule arms (or re-arms) the learner's reminder. Any previously armed
// timer is cancelled first, so at most one reminder is ever pending per
// learner. If today's reminder time has already passed, it fires immediately.
func (s *Scheduler) Schedule(prefs models.ReminderPrefs) {
	s.Cancel(prefs.UserID)

	if !prefs.Enabled {
		return
	}

	now := s.clock.Now()
	loc := calendar.Location(prefs.Timezone)
	hour, minute := ParseTimeOfDay(prefs.RemindAt)

	local := now.In(loc)
	fireAt := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	delay := fireAt.Sub(now)
	if delay <= 0 {
		s.fire(prefs.UserID)
		return
	}

	s.mu.Lock()
	s.timers[prefs.UserID] = time.AfterFunc(delay, func() { s.fire(prefs.UserID) })
	s.mu.Unlock()
}

// Cancel disarms the learner's pending reminder, if any.
func (s *Scheduler) Cancel(userID uuid.UUID) {
	s.mu.Lock()
	if t, ok := s.timers[userID]; ok {
		t.Stop()
		delete(s.timers, userID)
	}
	s.mu.Unlock()
}

// fire runs on both the immediate and the timer branch. The last-notified
// marker is persisted before the sink side effect, so neither branch can
// produce a duplicate reminder within the same day.
func (s *Scheduler) fire(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, userID)
	s.mu.Unlock()

	ctx := context.Background()

	prefs, err := s.store.Get(ctx, userID)
	if err != nil {
		log.Printf("reminder: skipping user %s: %v", userID, err)
		return
	}
	if !prefs.Enabled {
		return
	}

	var lastStudyAt *time.Time
	if acc, err := s.study.Get(ctx, userID); err == nil {
		lastStudyAt = acc.LastStudyAt
	}

	now := s.clock.Now()
	loc := calendar.Location(prefs.Timezone)
	if !ShouldNotifyToday(lastStudyAt, prefs.LastNotifiedAt, now, loc) {
		return
	}

	if err := s.store.SetLastNotified(ctx, userID, now); err != nil {
		// Without the marker a retry could double-notify; skip instead.
		log.Printf("reminder: failed to record last-notified for user %s: %v", userID, err)
		return
	}

	n := models.ReminderNotification{
		Title: "Time to study",
		Body:  "Keep your streak going: review a few cards today.",
	}
	if err := s.sink.Notify(ctx, userID, n); err != nil {
		log.Printf("reminder: delivery to user %s failed: %v", userID, err)
	}
}

// sweep re-arms timers for every learner with reminders enabled.
func (s *Scheduler) sweep() {
	prefs, err := s.store.ListEnabled(context.Background())
	if err != nil {
		log.Printf("reminder: sweep failed to list recipients: %v", err)
		return
	}

	for _, p := range prefs {
		s.Schedule(p)
	}
}
