package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"memora-backend/internal/models"
	"memora-backend/internal/repository"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type memStore struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]*models.ReminderPrefs
}

func newMemStore() *memStore {
	return &memStore{prefs: make(map[uuid.UUID]*models.ReminderPrefs)}
}

func (s *memStore) Get(_ context.Context, userID uuid.UUID) (*models.ReminderPrefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) SetLastNotified(_ context.Context, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.prefs[userID]; ok {
		stamp := at
		p.LastNotifiedAt = &stamp
	}
	return nil
}

func (s *memStore) ListEnabled(context.Context) ([]models.ReminderPrefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ReminderPrefs
	for _, p := range s.prefs {
		if p.Enabled {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) put(p models.ReminderPrefs) {
	s.mu.Lock()
	s.prefs[p.UserID] = &p
	s.mu.Unlock()
}

type memStudy struct {
	mu   sync.Mutex
	last map[uuid.UUID]*time.Time
}

func newMemStudy() *memStudy {
	return &memStudy{last: make(map[uuid.UUID]*time.Time)}
}

func (s *memStudy) Get(_ context.Context, userID uuid.UUID) (*models.ProgressAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.ProgressAccount{UserID: userID, LastStudyAt: s.last[userID]}, nil
}

func (s *memStudy) set(userID uuid.UUID, at time.Time) {
	s.mu.Lock()
	s.last[userID] = &at
	s.mu.Unlock()
}

type recordingSink struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (s *recordingSink) Notify(_ context.Context, userID uuid.UUID, _ models.ReminderNotification) error {
	s.mu.Lock()
	s.calls = append(s.calls, userID)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func ts(day, hour, minute int) time.Time {
	return time.Date(2026, 9, day, hour, minute, 0, 0, time.UTC)
}

func TestShouldNotifyToday(t *testing.T) {
	now := ts(10, 20, 0)
	earlierToday := ts(10, 8, 0)
	yesterday := ts(9, 21, 0)

	tests := []struct {
		name         string
		lastStudy    *time.Time
		lastNotified *time.Time
		want         bool
	}{
		{"never studied, never notified", nil, nil, true},
		{"studied yesterday only", &yesterday, nil, true},
		{"studied today", &earlierToday, nil, false},
		{"already notified today", &yesterday, &earlierToday, false},
		{"notified yesterday", &yesterday, &yesterday, true},
		{"studied and notified today", &earlierToday, &earlierToday, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldNotifyToday(tc.lastStudy, tc.lastNotified, now, time.UTC); got != tc.want {
				t.Fatalf("ShouldNotifyToday = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in           string
		hour, minute int
	}{
		{"20:00", 20, 0},
		{"07:45", 7, 45},
		{"0:05", 0, 5},
		{"garbage", 20, 0},
		{"25:99", 20, 0},
		{"", 20, 0},
	}

	for _, tc := range tests {
		h, m := ParseTimeOfDay(tc.in)
		if h != tc.hour || m != tc.minute {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tc.in, h, m, tc.hour, tc.minute)
		}
	}
}

func TestScheduleFiresImmediatelyWhenTimePassed(t *testing.T) {
	store := newMemStore()
	study := newMemStudy()
	sink := &recordingSink{}
	clock := &stubClock{now: ts(10, 21, 0)}
	s := NewScheduler(store, study, sink, clock)
	userID := uuid.New()

	store.put(models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"})

	s.Schedule(models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"})

	if sink.count() != 1 {
		t.Fatalf("expected immediate fire, got %d notifications", sink.count())
	}

	prefs, _ := store.Get(context.Background(), userID)
	if prefs.LastNotifiedAt == nil {
		t.Fatalf("immediate branch must record last-notified")
	}
}

func TestScheduleArmsTimerForFutureTime(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{}
	clock := &stubClock{now: ts(10, 10, 0)}
	s := NewScheduler(store, newMemStudy(), sink, clock)
	userID := uuid.New()

	store.put(models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"})
	s.Schedule(models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"})

	if sink.count() != 0 {
		t.Fatalf("reminder fired %d times before its time", sink.count())
	}

	s.mu.Lock()
	_, armed := s.timers[userID]
	s.mu.Unlock()
	if !armed {
		t.Fatalf("expected an armed timer for the future reminder")
	}

	s.Stop()
}

func TestRearmCancelsPreviousTimer(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{}
	clock := &stubClock{now: ts(10, 10, 0)}
	s := NewScheduler(store, newMemStudy(), sink, clock)
	userID := uuid.New()

	prefs := models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"}
	store.put(prefs)

	s.Schedule(prefs)
	s.Schedule(prefs)
	s.Schedule(prefs)

	s.mu.Lock()
	count := len(s.timers)
	s.mu.Unlock()
	if count != 1 {
		t.Fatalf("expected at most one pending timer per learner, got %d", count)
	}

	s.Stop()
}

func TestDisablingCancelsTimer(t *testing.T) {
	store := newMemStore()
	clock := &stubClock{now: ts(10, 10, 0)}
	s := NewScheduler(store, newMemStudy(), &recordingSink{}, clock)
	userID := uuid.New()

	enabled := models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"}
	store.put(enabled)
	s.Schedule(enabled)

	disabled := enabled
	disabled.Enabled = false
	s.Schedule(disabled)

	s.mu.Lock()
	_, armed := s.timers[userID]
	s.mu.Unlock()
	if armed {
		t.Fatalf("disabling reminders should disarm the timer")
	}
}

func TestNoDuplicateReminderSameDay(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{}
	clock := &stubClock{now: ts(10, 21, 0)}
	s := NewScheduler(store, newMemStudy(), sink, clock)
	userID := uuid.New()

	prefs := models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"}
	store.put(prefs)

	// Both fires are past-due; the second must be suppressed by the
	// last-notified marker.
	s.Schedule(prefs)
	s.Schedule(prefs)

	if sink.count() != 1 {
		t.Fatalf("expected exactly one reminder today, got %d", sink.count())
	}
}

func TestNoReminderAfterStudyingToday(t *testing.T) {
	store := newMemStore()
	study := newMemStudy()
	sink := &recordingSink{}
	clock := &stubClock{now: ts(10, 21, 0)}
	s := NewScheduler(store, study, sink, clock)
	userID := uuid.New()

	prefs := models.ReminderPrefs{UserID: userID, Enabled: true, RemindAt: "20:00", Timezone: "UTC"}
	store.put(prefs)
	study.set(userID, ts(10, 9, 0))

	s.Schedule(prefs)

	if sink.count() != 0 {
		t.Fatalf("learner already studied today; reminder should be skipped")
	}
}
