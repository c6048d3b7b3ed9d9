package reminder

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"memora-backend/internal/models"
	"memora-backend/internal/repository"
	"memora-backend/internal/services"
	"memora-backend/internal/websocket"
)

// HubSink publishes the reminder to the learner's websocket channel via Redis
// pub/sub; connected clients show it as a local notification.
type HubSink struct {
	redis *redis.Client
}

func NewHubSink(redisClient *redis.Client) *HubSink {
	return &HubSink{redis: redisClient}
}

func (s *HubSink) Notify(ctx context.Context, userID uuid.UUID, n models.ReminderNotification) error {
	msg := models.WSMessage{Type: "study_reminder", Payload: n}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.redis.Publish(ctx, websocket.UserChannel(userID), data).Err()
}

// EmailSink delivers the reminder over SMTP for learners who are not
// connected when the timer fires.
type EmailSink struct {
	email *services.EmailService
	users *repository.UserRepo
}

func NewEmailSink(email *services.EmailService, users *repository.UserRepo) *EmailSink {
	return &EmailSink{email: email, users: users}
}

func (s *EmailSink) Notify(ctx context.Context, userID uuid.UUID, n models.ReminderNotification) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.email.SendStudyReminderEmail(user.Email, user.FullName, n)
}

// MultiSink fans one notification out to every channel. Delivery is best
// effort per channel; one failing channel does not block the others.
type MultiSink []Sink

func (m MultiSink) Notify(ctx context.Context, userID uuid.UUID, n models.ReminderNotification) error {
	for _, sink := range m {
		if err := sink.Notify(ctx, userID, n); err != nil {
			log.Printf("reminder: sink delivery failed for user %s: %v", userID, err)
		}
	}
	return nil
}
