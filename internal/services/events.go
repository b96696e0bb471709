package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"userhub/internal/models"
)

// Event types, also used as routing keys.
const (
	EventUserCreated  = "user.created"
	EventUserUpdated  = "user.updated"
	EventUserDeleted  = "user.deleted"
	EventUserRestored = "user.restored"
)

// EventPublisher sends a message to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// UserEvent is the payload of a user lifecycle message.
type UserEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	User       models.User `json:"user"`
}

func newUserEvent(eventType string, user models.User) UserEvent {
	return UserEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		User:       user,
	}
}

// publish sends the event if a publisher is configured. Failures are logged,
// the triggering operation has already been committed.
func (s *UserService) publish(eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}

	event := newUserEvent(eventType, *user)
	body, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to marshal user event")
		return
	}

	if err := s.publisher.Publish(s.exchange, eventType, body); err != nil {
		s.log.Warn().Err(err).
			Str("event", eventType).
			Uint("user_id", user.ID).
			Msg("failed to publish user event")
		return
	}

	s.log.Debug().
		Str("event", eventType).
		Str("event_id", event.ID).
		Uint("user_id", user.ID).
		Msg("published user event")
}

// AuditUserEvent decodes a lifecycle message and writes it to log. It is the
// handler of the optional audit consumer.
func AuditUserEvent(log zerolog.Logger, body []byte) error {
	var event UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode user event: %w", err)
	}
	if event.Type == "" {
		return errors.New("user event without type")
	}

	log.Info().
		Str("event", event.Type).
		Str("event_id", event.ID).
		Time("occurred_at", event.OccurredAt).
		Uint("user_id", event.User.ID).
		Bool("is_deleted", event.User.IsDeleted).
		Msg("user event")
	return nil
}
