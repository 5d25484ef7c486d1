package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/todos-backend/apiserver/config"
)

// Event types emitted on task lifecycle changes.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// Event is a task lifecycle notification delivered to the configured
// broker.
type Event struct {
	Type       string    `json:"type"`
	TaskID     int       `json:"task_id"`
	UserID     int       `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers task events to a broker. This service only
// produces; it has no consumer role.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewPublisher constructs the publisher selected by config. An empty
// backend disables publishing.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Backend {
	case "":
		return NopPublisher{}, nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQ, cfg.Topic)
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg.PubSub, cfg.Topic)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NopPublisher) Close() error                                   { return nil }

func marshalEvent(event Event) ([]byte, map[string]string, error) {
	if event.Type == "" {
		return nil, nil, errors.New("event type is required")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	return data, map[string]string{"type": event.Type}, nil
}
