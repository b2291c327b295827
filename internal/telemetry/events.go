// Package telemetry emits room and message lifecycle events to the
// configured broker. Events are observational; failures never affect the
// request that triggered them.
package telemetry

import (
	"context"
	"time"

	"vanish-chat/internal/observability"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// EventEmitter wraps a Publisher with a fixed envelope.
type EventEmitter struct {
	publisher   Publisher
	service     string
	environment string
}

// EventEnvelope is the wire format for lifecycle events.
type EventEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	OccurredAt    string         `json:"occurred_at"`
	Service       string         `json:"service"`
	Environment   string         `json:"environment"`
	RequestID     string         `json:"request_id"`
	RoomID        string         `json:"room_id,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

func NewEventEmitter(publisher Publisher, service, environment string) *EventEmitter {
	return &EventEmitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
	}
}

// Emit publishes a lifecycle event under "chat.<eventType>".
func (e *EventEmitter) Emit(ctx context.Context, eventType, requestID, roomID string, payload map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := EventEnvelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		RoomID:        roomID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, "chat."+eventType, envelope); err != nil {
		observability.IncAMQPPublishError()
	}
}
