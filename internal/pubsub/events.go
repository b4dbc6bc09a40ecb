// Package pubsub provides a small generic publish/subscribe broker used to
// fan out registry, dispatch and log events to interested listeners.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// CreatedEvent marks something new: a log entry, a registered clause.
	CreatedEvent EventType = "created"
	// CompletedEvent marks a dispatch that returned a result.
	CompletedEvent EventType = "completed"
	// FailedEvent marks a dispatch that returned an error.
	FailedEvent EventType = "failed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
