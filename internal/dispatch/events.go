package dispatch

import (
	"time"

	"github.com/zjrosen/multidispatch/internal/pubsub"
)

// EventKind distinguishes registry events from call events on the bus.
type EventKind string

const (
	EventClauseRegistered EventKind = "clause_registered"
	EventCall             EventKind = "call"
)

// Event is the payload published on the dispatch event bus.
// Registrations are published as pubsub.CreatedEvent, finished calls as
// pubsub.CompletedEvent and calls ending in an error as pubsub.FailedEvent.
type Event struct {
	Kind      EventKind
	Operation string

	// Clause fields, set for registrations and for calls that selected a clause.
	ClauseID    string
	ClauseIndex int
	Key         string

	// Call fields.
	CallID   string
	Args     []any
	Depth    int
	Duration time.Duration
	Err      error
}

// Bus is the broker type carrying dispatch events.
type Bus = pubsub.Broker[Event]

// NewBus creates an event bus for a registry or an event middleware.
func NewBus() *Bus {
	return pubsub.NewBroker[Event]()
}
