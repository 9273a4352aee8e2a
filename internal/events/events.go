// Package events defines the domain events emitted after successful writes.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	UserRegistered  = "user.registered"
	EmployeeCreated = "employee.created"
	EmployeeDeleted = "employee.deleted"
	DaybookPosted   = "daybook.posted"
	LedgerPosted    = "ledger.posted"
)

// Event is the JSON envelope published for every domain change.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New builds an event stamped with the current UTC time.
func New(eventType, key string, payload any) Event {
	return Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
