// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// Event is the contract every domain event satisfies. Events are immutable
// facts; applying the same ordered event list twice must yield identical
// aggregate state.
type Event interface {
	// EventType returns the stable, globally unique tag for the event
	// (e.g. "wallet.created"). The tag is what gets persisted, so it must
	// never change once events of that type have been recorded.
	EventType() string
}

// Envelope is the persisted form of an Event: the event payload plus the
// stream metadata an event store needs to order and replay it.
type Envelope struct {
	EventID       uuid.UUID `json:"eventId"`
	AggregateType string    `json:"aggregateType"`
	AggregateID   string    `json:"aggregateId"`
	Version       int64     `json:"version"`
	EventType     string    `json:"eventType"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       []byte    `json:"payload"`
}

// Validate ensures the Envelope is valid.
func (e Envelope) Validate() error {
	if e.AggregateID == "" {
		return fmt.Errorf("envelope aggregate ID cannot be empty")
	}
	if e.EventType == "" {
		return fmt.Errorf("envelope event type cannot be empty")
	}
	if e.Version < 1 {
		return fmt.Errorf("envelope version must be positive, got %d", e.Version)
	}
	return nil
}

// Codec translates between typed events and persisted envelopes using an
// explicit event-type registry. Dispatch is table-driven: every event type
// is registered with a constructor at startup, so decoding never relies on
// reflection over method names.
type Codec struct {
	constructors map[string]func() Event
}

// NewCodec creates an empty Codec.
func NewCodec() *Codec {
	return &Codec{constructors: make(map[string]func() Event)}
}

// Register binds an event type tag to a constructor returning a zero value
// of the concrete event (a pointer, so the payload can be unmarshaled into
// it). Registering the same tag twice is an error: silently replacing a
// constructor would change how historical events decode.
func (c *Codec) Register(eventType string, constructor func() Event) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if constructor == nil {
		return fmt.Errorf("constructor for event type %q cannot be nil", eventType)
	}
	if _, ok := c.constructors[eventType]; ok {
		return fmt.Errorf("event type %q already registered", eventType)
	}
	c.constructors[eventType] = constructor
	return nil
}

// MustRegister is Register that panics on error. It is intended for
// package-level registration helpers that run at startup.
func (c *Codec) MustRegister(eventType string, constructor func() Event) {
	if err := c.Register(eventType, constructor); err != nil {
		panic(err)
	}
}

// Encode wraps a typed event into an Envelope for the given stream position.
func (c *Codec) Encode(aggregateType, aggregateID string, version int64, occurredAt time.Time, event Event) (Envelope, error) {
	if event == nil {
		return Envelope{}, fmt.Errorf("event cannot be nil")
	}
	// Refuse to persist anything that could not be decoded back.
	if _, ok := c.constructors[event.EventType()]; !ok {
		return Envelope{}, fmt.Errorf("unregistered event type: %s", event.EventType())
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s event: %w", event.EventType(), err)
	}
	return Envelope{
		EventID:       uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Version:       version,
		EventType:     event.EventType(),
		OccurredAt:    occurredAt,
		Payload:       payload,
	}, nil
}

// Decode reconstructs the typed event stored in the envelope.
func (c *Codec) Decode(env Envelope) (Event, error) {
	constructor, ok := c.constructors[env.EventType]
	if !ok {
		return nil, fmt.Errorf("unregistered event type: %s", env.EventType)
	}
	event := constructor()
	if err := json.Unmarshal(env.Payload, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s event: %w", env.EventType, err)
	}
	return event, nil
}
