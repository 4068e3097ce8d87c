// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"time"

	"github.com/go-a2a/ledger"
)

// Event type tags for the message aggregate.
const (
	EventMessageCreated      = "message.created"
	EventMessageQueued       = "message.queued"
	EventMessageSent         = "message.sent"
	EventMessageRouted       = "message.routed"
	EventMessageDelivered    = "message.delivered"
	EventMessageAcknowledged = "message.acknowledged"
	EventMessageRetried      = "message.retried"
	EventMessageFailed       = "message.failed"
	EventMessageExpired      = "message.expired"
)

// MessageCreated records the creation of an agent-to-agent message.
type MessageCreated struct {
	MessageID   string     `json:"messageId"`
	FromAgentID string     `json:"fromAgentId"`
	ToAgentID   string     `json:"toAgentId"`
	MessageType Type       `json:"messageType"`
	Priority    int        `json:"priority"`
	Content     string     `json:"content,omitempty"`
	MaxRetries  int        `json:"maxRetries"`
	RequiresAck bool       `json:"requiresAcknowledgment"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// EventType returns the event type tag.
func (*MessageCreated) EventType() string { return EventMessageCreated }

// MessageQueued records the message entering a delivery queue.
type MessageQueued struct {
	QueueName    string     `json:"queueName"`
	ProcessAfter *time.Time `json:"processAfter,omitempty"`
	QueuedAt     time.Time  `json:"queuedAt"`
}

// EventType returns the event type tag.
func (*MessageQueued) EventType() string { return EventMessageQueued }

// MessageSent records the message being handed to the transport, delivery
// confirmation still pending.
type MessageSent struct {
	Transport string    `json:"transport,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// EventType returns the event type tag.
func (*MessageSent) EventType() string { return EventMessageSent }

// MessageRouted records one hop on the message's routing path.
type MessageRouted struct {
	NodeID   string    `json:"nodeId"`
	RoutedAt time.Time `json:"routedAt"`
}

// EventType returns the event type tag.
func (*MessageRouted) EventType() string { return EventMessageRouted }

// MessageDelivered records confirmed delivery to the recipient.
type MessageDelivered struct {
	Method      string            `json:"method,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	DeliveredAt time.Time         `json:"deliveredAt"`
}

// EventType returns the event type tag.
func (*MessageDelivered) EventType() string { return EventMessageDelivered }

// MessageAcknowledged records the recipient's acknowledgment.
type MessageAcknowledged struct {
	AcknowledgedBy string            `json:"acknowledgedBy"`
	AckID          string            `json:"ackId,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
	AcknowledgedAt time.Time         `json:"acknowledgedAt"`
}

// EventType returns the event type tag.
func (*MessageAcknowledged) EventType() string { return EventMessageAcknowledged }

// MessageRetried records a retry attempt: the message returns to the queue
// and the caller should wait NextDelay before redelivering.
type MessageRetried struct {
	Reason     string        `json:"reason,omitempty"`
	RetryCount int           `json:"retryCount"`
	NextDelay  time.Duration `json:"nextDelay"`
	RetriedAt  time.Time     `json:"retriedAt"`
}

// EventType returns the event type tag.
func (*MessageRetried) EventType() string { return EventMessageRetried }

// MessageFailed records a delivery failure. CanRetry captures whether a
// further retry was possible at failure time.
type MessageFailed struct {
	Reason    string    `json:"reason"`
	Permanent bool      `json:"permanent"`
	CanRetry  bool      `json:"canRetry"`
	FailedAt  time.Time `json:"failedAt"`
}

// EventType returns the event type tag.
func (*MessageFailed) EventType() string { return EventMessageFailed }

// MessageExpired records expiry of the message.
type MessageExpired struct {
	Reason    string    `json:"reason,omitempty"`
	ExpiredAt time.Time `json:"expiredAt"`
}

// EventType returns the event type tag.
func (*MessageExpired) EventType() string { return EventMessageExpired }

var (
	_ ledger.Event = (*MessageCreated)(nil)
	_ ledger.Event = (*MessageQueued)(nil)
	_ ledger.Event = (*MessageSent)(nil)
	_ ledger.Event = (*MessageRouted)(nil)
	_ ledger.Event = (*MessageDelivered)(nil)
	_ ledger.Event = (*MessageAcknowledged)(nil)
	_ ledger.Event = (*MessageRetried)(nil)
	_ ledger.Event = (*MessageFailed)(nil)
	_ ledger.Event = (*MessageExpired)(nil)
)

// RegisterEvents registers all message event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventMessageCreated, func() ledger.Event { return new(MessageCreated) })
	c.MustRegister(EventMessageQueued, func() ledger.Event { return new(MessageQueued) })
	c.MustRegister(EventMessageSent, func() ledger.Event { return new(MessageSent) })
	c.MustRegister(EventMessageRouted, func() ledger.Event { return new(MessageRouted) })
	c.MustRegister(EventMessageDelivered, func() ledger.Event { return new(MessageDelivered) })
	c.MustRegister(EventMessageAcknowledged, func() ledger.Event { return new(MessageAcknowledged) })
	c.MustRegister(EventMessageRetried, func() ledger.Event { return new(MessageRetried) })
	c.MustRegister(EventMessageFailed, func() ledger.Event { return new(MessageFailed) })
	c.MustRegister(EventMessageExpired, func() ledger.Event { return new(MessageExpired) })
}
