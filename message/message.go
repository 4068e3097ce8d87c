// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package message implements the A2AMessage reliable-delivery state machine:
// created -> queued -> sent/delivered -> acknowledged, with failed and
// expired reachable from any non-terminal state. Retry is data-driven: the
// aggregate records the retry count and computed backoff, and the caller is
// responsible for waking up and redelivering after the delay.
package message

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for message aggregates.
const AggregateType = "message"

// Type classifies an agent-to-agent message.
type Type string

// Message types.
const (
	TypeDirect       Type = "direct"
	TypeBroadcast    Type = "broadcast"
	TypeProtocol     Type = "protocol"
	TypeTransaction  Type = "transaction"
	TypeNotification Type = "notification"
)

// Status is the lifecycle state of a message.
type Status string

// Message states. Acknowledged and Expired are terminal.
const (
	StatusCreated      Status = "created"
	StatusQueued       Status = "queued"
	StatusSent         Status = "sent"
	StatusDelivered    Status = "delivered"
	StatusAcknowledged Status = "acknowledged"
	StatusFailed       Status = "failed"
	StatusExpired      Status = "expired"
)

// Named priority tiers in the [0,100] priority range.
const (
	PriorityLow      = 0
	PriorityNormal   = 50
	PriorityHigh     = 75
	PriorityCritical = 100
)

// DefaultMaxRetries is the retry ceiling applied when none is configured.
const DefaultMaxRetries = 3

// Hop is one node on the message's routing path.
type Hop struct {
	NodeID    string    `json:"nodeId"`
	Timestamp time.Time `json:"timestamp"`
}

// RetryExhaustedError reports a retry rejected because the retry ceiling
// was reached.
type RetryExhaustedError struct {
	MessageID  string
	RetryCount int
	MaxRetries int
}

// Error implements the error interface.
func (e RetryExhaustedError) Error() string {
	return fmt.Sprintf("message %s: retry count %d has reached the maximum of %d", e.MessageID, e.RetryCount, e.MaxRetries)
}

// DefaultRetryDelay computes the default backoff before retry attempt
// retryCount+1: min(300, 2^retryCount * 10) seconds.
func DefaultRetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= 5 {
		return 300 * time.Second
	}
	return time.Duration(10<<retryCount) * time.Second
}

// Message is the A2AMessage aggregate.
type Message struct {
	ledger.AggregateRoot
	clock ledger.Clock

	fromAgentID     string
	toAgentID       string
	messageType     Type
	status          Status
	priority        int
	content         string
	retryCount      int
	maxRetries      int
	requiresAck     bool
	permanentlyDown bool
	expiresAt       *time.Time
	queueName       string
	routingPath     []Hop
}

var _ ledger.Aggregate = (*Message)(nil)

// Option configures message creation.
type Option func(*MessageCreated)

// WithExpiry sets the message expiry time.
func WithExpiry(expiresAt time.Time) Option {
	return func(ev *MessageCreated) { ev.ExpiresAt = &expiresAt }
}

// WithMaxRetries overrides the default retry ceiling.
func WithMaxRetries(maxRetries int) Option {
	return func(ev *MessageCreated) { ev.MaxRetries = maxRetries }
}

// WithoutAcknowledgment marks the message as not requiring acknowledgment.
func WithoutAcknowledgment() Option {
	return func(ev *MessageCreated) { ev.RequiresAck = false }
}

// New creates an empty message aggregate ready for replay. Use Send to
// create a new message.
func New(messageID string, clock ledger.Clock) *Message {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Message{
		AggregateRoot:  ledger.NewRoot(messageID),
		clock: clock,
	}
}

// Send creates a new message in the created state. An empty messageID gets
// a generated one.
func Send(messageID, fromAgentID, toAgentID string, messageType Type, priority int, content string, clock ledger.Clock, opts ...Option) (*Message, error) {
	if messageID == "" {
		messageID = uuid.NewString()
	}
	if fromAgentID == "" || toAgentID == "" {
		return nil, fmt.Errorf("sender and recipient agent IDs cannot be empty")
	}
	switch messageType {
	case TypeDirect, TypeBroadcast, TypeProtocol, TypeTransaction, TypeNotification:
	default:
		return nil, fmt.Errorf("invalid message type: %s", messageType)
	}
	if priority < 0 || priority > 100 {
		return nil, fmt.Errorf("priority must be in [0,100], got %d", priority)
	}

	m := New(messageID, clock)
	created := &MessageCreated{
		MessageID:   messageID,
		FromAgentID: fromAgentID,
		ToAgentID:   toAgentID,
		MessageType: messageType,
		Priority:    priority,
		Content:     content,
		MaxRetries:  DefaultMaxRetries,
		RequiresAck: true,
		CreatedAt:   m.clock.Now(),
	}
	for _, opt := range opts {
		opt(created)
	}
	if created.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries cannot be negative, got %d", created.MaxRetries)
	}
	if err := ledger.Record(m, created); err != nil {
		return nil, err
	}
	return m, nil
}

// AggregateType returns the stream type tag.
func (m *Message) AggregateType() string { return AggregateType }

// FromAgentID returns the sending agent's id.
func (m *Message) FromAgentID() string { return m.fromAgentID }

// ToAgentID returns the receiving agent's id.
func (m *Message) ToAgentID() string { return m.toAgentID }

// MessageType returns the message type.
func (m *Message) MessageType() Type { return m.messageType }

// Status returns the current lifecycle state.
func (m *Message) Status() Status { return m.status }

// Priority returns the message priority in [0,100].
func (m *Message) Priority() int { return m.priority }

// Content returns the message content.
func (m *Message) Content() string { return m.content }

// RetryCount returns the number of retries attempted so far.
func (m *Message) RetryCount() int { return m.retryCount }

// MaxRetries returns the retry ceiling.
func (m *Message) MaxRetries() int { return m.maxRetries }

// RequiresAcknowledgment reports whether the recipient must acknowledge.
func (m *Message) RequiresAcknowledgment() bool { return m.requiresAck }

// ExpiresAt returns the expiry time, if any.
func (m *Message) ExpiresAt() *time.Time { return m.expiresAt }

// QueueName returns the delivery queue the message was last queued on.
func (m *Message) QueueName() string { return m.queueName }

// RoutingPath returns a copy of the routing hops recorded so far.
func (m *Message) RoutingPath() []Hop {
	out := make([]Hop, len(m.routingPath))
	copy(out, m.routingPath)
	return out
}

func (m *Message) isTerminal() bool {
	return m.status == StatusAcknowledged || m.status == StatusExpired
}

func (m *Message) isExpired(now time.Time) bool {
	return m.expiresAt != nil && now.After(*m.expiresAt)
}

// CanRetry reports whether a further retry is possible.
func (m *Message) CanRetry() bool {
	return !m.isTerminal() && !m.permanentlyDown && m.retryCount < m.maxRetries
}

// Queue places the created message on a delivery queue. processAfter, if
// given, tells the queue worker not to attempt delivery before then.
func (m *Message) Queue(queueName string, processAfter *time.Time) error {
	if m.status != StatusCreated {
		return ledger.NewStateError(m, "queue", string(m.status))
	}
	if queueName == "" {
		return ledger.NewValidationError(m, "queue name cannot be empty")
	}
	return ledger.Record(m, &MessageQueued{
		QueueName:    queueName,
		ProcessAfter: processAfter,
		QueuedAt:     m.clock.Now(),
	})
}

// MarkSent records the hand-off to the transport while delivery
// confirmation is still pending.
func (m *Message) MarkSent(transport string) error {
	if m.status != StatusQueued {
		return ledger.NewStateError(m, "mark sent", string(m.status))
	}
	return ledger.Record(m, &MessageSent{
		Transport: transport,
		SentAt:    m.clock.Now(),
	})
}

// Route appends a node to the routing path of an in-flight message.
func (m *Message) Route(nodeID string) error {
	if m.status != StatusQueued && m.status != StatusSent {
		return ledger.NewStateError(m, "route", string(m.status))
	}
	if nodeID == "" {
		return ledger.NewValidationError(m, "routing node ID cannot be empty")
	}
	return ledger.Record(m, &MessageRouted{
		NodeID:   nodeID,
		RoutedAt: m.clock.Now(),
	})
}

// Deliver confirms delivery to the recipient. Delivery of an expired
// message is rejected, and re-delivering an already delivered message is
// rejected rather than duplicated.
func (m *Message) Deliver(method string, details map[string]string) error {
	if m.status != StatusQueued && m.status != StatusSent {
		return ledger.NewStateError(m, "deliver", string(m.status))
	}
	if m.isExpired(m.clock.Now()) {
		return ledger.NewValidationError(m, "message expired at %s", m.expiresAt)
	}
	return ledger.Record(m, &MessageDelivered{
		Method:      method,
		Details:     details,
		DeliveredAt: m.clock.Now(),
	})
}

// Acknowledge records the recipient's acknowledgment of a delivered
// message.
func (m *Message) Acknowledge(acknowledgedBy, ackID string, data map[string]string) error {
	if m.status != StatusDelivered {
		return ledger.NewStateError(m, "acknowledge", string(m.status))
	}
	if !m.requiresAck {
		return ledger.NewValidationError(m, "message does not require acknowledgment")
	}
	if acknowledgedBy == "" {
		return ledger.NewValidationError(m, "acknowledger ID cannot be empty")
	}
	return ledger.Record(m, &MessageAcknowledged{
		AcknowledgedBy: acknowledgedBy,
		AckID:          ackID,
		Data:           data,
		AcknowledgedAt: m.clock.Now(),
	})
}

// Retry returns the message to the queue for another delivery attempt.
// nextDelay <= 0 selects the default exponential backoff.
func (m *Message) Retry(reason string, nextDelay time.Duration) error {
	if m.isTerminal() {
		return ledger.NewStateError(m, "retry", string(m.status))
	}
	if m.permanentlyDown {
		return ledger.NewStateError(m, "retry after permanent failure", string(m.status))
	}
	if m.retryCount >= m.maxRetries {
		return RetryExhaustedError{
			MessageID:  m.AggregateID(),
			RetryCount: m.retryCount,
			MaxRetries: m.maxRetries,
		}
	}
	if nextDelay <= 0 {
		nextDelay = DefaultRetryDelay(m.retryCount)
	}
	return ledger.Record(m, &MessageRetried{
		Reason:     reason,
		RetryCount: m.retryCount + 1,
		NextDelay:  nextDelay,
		RetriedAt:  m.clock.Now(),
	})
}

// Fail records a delivery failure. A permanent failure rules out further
// retries.
func (m *Message) Fail(reason string, permanent bool) error {
	if m.isTerminal() {
		return ledger.NewStateError(m, "fail", string(m.status))
	}
	return ledger.Record(m, &MessageFailed{
		Reason:    reason,
		Permanent: permanent,
		CanRetry:  !permanent && m.retryCount < m.maxRetries,
		FailedAt:  m.clock.Now(),
	})
}

// Expire marks the message expired.
func (m *Message) Expire(reason string) error {
	if m.isTerminal() {
		return ledger.NewStateError(m, "expire", string(m.status))
	}
	return ledger.Record(m, &MessageExpired{
		Reason:    reason,
		ExpiredAt: m.clock.Now(),
	})
}

// Apply mutates the message state for a single event.
func (m *Message) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *MessageCreated:
		m.fromAgentID = ev.FromAgentID
		m.toAgentID = ev.ToAgentID
		m.messageType = ev.MessageType
		m.priority = ev.Priority
		m.content = ev.Content
		m.maxRetries = ev.MaxRetries
		m.requiresAck = ev.RequiresAck
		m.expiresAt = ev.ExpiresAt
		m.status = StatusCreated
	case *MessageQueued:
		m.queueName = ev.QueueName
		m.status = StatusQueued
	case *MessageSent:
		m.status = StatusSent
	case *MessageRouted:
		m.routingPath = append(m.routingPath, Hop{
			NodeID:    ev.NodeID,
			Timestamp: ev.RoutedAt,
		})
	case *MessageDelivered:
		m.status = StatusDelivered
	case *MessageAcknowledged:
		m.status = StatusAcknowledged
	case *MessageRetried:
		m.retryCount = ev.RetryCount
		m.status = StatusQueued
	case *MessageFailed:
		m.status = StatusFailed
		if ev.Permanent {
			m.permanentlyDown = true
		}
	case *MessageExpired:
		m.status = StatusExpired
	default:
		return fmt.Errorf("message: unknown event type %T", event)
	}
	return nil
}
