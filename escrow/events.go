// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package escrow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// Event type tags for the escrow aggregate.
const (
	EventEscrowCreated         = "escrow.created"
	EventEscrowDeposited       = "escrow.deposited"
	EventEscrowConditionSet    = "escrow.condition_set"
	EventEscrowReleased        = "escrow.released"
	EventEscrowDisputed        = "escrow.disputed"
	EventEscrowDisputeResolved = "escrow.dispute_resolved"
	EventEscrowExpired         = "escrow.expired"
	EventEscrowCancelled       = "escrow.cancelled"
)

// EscrowCreated records the creation of an escrow between two agents.
type EscrowCreated struct {
	EscrowID        string          `json:"escrowId"`
	TransactionID   string          `json:"transactionId"`
	SenderAgentID   string          `json:"senderAgentId"`
	ReceiverAgentID string          `json:"receiverAgentId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Conditions      []string        `json:"conditions,omitempty"`
	ExpiresAt       *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// EventType returns the event type tag.
func (*EscrowCreated) EventType() string { return EventEscrowCreated }

// EscrowDeposited records funds deposited into the escrow.
type EscrowDeposited struct {
	Amount      decimal.Decimal `json:"amount"`
	DepositedBy string          `json:"depositedBy"`
	DepositedAt time.Time       `json:"depositedAt"`
}

// EventType returns the event type tag.
func (*EscrowDeposited) EventType() string { return EventEscrowDeposited }

// EscrowConditionSet records a release condition being marked met or unmet.
type EscrowConditionSet struct {
	Condition string    `json:"condition"`
	Met       bool      `json:"met"`
	SetBy     string    `json:"setBy,omitempty"`
	SetAt     time.Time `json:"setAt"`
}

// EventType returns the event type tag.
func (*EscrowConditionSet) EventType() string { return EventEscrowConditionSet }

// EscrowReleased records the release of the fully funded escrow to the
// receiver.
type EscrowReleased struct {
	ReleasedBy string    `json:"releasedBy"`
	Reason     string    `json:"reason,omitempty"`
	ReleasedAt time.Time `json:"releasedAt"`
}

// EventType returns the event type tag.
func (*EscrowReleased) EventType() string { return EventEscrowReleased }

// EscrowDisputed records a dispute raised by one of the parties.
type EscrowDisputed struct {
	DisputedBy string    `json:"disputedBy"`
	Reason     string    `json:"reason"`
	Evidence   []string  `json:"evidence,omitempty"`
	DisputedAt time.Time `json:"disputedAt"`
}

// EventType returns the event type tag.
func (*EscrowDisputed) EventType() string { return EventEscrowDisputed }

// EscrowDisputeResolved records the arbiter's resolution of a dispute.
type EscrowDisputeResolved struct {
	ResolvedBy     string                     `json:"resolvedBy"`
	ResolutionType ResolutionType             `json:"resolutionType"`
	Allocation     map[string]decimal.Decimal `json:"allocation,omitempty"`
	ResolvedAt     time.Time                  `json:"resolvedAt"`
}

// EventType returns the event type tag.
func (*EscrowDisputeResolved) EventType() string { return EventEscrowDisputeResolved }

// EscrowExpired records expiry of the escrow. RefundAmount is what was
// funded at expiry and is owed back to the sender; the transfer itself is
// executed by a collaborator.
type EscrowExpired struct {
	RefundAmount decimal.Decimal `json:"refundAmount"`
	ExpiredAt    time.Time       `json:"expiredAt"`
}

// EventType returns the event type tag.
func (*EscrowExpired) EventType() string { return EventEscrowExpired }

// EscrowCancelled records cancellation of the escrow.
type EscrowCancelled struct {
	CancelledBy string    `json:"cancelledBy"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// EventType returns the event type tag.
func (*EscrowCancelled) EventType() string { return EventEscrowCancelled }

var (
	_ ledger.Event = (*EscrowCreated)(nil)
	_ ledger.Event = (*EscrowDeposited)(nil)
	_ ledger.Event = (*EscrowConditionSet)(nil)
	_ ledger.Event = (*EscrowReleased)(nil)
	_ ledger.Event = (*EscrowDisputed)(nil)
	_ ledger.Event = (*EscrowDisputeResolved)(nil)
	_ ledger.Event = (*EscrowExpired)(nil)
	_ ledger.Event = (*EscrowCancelled)(nil)
)

// RegisterEvents registers all escrow event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventEscrowCreated, func() ledger.Event { return new(EscrowCreated) })
	c.MustRegister(EventEscrowDeposited, func() ledger.Event { return new(EscrowDeposited) })
	c.MustRegister(EventEscrowConditionSet, func() ledger.Event { return new(EscrowConditionSet) })
	c.MustRegister(EventEscrowReleased, func() ledger.Event { return new(EscrowReleased) })
	c.MustRegister(EventEscrowDisputed, func() ledger.Event { return new(EscrowDisputed) })
	c.MustRegister(EventEscrowDisputeResolved, func() ledger.Event { return new(EscrowDisputeResolved) })
	c.MustRegister(EventEscrowExpired, func() ledger.Event { return new(EscrowExpired) })
	c.MustRegister(EventEscrowCancelled, func() ledger.Event { return new(EscrowCancelled) })
}
