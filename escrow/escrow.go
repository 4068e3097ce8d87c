// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package escrow implements the Escrow aggregate: multi-party conditional
// fund holding with a dispute and resolution sub-flow. Funding is monotonic
// up to the escrow amount, release requires full funding, and a funded
// escrow can only be cancelled by its sender.
package escrow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for escrow aggregates.
const AggregateType = "escrow"

// Status is the lifecycle state of an escrow.
type Status string

// Escrow states.
const (
	StatusCreated         Status = "created"
	StatusPartiallyFunded Status = "partially_funded"
	StatusFunded          Status = "funded"
	StatusReleased        Status = "released"
	StatusDisputed        Status = "disputed"
	StatusResolved        Status = "resolved"
	StatusExpired         Status = "expired"
	StatusCancelled       Status = "cancelled"
)

// ResolutionType classifies how a dispute was resolved.
type ResolutionType string

// Dispute resolution types.
const (
	ResolutionReleaseToReceiver ResolutionType = "release_to_receiver"
	ResolutionReturnToSender    ResolutionType = "return_to_sender"
	ResolutionSplit             ResolutionType = "split"
	ResolutionArbitrated        ResolutionType = "arbitrated"
)

// DisputeDetails captures the open dispute on an escrow.
type DisputeDetails struct {
	DisputedBy string    `json:"disputedBy"`
	Reason     string    `json:"reason"`
	Evidence   []string  `json:"evidence,omitempty"`
	DisputedAt time.Time `json:"disputedAt"`
}

// Escrow is the Escrow aggregate.
type Escrow struct {
	ledger.AggregateRoot
	clock ledger.Clock

	transactionID   string
	senderAgentID   string
	receiverAgentID string
	amount          decimal.Decimal
	currency        string
	status          Status
	fundedAmount    decimal.Decimal
	conditions      map[string]bool
	expiresAt       *time.Time
	dispute         *DisputeDetails
	resolutionType  ResolutionType
	allocation      map[string]decimal.Decimal
}

var _ ledger.Aggregate = (*Escrow)(nil)

// New creates an empty escrow aggregate ready for replay. Use Create to
// open a new escrow.
func New(escrowID string, clock ledger.Clock) *Escrow {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Escrow{
		AggregateRoot:       ledger.NewRoot(escrowID),
		clock:      clock,
		conditions: make(map[string]bool),
	}
}

// Create opens a new escrow. Conditions start unmet; expiresAt, if given,
// must be in the future.
func Create(escrowID, transactionID, senderAgentID, receiverAgentID string, amount decimal.Decimal, currency string, conditions []string, expiresAt *time.Time, clock ledger.Clock) (*Escrow, error) {
	if escrowID == "" {
		return nil, fmt.Errorf("escrow ID cannot be empty")
	}
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if senderAgentID == "" || receiverAgentID == "" {
		return nil, fmt.Errorf("sender and receiver agent IDs cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("escrow amount must be positive, got %s", amount)
	}
	if currency == "" {
		return nil, fmt.Errorf("currency cannot be empty")
	}

	e := New(escrowID, clock)
	now := e.clock.Now()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, fmt.Errorf("escrow expiry %s must be in the future", expiresAt)
	}

	if err := ledger.Record(e, &EscrowCreated{
		EscrowID:        escrowID,
		TransactionID:   transactionID,
		SenderAgentID:   senderAgentID,
		ReceiverAgentID: receiverAgentID,
		Amount:          amount,
		Currency:        currency,
		Conditions:      conditions,
		ExpiresAt:       expiresAt,
		CreatedAt:       now,
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// AggregateType returns the stream type tag.
func (e *Escrow) AggregateType() string { return AggregateType }

// TransactionID returns the transaction this escrow belongs to.
func (e *Escrow) TransactionID() string { return e.transactionID }

// SenderAgentID returns the funding agent's id.
func (e *Escrow) SenderAgentID() string { return e.senderAgentID }

// ReceiverAgentID returns the receiving agent's id.
func (e *Escrow) ReceiverAgentID() string { return e.receiverAgentID }

// Amount returns the total escrow amount.
func (e *Escrow) Amount() decimal.Decimal { return e.amount }

// Currency returns the escrow currency.
func (e *Escrow) Currency() string { return e.currency }

// Status returns the current lifecycle state.
func (e *Escrow) Status() Status { return e.status }

// FundedAmount returns the amount deposited so far.
func (e *Escrow) FundedAmount() decimal.Decimal { return e.fundedAmount }

// ExpiresAt returns the expiry time, if any.
func (e *Escrow) ExpiresAt() *time.Time { return e.expiresAt }

// Dispute returns the open dispute details, if any.
func (e *Escrow) Dispute() *DisputeDetails {
	if e.dispute == nil {
		return nil
	}
	dispute := *e.dispute
	return &dispute
}

// Resolution returns the recorded resolution type, empty until a dispute is
// resolved.
func (e *Escrow) Resolution() ResolutionType { return e.resolutionType }

// Allocation returns a copy of the resolution allocation per agent.
func (e *Escrow) Allocation() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(e.allocation))
	for agentID, amount := range e.allocation {
		out[agentID] = amount
	}
	return out
}

// Conditions returns a copy of the release conditions and whether each is
// met.
func (e *Escrow) Conditions() map[string]bool {
	out := make(map[string]bool, len(e.conditions))
	for name, met := range e.conditions {
		out[name] = met
	}
	return out
}

// Deposit adds funds to the escrow. The escrow becomes funded when the
// deposited total reaches the escrow amount, partially funded before that;
// overfunding is rejected.
func (e *Escrow) Deposit(amount decimal.Decimal, depositedBy string) error {
	if e.status != StatusCreated && e.status != StatusPartiallyFunded {
		return ledger.NewStateError(e, "deposit", string(e.status))
	}
	if !amount.IsPositive() {
		return ledger.NewValidationError(e, "deposit amount must be positive, got %s", amount)
	}
	if e.fundedAmount.Add(amount).GreaterThan(e.amount) {
		return ledger.NewValidationError(e, "deposit of %s would overfund escrow: %s of %s already funded", amount, e.fundedAmount, e.amount)
	}
	return ledger.Record(e, &EscrowDeposited{
		Amount:      amount,
		DepositedBy: depositedBy,
		DepositedAt: e.clock.Now(),
	})
}

// SetCondition marks a release condition met or unmet. Only valid while the
// escrow still holds funds.
func (e *Escrow) SetCondition(condition string, met bool, setBy string) error {
	switch e.status {
	case StatusReleased, StatusExpired, StatusCancelled:
		return ledger.NewStateError(e, "set condition", string(e.status))
	}
	if condition == "" {
		return ledger.NewValidationError(e, "condition name cannot be empty")
	}
	if _, known := e.conditions[condition]; !known {
		return ledger.NewValidationError(e, "unknown condition %q", condition)
	}
	return ledger.Record(e, &EscrowConditionSet{
		Condition: condition,
		Met:       met,
		SetBy:     setBy,
		SetAt:     e.clock.Now(),
	})
}

// Release pays the escrow out to the receiver. Requires full funding, from
// either the funded state or a resolved dispute.
func (e *Escrow) Release(releasedBy, reason string) error {
	if e.status != StatusFunded && e.status != StatusResolved {
		return ledger.NewStateError(e, "release", string(e.status))
	}
	if !e.fundedAmount.Equal(e.amount) {
		return ledger.NewValidationError(e, "cannot release: funded %s of %s", e.fundedAmount, e.amount)
	}
	return ledger.Record(e, &EscrowReleased{
		ReleasedBy: releasedBy,
		Reason:     reason,
		ReleasedAt: e.clock.Now(),
	})
}

// RaiseDispute opens a dispute on a funded escrow. Only the sender or the
// receiver may dispute.
func (e *Escrow) RaiseDispute(disputedBy, reason string, evidence []string) error {
	if e.status != StatusFunded {
		return ledger.NewStateError(e, "dispute", string(e.status))
	}
	if disputedBy != e.senderAgentID && disputedBy != e.receiverAgentID {
		return ledger.NewValidationError(e, "dispute must be raised by sender or receiver, got %s", disputedBy)
	}
	if reason == "" {
		return ledger.NewValidationError(e, "dispute reason cannot be empty")
	}
	return ledger.Record(e, &EscrowDisputed{
		DisputedBy: disputedBy,
		Reason:     reason,
		Evidence:   evidence,
		DisputedAt: e.clock.Now(),
	})
}

// ResolveDispute records the arbiter's resolution. A split resolution
// requires a non-empty allocation.
func (e *Escrow) ResolveDispute(resolvedBy string, resolutionType ResolutionType, allocation map[string]decimal.Decimal) error {
	if e.status != StatusDisputed {
		return ledger.NewStateError(e, "resolve dispute", string(e.status))
	}
	switch resolutionType {
	case ResolutionReleaseToReceiver, ResolutionReturnToSender, ResolutionSplit, ResolutionArbitrated:
	default:
		return ledger.NewValidationError(e, "invalid resolution type: %s", resolutionType)
	}
	if resolutionType == ResolutionSplit && len(allocation) == 0 {
		return ledger.NewValidationError(e, "split resolution requires an allocation")
	}
	return ledger.Record(e, &EscrowDisputeResolved{
		ResolvedBy:     resolvedBy,
		ResolutionType: resolutionType,
		Allocation:     allocation,
		ResolvedAt:     e.clock.Now(),
	})
}

// Expire marks the escrow expired. The refund of the funded amount to the
// sender is recorded here and executed by a collaborator.
func (e *Escrow) Expire() error {
	switch e.status {
	case StatusReleased, StatusCancelled, StatusExpired:
		return ledger.NewStateError(e, "expire", string(e.status))
	}
	return ledger.Record(e, &EscrowExpired{
		RefundAmount: e.fundedAmount,
		ExpiredAt:    e.clock.Now(),
	})
}

// Cancel cancels the escrow. A funded escrow may only be cancelled by its
// sender; a receiver-initiated cancellation pre-dispute is not permitted.
func (e *Escrow) Cancel(cancelledBy, reason string) error {
	switch e.status {
	case StatusReleased, StatusCancelled:
		return ledger.NewStateError(e, "cancel", string(e.status))
	}
	if e.status == StatusFunded && cancelledBy != e.senderAgentID {
		return ledger.NewValidationError(e, "a funded escrow can only be cancelled by its sender")
	}
	return ledger.Record(e, &EscrowCancelled{
		CancelledBy: cancelledBy,
		Reason:      reason,
		CancelledAt: e.clock.Now(),
	})
}

// IsReadyForRelease reports whether the escrow is funded and every release
// condition is met.
func (e *Escrow) IsReadyForRelease() bool {
	if e.status != StatusFunded {
		return false
	}
	for _, met := range e.conditions {
		if !met {
			return false
		}
	}
	return true
}

// IsResolvedInFavorOfRecipient reports whether the resolution awards the
// escrow to the receiver: either an outright release_to_receiver, or an
// arbitrated resolution with a positive allocation to the receiver.
func (e *Escrow) IsResolvedInFavorOfRecipient() bool {
	switch e.resolutionType {
	case ResolutionReleaseToReceiver:
		return true
	case ResolutionArbitrated:
		return e.allocation[e.receiverAgentID].IsPositive()
	default:
		return false
	}
}

// Apply mutates the escrow state for a single event.
func (e *Escrow) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *EscrowCreated:
		e.transactionID = ev.TransactionID
		e.senderAgentID = ev.SenderAgentID
		e.receiverAgentID = ev.ReceiverAgentID
		e.amount = ev.Amount
		e.currency = ev.Currency
		e.expiresAt = ev.ExpiresAt
		e.status = StatusCreated
		for _, condition := range ev.Conditions {
			e.conditions[condition] = false
		}
	case *EscrowDeposited:
		e.fundedAmount = e.fundedAmount.Add(ev.Amount)
		if e.fundedAmount.Equal(e.amount) {
			e.status = StatusFunded
		} else {
			e.status = StatusPartiallyFunded
		}
	case *EscrowConditionSet:
		e.conditions[ev.Condition] = ev.Met
	case *EscrowReleased:
		e.status = StatusReleased
	case *EscrowDisputed:
		e.status = StatusDisputed
		e.dispute = &DisputeDetails{
			DisputedBy: ev.DisputedBy,
			Reason:     ev.Reason,
			Evidence:   ev.Evidence,
			DisputedAt: ev.DisputedAt,
		}
	case *EscrowDisputeResolved:
		e.status = StatusResolved
		e.resolutionType = ev.ResolutionType
		e.allocation = ev.Allocation
	case *EscrowExpired:
		e.status = StatusExpired
	case *EscrowCancelled:
		e.status = StatusCancelled
	default:
		return fmt.Errorf("escrow: unknown event type %T", event)
	}
	return nil
}
