// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// Event type tags for the transaction aggregate.
const (
	EventTransactionInitiated = "transaction.initiated"
	EventTransactionValidated = "transaction.validated"
	EventFeeCalculated        = "transaction.fee_calculated"
	EventEscrowHeld           = "transaction.escrow_held"
	EventEscrowReleased       = "transaction.escrow_released"
	EventSplitRecipientAdded  = "transaction.split_recipient_added"
	EventTransactionCompleted = "transaction.completed"
	EventTransactionFailed    = "transaction.failed"
)

// TransactionInitiated records the creation of a transaction.
type TransactionInitiated struct {
	TransactionID string          `json:"transactionId"`
	FromAgentID   string          `json:"fromAgentId"`
	ToAgentID     string          `json:"toAgentId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Type          Type            `json:"type"`
	EscrowID      string          `json:"escrowId,omitempty"`
	InitiatedAt   time.Time       `json:"initiatedAt"`
}

// EventType returns the event type tag.
func (*TransactionInitiated) EventType() string { return EventTransactionInitiated }

// TransactionValidated records that the transaction passed validation.
type TransactionValidated struct {
	ValidationData map[string]string `json:"validationData,omitempty"`
	ValidatedAt    time.Time         `json:"validatedAt"`
}

// EventType returns the event type tag.
func (*TransactionValidated) EventType() string { return EventTransactionValidated }

// FeeCalculated records a fee applied to the transaction.
type FeeCalculated struct {
	Amount       decimal.Decimal   `json:"amount"`
	FeeType      string            `json:"feeType"`
	Details      map[string]string `json:"details,omitempty"`
	CalculatedAt time.Time         `json:"calculatedAt"`
}

// EventType returns the event type tag.
func (*FeeCalculated) EventType() string { return EventFeeCalculated }

// EscrowHeld records that the transaction amount was placed in escrow.
type EscrowHeld struct {
	EscrowID string          `json:"escrowId"`
	Amount   decimal.Decimal `json:"amount"`
	HeldAt   time.Time       `json:"heldAt"`
}

// EventType returns the event type tag.
func (*EscrowHeld) EventType() string { return EventEscrowHeld }

// EscrowReleased records that the escrow hold on the transaction cleared.
type EscrowReleased struct {
	EscrowID   string    `json:"escrowId"`
	ReleasedBy string    `json:"releasedBy"`
	Reason     string    `json:"reason,omitempty"`
	ReleasedAt time.Time `json:"releasedAt"`
}

// EventType returns the event type tag.
func (*EscrowReleased) EventType() string { return EventEscrowReleased }

// SplitRecipientAdded records one recipient of a split transaction.
type SplitRecipientAdded struct {
	RecipientAgentID string          `json:"recipientAgentId"`
	Amount           decimal.Decimal `json:"amount"`
	SplitType        string          `json:"splitType,omitempty"`
	AddedAt          time.Time       `json:"addedAt"`
}

// EventType returns the event type tag.
func (*SplitRecipientAdded) EventType() string { return EventSplitRecipientAdded }

// TransactionCompleted records terminal success. SettledAmount is the
// transaction amount minus accumulated fees.
type TransactionCompleted struct {
	CompletionStatus string            `json:"completionStatus,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
	SettledAmount    decimal.Decimal   `json:"settledAmount"`
	CompletedAt      time.Time         `json:"completedAt"`
}

// EventType returns the event type tag.
func (*TransactionCompleted) EventType() string { return EventTransactionCompleted }

// TransactionFailed records terminal failure. Reversible is true only when
// the transaction had already entered processing.
type TransactionFailed struct {
	Reason     string    `json:"reason"`
	Reversible bool      `json:"reversible"`
	FailedAt   time.Time `json:"failedAt"`
}

// EventType returns the event type tag.
func (*TransactionFailed) EventType() string { return EventTransactionFailed }

var (
	_ ledger.Event = (*TransactionInitiated)(nil)
	_ ledger.Event = (*TransactionValidated)(nil)
	_ ledger.Event = (*FeeCalculated)(nil)
	_ ledger.Event = (*EscrowHeld)(nil)
	_ ledger.Event = (*EscrowReleased)(nil)
	_ ledger.Event = (*SplitRecipientAdded)(nil)
	_ ledger.Event = (*TransactionCompleted)(nil)
	_ ledger.Event = (*TransactionFailed)(nil)
)

// RegisterEvents registers all transaction event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventTransactionInitiated, func() ledger.Event { return new(TransactionInitiated) })
	c.MustRegister(EventTransactionValidated, func() ledger.Event { return new(TransactionValidated) })
	c.MustRegister(EventFeeCalculated, func() ledger.Event { return new(FeeCalculated) })
	c.MustRegister(EventEscrowHeld, func() ledger.Event { return new(EscrowHeld) })
	c.MustRegister(EventEscrowReleased, func() ledger.Event { return new(EscrowReleased) })
	c.MustRegister(EventSplitRecipientAdded, func() ledger.Event { return new(SplitRecipientAdded) })
	c.MustRegister(EventTransactionCompleted, func() ledger.Event { return new(TransactionCompleted) })
	c.MustRegister(EventTransactionFailed, func() ledger.Event { return new(TransactionFailed) })
}
