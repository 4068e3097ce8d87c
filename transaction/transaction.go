// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package transaction implements the AgentTransaction state machine:
// initiated -> validated -> processing -> {completed | failed}, covering
// direct, escrow, and split money movement between agents. Escrow-type
// transactions cannot complete while their escrow hold is in place.
package transaction

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for transaction aggregates.
const AggregateType = "transaction"

// Type classifies how funds move.
type Type string

// Transaction types.
const (
	TypeDirect Type = "direct"
	TypeEscrow Type = "escrow"
	TypeSplit  Type = "split"
)

// Status is the lifecycle state of a transaction.
type Status string

// Transaction states. Completed and Failed are terminal.
const (
	StatusInitiated  Status = "initiated"
	StatusValidated  Status = "validated"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Fee is one fee record accumulated against the transaction.
type Fee struct {
	Amount  decimal.Decimal   `json:"amount"`
	FeeType string            `json:"feeType"`
	Details map[string]string `json:"details,omitempty"`
}

// SplitDetail is one recipient of a split transaction.
type SplitDetail struct {
	RecipientAgentID string          `json:"recipientAgentId"`
	Amount           decimal.Decimal `json:"amount"`
	SplitType        string          `json:"splitType,omitempty"`
}

// Transaction is the AgentTransaction aggregate.
type Transaction struct {
	ledger.AggregateRoot
	clock ledger.Clock

	fromAgentID   string
	toAgentID     string
	amount        decimal.Decimal
	currency      string
	txType        Type
	status        Status
	escrowID      string
	isEscrowHeld  bool
	fees          []Fee
	splits        []SplitDetail
	failureReason string
}

var _ ledger.Aggregate = (*Transaction)(nil)

// New creates an empty transaction aggregate ready for replay. Use Initiate
// to start a new transaction.
func New(transactionID string, clock ledger.Clock) *Transaction {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Transaction{
		AggregateRoot:  ledger.NewRoot(transactionID),
		clock: clock,
	}
}

// Initiate starts a new transaction. Escrow-type transactions get an escrow
// id generated when none is supplied.
func Initiate(transactionID, fromAgentID, toAgentID string, amount decimal.Decimal, currency string, txType Type, escrowID string, clock ledger.Clock) (*Transaction, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if fromAgentID == "" || toAgentID == "" {
		return nil, fmt.Errorf("sender and recipient agent IDs cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("transaction amount must be positive, got %s", amount)
	}
	if currency == "" {
		return nil, fmt.Errorf("currency cannot be empty")
	}
	switch txType {
	case TypeDirect, TypeEscrow, TypeSplit:
	default:
		return nil, fmt.Errorf("invalid transaction type: %s", txType)
	}
	if txType == TypeEscrow && escrowID == "" {
		escrowID = uuid.NewString()
	}
	if txType != TypeEscrow && escrowID != "" {
		return nil, fmt.Errorf("escrow ID is only valid for escrow transactions")
	}

	t := New(transactionID, clock)
	if err := ledger.Record(t, &TransactionInitiated{
		TransactionID: transactionID,
		FromAgentID:   fromAgentID,
		ToAgentID:     toAgentID,
		Amount:        amount,
		Currency:      currency,
		Type:          txType,
		EscrowID:      escrowID,
		InitiatedAt:   t.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// AggregateType returns the stream type tag.
func (t *Transaction) AggregateType() string { return AggregateType }

// FromAgentID returns the paying agent's id.
func (t *Transaction) FromAgentID() string { return t.fromAgentID }

// ToAgentID returns the receiving agent's id.
func (t *Transaction) ToAgentID() string { return t.toAgentID }

// Amount returns the gross transaction amount.
func (t *Transaction) Amount() decimal.Decimal { return t.amount }

// Currency returns the transaction currency.
func (t *Transaction) Currency() string { return t.currency }

// Type returns the transaction type.
func (t *Transaction) Type() Type { return t.txType }

// Status returns the current lifecycle state.
func (t *Transaction) Status() Status { return t.status }

// EscrowID returns the linked escrow id, empty for non-escrow transactions.
func (t *Transaction) EscrowID() string { return t.escrowID }

// IsEscrowHeld reports whether the escrow hold is currently in place.
func (t *Transaction) IsEscrowHeld() bool { return t.isEscrowHeld }

// FailureReason returns the recorded failure reason, if the transaction
// failed.
func (t *Transaction) FailureReason() string { return t.failureReason }

// Fees returns a copy of the accumulated fee records.
func (t *Transaction) Fees() []Fee {
	out := make([]Fee, len(t.fees))
	copy(out, t.fees)
	return out
}

// TotalFees returns the sum of all accumulated fees.
func (t *Transaction) TotalFees() decimal.Decimal {
	total := decimal.Zero
	for _, fee := range t.fees {
		total = total.Add(fee.Amount)
	}
	return total
}

// SettledAmount returns the amount minus accumulated fees.
func (t *Transaction) SettledAmount() decimal.Decimal {
	return t.amount.Sub(t.TotalFees())
}

// SplitRecipients returns a copy of the split recipient records.
func (t *Transaction) SplitRecipients() []SplitDetail {
	out := make([]SplitDetail, len(t.splits))
	copy(out, t.splits)
	return out
}

// SplitTotal returns the sum allocated to split recipients so far.
func (t *Transaction) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, split := range t.splits {
		total = total.Add(split.Amount)
	}
	return total
}

func (t *Transaction) isTerminal() bool {
	return t.status == StatusCompleted || t.status == StatusFailed
}

// Validate moves the transaction from initiated to validated.
func (t *Transaction) Validate(validationData map[string]string) error {
	if t.status != StatusInitiated {
		return ledger.NewStateError(t, "validate", string(t.status))
	}
	return ledger.Record(t, &TransactionValidated{
		ValidationData: validationData,
		ValidatedAt:    t.clock.Now(),
	})
}

// CalculateFees appends a fee record. Fees accumulate and are subtracted
// from the amount to compute the settled amount on completion.
func (t *Transaction) CalculateFees(feeAmount decimal.Decimal, feeType string, details map[string]string) error {
	if t.isTerminal() {
		return ledger.NewStateError(t, "calculate fees", string(t.status))
	}
	if feeAmount.IsNegative() {
		return ledger.NewValidationError(t, "fee amount cannot be negative, got %s", feeAmount)
	}
	if feeType == "" {
		return ledger.NewValidationError(t, "fee type cannot be empty")
	}
	return ledger.Record(t, &FeeCalculated{
		Amount:       feeAmount,
		FeeType:      feeType,
		Details:      details,
		CalculatedAt: t.clock.Now(),
	})
}

// HoldInEscrow marks the escrow hold in place and moves the transaction to
// processing. Only valid for escrow-type transactions in the validated
// state.
func (t *Transaction) HoldInEscrow(amount decimal.Decimal) error {
	if t.txType != TypeEscrow {
		return ledger.NewValidationError(t, "escrow hold is only valid for escrow transactions")
	}
	if t.status != StatusValidated {
		return ledger.NewStateError(t, "hold in escrow", string(t.status))
	}
	if !amount.IsPositive() || amount.GreaterThan(t.amount) {
		return ledger.NewValidationError(t, "escrow hold amount must be in (0, %s], got %s", t.amount, amount)
	}
	return ledger.Record(t, &EscrowHeld{
		EscrowID: t.escrowID,
		Amount:   amount,
		HeldAt:   t.clock.Now(),
	})
}

// ReleaseFromEscrow clears the escrow hold, allowing completion.
func (t *Transaction) ReleaseFromEscrow(releasedBy, reason string) error {
	if !t.isEscrowHeld {
		return ledger.NewStateError(t, "release from escrow", string(t.status))
	}
	return ledger.Record(t, &EscrowReleased{
		EscrowID:   t.escrowID,
		ReleasedBy: releasedBy,
		Reason:     reason,
		ReleasedAt: t.clock.Now(),
	})
}

// AddSplitRecipient registers one recipient of a split transaction. The
// running sum of recipient amounts must not exceed the transaction amount.
func (t *Transaction) AddSplitRecipient(recipientAgentID string, amount decimal.Decimal, splitType string) error {
	if t.txType != TypeSplit {
		return ledger.NewValidationError(t, "split recipients are only valid for split transactions")
	}
	if t.status != StatusInitiated {
		return ledger.NewStateError(t, "add split recipient", string(t.status))
	}
	if recipientAgentID == "" {
		return ledger.NewValidationError(t, "split recipient agent ID cannot be empty")
	}
	if !amount.IsPositive() {
		return ledger.NewValidationError(t, "split amount must be positive, got %s", amount)
	}
	if t.SplitTotal().Add(amount).GreaterThan(t.amount) {
		return ledger.NewValidationError(t, "split total %s would exceed transaction amount %s", t.SplitTotal().Add(amount), t.amount)
	}
	return ledger.Record(t, &SplitRecipientAdded{
		RecipientAgentID: recipientAgentID,
		Amount:           amount,
		SplitType:        splitType,
		AddedAt:          t.clock.Now(),
	})
}

// Complete moves the transaction to its terminal completed state. An
// escrow-type transaction must have its escrow released first; completing
// while the hold is in place is a hard error, never silently skipped.
func (t *Transaction) Complete(completionStatus string, details map[string]string) error {
	if t.status != StatusValidated && t.status != StatusProcessing {
		return ledger.NewStateError(t, "complete", string(t.status))
	}
	if t.txType == TypeEscrow && t.isEscrowHeld {
		return ledger.NewStateError(t, "complete while escrow is held", string(t.status))
	}
	return ledger.Record(t, &TransactionCompleted{
		CompletionStatus: completionStatus,
		Details:          details,
		SettledAmount:    t.SettledAmount(),
		CompletedAt:      t.clock.Now(),
	})
}

// Fail moves the transaction to its terminal failed state from any
// non-terminal state. The failure is recorded as reversible only when the
// transaction had entered processing.
func (t *Transaction) Fail(reason string) error {
	if t.isTerminal() {
		return ledger.NewStateError(t, "fail", string(t.status))
	}
	return ledger.Record(t, &TransactionFailed{
		Reason:     reason,
		Reversible: t.status == StatusProcessing,
		FailedAt:   t.clock.Now(),
	})
}

// Apply mutates the transaction state for a single event.
func (t *Transaction) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *TransactionInitiated:
		t.fromAgentID = ev.FromAgentID
		t.toAgentID = ev.ToAgentID
		t.amount = ev.Amount
		t.currency = ev.Currency
		t.txType = ev.Type
		t.escrowID = ev.EscrowID
		t.status = StatusInitiated
	case *TransactionValidated:
		t.status = StatusValidated
	case *FeeCalculated:
		t.fees = append(t.fees, Fee{
			Amount:  ev.Amount,
			FeeType: ev.FeeType,
			Details: ev.Details,
		})
	case *EscrowHeld:
		t.isEscrowHeld = true
		t.status = StatusProcessing
	case *EscrowReleased:
		t.isEscrowHeld = false
	case *SplitRecipientAdded:
		t.splits = append(t.splits, SplitDetail{
			RecipientAgentID: ev.RecipientAgentID,
			Amount:           ev.Amount,
			SplitType:        ev.SplitType,
		})
	case *TransactionCompleted:
		t.status = StatusCompleted
	case *TransactionFailed:
		t.status = StatusFailed
		t.failureReason = ev.Reason
	default:
		return fmt.Errorf("transaction: unknown event type %T", event)
	}
	return nil
}
