// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package wallet implements the AgentWallet aggregate: per agent+currency
// balances with hold/release semantics. The settled balance only changes
// through completed payments and receipts; holds move funds between the
// available and held portions without touching the settled balance, and
// availableBalance >= 0 holds after every event.
package wallet

import (
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for wallet aggregates.
const AggregateType = "wallet"

// Direction of a payment record relative to this wallet.
type Direction string

// Payment record directions.
const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// RecordStatus is the lifecycle state of a payment record.
type RecordStatus string

// Payment record states.
const (
	RecordInitiated RecordStatus = "initiated"
	RecordCompleted RecordStatus = "completed"
	RecordReceived  RecordStatus = "received"
	RecordCancelled RecordStatus = "cancelled"
)

// PaymentRecord tracks one payment seen by this wallet.
type PaymentRecord struct {
	TransactionID  string          `json:"transactionId"`
	CounterpartyID string          `json:"counterpartyId"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      Direction       `json:"direction"`
	Status         RecordStatus    `json:"status"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// InsufficientBalanceError reports a payment or hold rejected because the
// wallet's available balance cannot cover it.
type InsufficientBalanceError struct {
	WalletID  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface.
func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("wallet %s: insufficient balance: requested %s, available %s", e.WalletID, e.Requested, e.Available)
}

// Wallet is the AgentWallet aggregate.
type Wallet struct {
	ledger.AggregateRoot
	clock ledger.Clock

	agentID  string
	currency string
	balance  decimal.Decimal
	held     decimal.Decimal
	payments map[string]PaymentRecord
	created  bool
}

var (
	_ ledger.Aggregate   = (*Wallet)(nil)
	_ ledger.Snapshotter = (*Wallet)(nil)
)

// New creates an empty wallet aggregate ready for replay. Use Create to
// open a new wallet.
func New(walletID string, clock ledger.Clock) *Wallet {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Wallet{
		AggregateRoot:     ledger.NewRoot(walletID),
		clock:    clock,
		payments: make(map[string]PaymentRecord),
	}
}

// Create opens a new wallet for the agent. A positive initial balance is
// recorded as an initial_deposit balance update. Reusing an already-used
// wallet id is rejected by the event store's version check on save.
func Create(walletID, agentID, currency string, initialBalance decimal.Decimal, clock ledger.Clock) (*Wallet, error) {
	if walletID == "" {
		return nil, fmt.Errorf("wallet ID cannot be empty")
	}
	if agentID == "" {
		return nil, fmt.Errorf("agent ID cannot be empty")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency cannot be empty")
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("initial balance cannot be negative, got %s", initialBalance)
	}

	w := New(walletID, clock)
	now := w.clock.Now()
	if err := ledger.Record(w, &WalletCreated{
		WalletID:  walletID,
		AgentID:   agentID,
		Currency:  currency,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	if initialBalance.IsPositive() {
		if err := ledger.Record(w, &BalanceUpdated{
			BalanceDelta: initialBalance,
			Reason:       ReasonInitialDeposit,
			UpdatedAt:    now,
		}); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// AggregateType returns the stream type tag.
func (w *Wallet) AggregateType() string { return AggregateType }

// AgentID returns the owning agent's id.
func (w *Wallet) AgentID() string { return w.agentID }

// Currency returns the wallet currency.
func (w *Wallet) Currency() string { return w.currency }

// Balance returns the settled balance.
func (w *Wallet) Balance() decimal.Decimal { return w.balance }

// HeldBalance returns the held portion of the balance.
func (w *Wallet) HeldBalance() decimal.Decimal { return w.held }

// AvailableBalance returns the spendable portion: balance - heldBalance.
func (w *Wallet) AvailableBalance() decimal.Decimal { return w.balance.Sub(w.held) }

// Payment returns the record for a transaction id, if known.
func (w *Wallet) Payment(transactionID string) (PaymentRecord, bool) {
	record, ok := w.payments[transactionID]
	return record, ok
}

// Payments returns a copy of all payment records keyed by transaction id.
func (w *Wallet) Payments() map[string]PaymentRecord {
	out := make(map[string]PaymentRecord, len(w.payments))
	for id, record := range w.payments {
		out[id] = record
	}
	return out
}

// InitiatePayment places a hold for an outgoing payment. The held balance
// increases and the available balance decreases; the settled balance is
// unchanged until CompletePayment.
func (w *Wallet) InitiatePayment(transactionID, toAgentID string, amount decimal.Decimal) error {
	if transactionID == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if toAgentID == "" {
		return fmt.Errorf("recipient agent ID cannot be empty")
	}
	if !amount.IsPositive() {
		return ledger.NewValidationError(w, "payment amount must be positive, got %s", amount)
	}
	if _, exists := w.payments[transactionID]; exists {
		return ledger.NewValidationError(w, "transaction %s already recorded", transactionID)
	}
	if amount.GreaterThan(w.AvailableBalance()) {
		return InsufficientBalanceError{
			WalletID:  w.AggregateID(),
			Requested: amount,
			Available: w.AvailableBalance(),
		}
	}

	now := w.clock.Now()
	if err := ledger.Record(w, &PaymentInitiated{
		TransactionID: transactionID,
		ToAgentID:     toAgentID,
		Amount:        amount,
		InitiatedAt:   now,
	}); err != nil {
		return err
	}
	return ledger.Record(w, &BalanceUpdated{
		HeldDelta:     amount,
		Reason:        ReasonPaymentHold,
		TransactionID: transactionID,
		UpdatedAt:     now,
	})
}

// CompletePayment settles a previously initiated payment: the settled
// balance decreases by the amount and the corresponding hold is released.
func (w *Wallet) CompletePayment(transactionID string, amount decimal.Decimal, toAgentID string) error {
	record, exists := w.payments[transactionID]
	if !exists {
		return ledger.NewValidationError(w, "unknown transaction %s", transactionID)
	}
	if record.Status != RecordInitiated {
		return ledger.NewStateError(w, "complete payment", string(record.Status))
	}
	if !amount.Equal(record.Amount) {
		return ledger.NewValidationError(w, "completion amount %s does not match held amount %s", amount, record.Amount)
	}

	now := w.clock.Now()
	if err := ledger.Record(w, &PaymentSent{
		TransactionID: transactionID,
		ToAgentID:     toAgentID,
		Amount:        amount,
		SentAt:        now,
	}); err != nil {
		return err
	}
	return ledger.Record(w, &BalanceUpdated{
		BalanceDelta:  amount.Neg(),
		HeldDelta:     amount.Neg(),
		Reason:        ReasonPaymentCompleted,
		TransactionID: transactionID,
		UpdatedAt:     now,
	})
}

// CancelPayment compensates an initiated payment: the hold is released
// without settlement. This is the compensating command a saga issues when a
// downstream step fails.
func (w *Wallet) CancelPayment(transactionID, reason string) error {
	record, exists := w.payments[transactionID]
	if !exists {
		return ledger.NewValidationError(w, "unknown transaction %s", transactionID)
	}
	if record.Status != RecordInitiated {
		return ledger.NewStateError(w, "cancel payment", string(record.Status))
	}

	now := w.clock.Now()
	if err := ledger.Record(w, &PaymentCancelled{
		TransactionID: transactionID,
		Amount:        record.Amount,
		Reason:        reason,
		CancelledAt:   now,
	}); err != nil {
		return err
	}
	return ledger.Record(w, &BalanceUpdated{
		HeldDelta:     record.Amount.Neg(),
		Reason:        ReasonPaymentCancelled,
		TransactionID: transactionID,
		UpdatedAt:     now,
	})
}

// ReceivePayment credits an incoming payment to the settled balance.
func (w *Wallet) ReceivePayment(transactionID, fromAgentID string, amount decimal.Decimal) error {
	if transactionID == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if !amount.IsPositive() {
		return ledger.NewValidationError(w, "received amount must be positive, got %s", amount)
	}
	if _, exists := w.payments[transactionID]; exists {
		return ledger.NewValidationError(w, "transaction %s already recorded", transactionID)
	}

	now := w.clock.Now()
	if err := ledger.Record(w, &PaymentReceived{
		TransactionID: transactionID,
		FromAgentID:   fromAgentID,
		Amount:        amount,
		ReceivedAt:    now,
	}); err != nil {
		return err
	}
	return ledger.Record(w, &BalanceUpdated{
		BalanceDelta:  amount,
		Reason:        ReasonPaymentReceived,
		TransactionID: transactionID,
		UpdatedAt:     now,
	})
}

// HoldFunds places a generic hold independent of a specific payment.
func (w *Wallet) HoldFunds(amount decimal.Decimal, reason string) error {
	if !amount.IsPositive() {
		return ledger.NewValidationError(w, "hold amount must be positive, got %s", amount)
	}
	if amount.GreaterThan(w.AvailableBalance()) {
		return InsufficientBalanceError{
			WalletID:  w.AggregateID(),
			Requested: amount,
			Available: w.AvailableBalance(),
		}
	}
	return ledger.Record(w, &FundsHeld{
		Amount: amount,
		Reason: reason,
		HeldAt: w.clock.Now(),
	})
}

// ReleaseFunds releases a generic hold.
func (w *Wallet) ReleaseFunds(amount decimal.Decimal, reason string) error {
	if !amount.IsPositive() {
		return ledger.NewValidationError(w, "release amount must be positive, got %s", amount)
	}
	if amount.GreaterThan(w.held) {
		return ledger.NewValidationError(w, "cannot release %s, only %s held", amount, w.held)
	}
	return ledger.Record(w, &FundsReleased{
		Amount:     amount,
		Reason:     reason,
		ReleasedAt: w.clock.Now(),
	})
}

// Apply mutates the wallet state for a single event.
func (w *Wallet) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *WalletCreated:
		w.agentID = ev.AgentID
		w.currency = ev.Currency
		w.created = true
	case *BalanceUpdated:
		w.balance = w.balance.Add(ev.BalanceDelta)
		w.held = w.held.Add(ev.HeldDelta)
	case *PaymentInitiated:
		w.payments[ev.TransactionID] = PaymentRecord{
			TransactionID:  ev.TransactionID,
			CounterpartyID: ev.ToAgentID,
			Amount:         ev.Amount,
			Direction:      DirectionOutgoing,
			Status:         RecordInitiated,
			UpdatedAt:      ev.InitiatedAt,
		}
	case *PaymentSent:
		record := w.payments[ev.TransactionID]
		record.Status = RecordCompleted
		record.UpdatedAt = ev.SentAt
		w.payments[ev.TransactionID] = record
	case *PaymentCancelled:
		record := w.payments[ev.TransactionID]
		record.Status = RecordCancelled
		record.UpdatedAt = ev.CancelledAt
		w.payments[ev.TransactionID] = record
	case *PaymentReceived:
		w.payments[ev.TransactionID] = PaymentRecord{
			TransactionID:  ev.TransactionID,
			CounterpartyID: ev.FromAgentID,
			Amount:         ev.Amount,
			Direction:      DirectionIncoming,
			Status:         RecordReceived,
			UpdatedAt:      ev.ReceivedAt,
		}
	case *FundsHeld:
		w.held = w.held.Add(ev.Amount)
	case *FundsReleased:
		w.held = w.held.Sub(ev.Amount)
	default:
		return fmt.Errorf("wallet: unknown event type %T", event)
	}
	return nil
}

// walletState is the snapshot serialization of a wallet.
type walletState struct {
	AgentID  string                   `json:"agentId"`
	Currency string                   `json:"currency"`
	Balance  decimal.Decimal          `json:"balance"`
	Held     decimal.Decimal          `json:"held"`
	Payments map[string]PaymentRecord `json:"payments"`
	Created  bool                     `json:"created"`
}

// SnapshotState serializes the current wallet state.
func (w *Wallet) SnapshotState() ([]byte, error) {
	return json.Marshal(walletState{
		AgentID:  w.agentID,
		Currency: w.currency,
		Balance:  w.balance,
		Held:     w.held,
		Payments: w.payments,
		Created:  w.created,
	})
}

// RestoreSnapshot replaces the wallet state with a serialized snapshot.
func (w *Wallet) RestoreSnapshot(data []byte) error {
	var state walletState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to unmarshal wallet snapshot: %w", err)
	}
	w.agentID = state.AgentID
	w.currency = state.Currency
	w.balance = state.Balance
	w.held = state.Held
	w.payments = state.Payments
	if w.payments == nil {
		w.payments = make(map[string]PaymentRecord)
	}
	w.created = state.Created
	return nil
}
