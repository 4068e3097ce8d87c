// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// Event type tags for the wallet aggregate.
const (
	EventWalletCreated    = "wallet.created"
	EventBalanceUpdated   = "wallet.balance_updated"
	EventPaymentInitiated = "wallet.payment_initiated"
	EventPaymentSent      = "wallet.payment_sent"
	EventPaymentReceived  = "wallet.payment_received"
	EventPaymentCancelled = "wallet.payment_cancelled"
	EventFundsHeld        = "wallet.funds_held"
	EventFundsReleased    = "wallet.funds_released"
)

// Balance-update reason tags.
const (
	ReasonInitialDeposit   = "initial_deposit"
	ReasonPaymentHold      = "payment_hold"
	ReasonPaymentCompleted = "payment_completed"
	ReasonPaymentReceived  = "payment_received"
	ReasonPaymentCancelled = "payment_cancelled"
)

// WalletCreated records the creation of a wallet for an agent and currency.
type WalletCreated struct {
	WalletID  string    `json:"walletId"`
	AgentID   string    `json:"agentId"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventType returns the event type tag.
func (*WalletCreated) EventType() string { return EventWalletCreated }

// BalanceUpdated records a change to the wallet's balance and/or held
// balance. BalanceDelta moves the settled balance, HeldDelta moves the held
// balance; a pure hold is zero-net on the settled balance.
type BalanceUpdated struct {
	BalanceDelta  decimal.Decimal `json:"balanceDelta"`
	HeldDelta     decimal.Decimal `json:"heldDelta"`
	Reason        string          `json:"reason"`
	TransactionID string          `json:"transactionId,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EventType returns the event type tag.
func (*BalanceUpdated) EventType() string { return EventBalanceUpdated }

// PaymentInitiated records an outgoing payment whose amount is now held.
type PaymentInitiated struct {
	TransactionID string          `json:"transactionId"`
	ToAgentID     string          `json:"toAgentId"`
	Amount        decimal.Decimal `json:"amount"`
	InitiatedAt   time.Time       `json:"initiatedAt"`
}

// EventType returns the event type tag.
func (*PaymentInitiated) EventType() string { return EventPaymentInitiated }

// PaymentSent records the settlement of a previously initiated payment.
type PaymentSent struct {
	TransactionID string          `json:"transactionId"`
	ToAgentID     string          `json:"toAgentId"`
	Amount        decimal.Decimal `json:"amount"`
	SentAt        time.Time       `json:"sentAt"`
}

// EventType returns the event type tag.
func (*PaymentSent) EventType() string { return EventPaymentSent }

// PaymentReceived records an incoming payment credited to the balance.
type PaymentReceived struct {
	TransactionID string          `json:"transactionId"`
	FromAgentID   string          `json:"fromAgentId"`
	Amount        decimal.Decimal `json:"amount"`
	ReceivedAt    time.Time       `json:"receivedAt"`
}

// EventType returns the event type tag.
func (*PaymentReceived) EventType() string { return EventPaymentReceived }

// PaymentCancelled records the compensation of an initiated payment: the
// hold is released and the payment record closed without settlement.
type PaymentCancelled struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	CancelledAt   time.Time       `json:"cancelledAt"`
}

// EventType returns the event type tag.
func (*PaymentCancelled) EventType() string { return EventPaymentCancelled }

// FundsHeld records a generic hold independent of a specific payment.
type FundsHeld struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
	HeldAt time.Time       `json:"heldAt"`
}

// EventType returns the event type tag.
func (*FundsHeld) EventType() string { return EventFundsHeld }

// FundsReleased records the release of a generic hold.
type FundsReleased struct {
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	ReleasedAt time.Time       `json:"releasedAt"`
}

// EventType returns the event type tag.
func (*FundsReleased) EventType() string { return EventFundsReleased }

var (
	_ ledger.Event = (*WalletCreated)(nil)
	_ ledger.Event = (*BalanceUpdated)(nil)
	_ ledger.Event = (*PaymentInitiated)(nil)
	_ ledger.Event = (*PaymentSent)(nil)
	_ ledger.Event = (*PaymentReceived)(nil)
	_ ledger.Event = (*PaymentCancelled)(nil)
	_ ledger.Event = (*FundsHeld)(nil)
	_ ledger.Event = (*FundsReleased)(nil)
)

// RegisterEvents registers all wallet event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventWalletCreated, func() ledger.Event { return new(WalletCreated) })
	c.MustRegister(EventBalanceUpdated, func() ledger.Event { return new(BalanceUpdated) })
	c.MustRegister(EventPaymentInitiated, func() ledger.Event { return new(PaymentInitiated) })
	c.MustRegister(EventPaymentSent, func() ledger.Event { return new(PaymentSent) })
	c.MustRegister(EventPaymentReceived, func() ledger.Event { return new(PaymentReceived) })
	c.MustRegister(EventPaymentCancelled, func() ledger.Event { return new(PaymentCancelled) })
	c.MustRegister(EventFundsHeld, func() ledger.Event { return new(FundsHeld) })
	c.MustRegister(EventFundsReleased, func() ledger.Event { return new(FundsReleased) })
}
