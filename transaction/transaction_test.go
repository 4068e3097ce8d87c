// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package transaction_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/transaction"
)

var testClock = ledger.FixedClock{Instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func initiate(t *testing.T, txType transaction.Type) *transaction.Transaction {
	t.Helper()
	txn, err := transaction.Initiate("tx-1", "agent-1", "agent-2", dec("100"), "USD", txType, "", testClock)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	return txn
}

func TestInitiate(t *testing.T) {
	t.Parallel()

	txn := initiate(t, transaction.TypeDirect)
	if got, want := txn.Status(), transaction.StatusInitiated; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if got := txn.EscrowID(); got != "" {
		t.Errorf("EscrowID = %q, want empty for direct type", got)
	}
}

func TestInitiate_EscrowIDGeneration(t *testing.T) {
	t.Parallel()

	txn, err := transaction.Initiate("tx-1", "agent-1", "agent-2", dec("100"), "USD", transaction.TypeEscrow, "", testClock)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if txn.EscrowID() == "" {
		t.Error("EscrowID is empty, want auto-generated for escrow type")
	}

	if _, err := transaction.Initiate("tx-2", "agent-1", "agent-2", dec("100"), "USD", transaction.TypeDirect, "esc-1", testClock); err == nil {
		t.Error("Initiate with escrow id on direct type succeeded, want error")
	}
}

func TestInitiate_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		from   string
		to     string
		amount decimal.Decimal
		txType transaction.Type
	}{
		"zero amount":     {from: "agent-1", to: "agent-2", amount: dec("0"), txType: transaction.TypeDirect},
		"negative amount": {from: "agent-1", to: "agent-2", amount: dec("-5"), txType: transaction.TypeDirect},
		"unknown type":    {from: "agent-1", to: "agent-2", amount: dec("10"), txType: transaction.Type("loan")},
		"missing from":    {from: "", to: "agent-2", amount: dec("10"), txType: transaction.TypeDirect},
		"missing to":      {from: "agent-1", to: "", amount: dec("10"), txType: transaction.TypeDirect},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := transaction.Initiate("tx-1", tt.from, tt.to, tt.amount, "USD", tt.txType, "", testClock); err == nil {
				t.Error("Initiate succeeded, want error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	txn := initiate(t, transaction.TypeDirect)
	if err := txn.Validate(map[string]string{"check": "ok"}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got, want := txn.Status(), transaction.StatusValidated; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := txn.Validate(nil); err == nil {
		t.Error("Validate twice succeeded, want error")
	}
}

func TestCalculateFees(t *testing.T) {
	t.Parallel()

	txn := initiate(t, transaction.TypeDirect)
	if err := txn.CalculateFees(dec("2.50"), "network", nil); err != nil {
		t.Fatalf("CalculateFees: %v", err)
	}
	if err := txn.CalculateFees(dec("1.50"), "processing", nil); err != nil {
		t.Fatalf("CalculateFees: %v", err)
	}
	if err := txn.CalculateFees(dec("-1"), "bogus", nil); err == nil {
		t.Error("negative fee succeeded, want error")
	}

	if got, want := txn.TotalFees(), dec("4"); !got.Equal(want) {
		t.Errorf("TotalFees = %v, want %v", got, want)
	}
	if got, want := txn.SettledAmount(), dec("96"); !got.Equal(want) {
		t.Errorf("SettledAmount = %v, want %v", got, want)
	}
}

func TestComplete_EscrowHeldGuard(t *testing.T) {
	t.Parallel()

	txn := initiate(t, transaction.TypeEscrow)
	if err := txn.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := txn.HoldInEscrow(dec("100")); err != nil {
		t.Fatalf("HoldInEscrow: %v", err)
	}
	if got, want := txn.Status(), transaction.StatusProcessing; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}

	// Completion is a hard precondition on escrow release, not a silent skip.
	if err := txn.Complete("settled", nil); err == nil {
		t.Fatal("Complete with escrow held succeeded, want error")
	}

	if err := txn.ReleaseFromEscrow("agent-2", "conditions met"); err != nil {
		t.Fatalf("ReleaseFromEscrow: %v", err)
	}
	if err := txn.Complete("settled", nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got, want := txn.Status(), transaction.StatusCompleted; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
}

func TestHoldInEscrow_Guards(t *testing.T) {
	t.Parallel()

	direct := initiate(t, transaction.TypeDirect)
	if err := direct.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := direct.HoldInEscrow(dec("100")); err == nil {
		t.Error("HoldInEscrow on direct type succeeded, want error")
	}

	esc := initiate(t, transaction.TypeEscrow)
	if err := esc.HoldInEscrow(dec("100")); err == nil {
		t.Error("HoldInEscrow before validation succeeded, want error")
	}
	if err := esc.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := esc.HoldInEscrow(dec("150")); err == nil {
		t.Error("HoldInEscrow above transaction amount succeeded, want error")
	}
	if err := esc.HoldInEscrow(dec("0")); err == nil {
		t.Error("HoldInEscrow with zero amount succeeded, want error")
	}
}

func TestAddSplitRecipient(t *testing.T) {
	t.Parallel()

	txn := initiate(t, transaction.TypeSplit)
	if err := txn.AddSplitRecipient("agent-2", dec("60"), "fixed"); err != nil {
		t.Fatalf("AddSplitRecipient: %v", err)
	}
	if err := txn.AddSplitRecipient("agent-3", dec("40"), "fixed"); err != nil {
		t.Fatalf("AddSplitRecipient: %v", err)
	}
	// Running sum may equal but never exceed the transaction amount.
	if err := txn.AddSplitRecipient("agent-4", dec("1"), "fixed"); err == nil {
		t.Error("AddSplitRecipient over transaction amount succeeded, want error")
	}
	if got, want := txn.SplitTotal(), dec("100"); !got.Equal(want) {
		t.Errorf("SplitTotal = %v, want %v", got, want)
	}

	direct := initiate(t, transaction.TypeDirect)
	if err := direct.AddSplitRecipient("agent-2", dec("10"), "fixed"); err == nil {
		t.Error("AddSplitRecipient on direct type succeeded, want error")
	}
}

func TestFail(t *testing.T) {
	t.Parallel()

	txn := initiate(t, transaction.TypeEscrow)
	if err := txn.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := txn.HoldInEscrow(dec("100")); err != nil {
		t.Fatalf("HoldInEscrow: %v", err)
	}
	// Failures out of processing are reversible.
	if err := txn.Fail("counterparty timeout"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if got, want := txn.Status(), transaction.StatusFailed; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if got := txn.FailureReason(); got != "counterparty timeout" {
		t.Errorf("FailureReason = %q, want %q", got, "counterparty timeout")
	}
	if err := txn.Fail("again"); err == nil {
		t.Error("Fail on terminal transaction succeeded, want error")
	}
	if err := txn.Validate(nil); err == nil {
		t.Error("Validate on terminal transaction succeeded, want error")
	}
}
