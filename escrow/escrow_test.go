// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package escrow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/escrow"
)

var testClock = ledger.FixedClock{Instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func create(t *testing.T, conditions ...string) *escrow.Escrow {
	t.Helper()
	e, err := escrow.Create("esc-1", "tx-1", "agent-1", "agent-2", dec("100"), "USD", conditions, nil, testClock)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e
}

func fund(t *testing.T, e *escrow.Escrow, amount string) {
	t.Helper()
	if err := e.Deposit(dec(amount), "agent-1"); err != nil {
		t.Fatalf("Deposit(%s): %v", amount, err)
	}
}

func TestCreate_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := escrow.Create("esc-1", "tx-1", "agent-1", "agent-2", dec("0"), "USD", nil, nil, testClock); err == nil {
		t.Error("Create with zero amount succeeded, want error")
	}

	past := testClock.Instant.Add(-time.Hour)
	if _, err := escrow.Create("esc-1", "tx-1", "agent-1", "agent-2", dec("100"), "USD", nil, &past, testClock); err == nil {
		t.Error("Create with expiry in the past succeeded, want error")
	}
}

func TestDeposit_FundingProgression(t *testing.T) {
	t.Parallel()

	e := create(t)
	fund(t, e, "40")
	if got, want := e.Status(), escrow.StatusPartiallyFunded; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	fund(t, e, "60")
	if got, want := e.Status(), escrow.StatusFunded; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if got, want := e.FundedAmount(), dec("100"); !got.Equal(want) {
		t.Errorf("FundedAmount = %v, want %v", got, want)
	}
	if err := e.Deposit(dec("1"), "agent-1"); err == nil {
		t.Error("Deposit into funded escrow succeeded, want error")
	}
}

func TestDeposit_Overfund(t *testing.T) {
	t.Parallel()

	e := create(t)
	fund(t, e, "90")
	if err := e.Deposit(dec("20"), "agent-1"); err == nil {
		t.Error("Deposit past escrow total succeeded, want error")
	}
	if got, want := e.FundedAmount(), dec("90"); !got.Equal(want) {
		t.Errorf("FundedAmount = %v, want %v", got, want)
	}
}

func TestRelease(t *testing.T) {
	t.Parallel()

	e := create(t)
	if err := e.Release("agent-2", "premature"); err == nil {
		t.Error("Release of unfunded escrow succeeded, want error")
	}
	fund(t, e, "100")
	if err := e.Release("agent-2", "delivery confirmed"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if got, want := e.Status(), escrow.StatusReleased; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := e.Release("agent-2", "again"); err == nil {
		t.Error("Release twice succeeded, want error")
	}
}

func TestConditions(t *testing.T) {
	t.Parallel()

	e := create(t, "delivery", "inspection")
	fund(t, e, "100")
	if e.IsReadyForRelease() {
		t.Error("IsReadyForRelease = true with unmet conditions")
	}
	if err := e.SetCondition("delivery", true, "agent-2"); err != nil {
		t.Fatalf("SetCondition: %v", err)
	}
	if err := e.SetCondition("unknown", true, "agent-2"); err == nil {
		t.Error("SetCondition for unknown condition succeeded, want error")
	}
	if e.IsReadyForRelease() {
		t.Error("IsReadyForRelease = true with one condition unmet")
	}
	if err := e.SetCondition("inspection", true, "agent-1"); err != nil {
		t.Fatalf("SetCondition: %v", err)
	}
	if !e.IsReadyForRelease() {
		t.Error("IsReadyForRelease = false with all conditions met")
	}
}

func TestDisputeLifecycle(t *testing.T) {
	t.Parallel()

	e := create(t)
	if err := e.RaiseDispute("agent-1", "not delivered", nil); err == nil {
		t.Error("RaiseDispute before funding succeeded, want error")
	}
	fund(t, e, "100")
	if err := e.RaiseDispute("agent-9", "not a party", nil); err == nil {
		t.Error("RaiseDispute by third party succeeded, want error")
	}
	if err := e.RaiseDispute("agent-1", "not delivered", []string{"tracking log"}); err != nil {
		t.Fatalf("RaiseDispute: %v", err)
	}
	if got, want := e.Status(), escrow.StatusDisputed; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}

	if err := e.ResolveDispute("arbiter-1", escrow.ResolutionSplit, nil); err == nil {
		t.Error("split resolution without allocation succeeded, want error")
	}
	if err := e.ResolveDispute("arbiter-1", escrow.ResolutionReleaseToReceiver, nil); err != nil {
		t.Fatalf("ResolveDispute: %v", err)
	}
	if got, want := e.Status(), escrow.StatusResolved; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if !e.IsResolvedInFavorOfRecipient() {
		t.Error("IsResolvedInFavorOfRecipient = false, want true")
	}

	// A resolved escrow can still be released to execute the resolution.
	if err := e.Release("arbiter-1", "per resolution"); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestResolveDispute_OnlyFromDisputed(t *testing.T) {
	t.Parallel()

	e := create(t)
	fund(t, e, "100")
	if err := e.ResolveDispute("arbiter-1", escrow.ResolutionReturnToSender, nil); err == nil {
		t.Error("ResolveDispute without open dispute succeeded, want error")
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	e := create(t)
	fund(t, e, "100")
	// Once funded, only the sender may cancel.
	if err := e.Cancel("agent-2", "receiver regret"); err == nil {
		t.Error("Cancel of funded escrow by receiver succeeded, want error")
	}
	if err := e.Cancel("agent-1", "order withdrawn"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got, want := e.Status(), escrow.StatusCancelled; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := e.Cancel("agent-1", "again"); err == nil {
		t.Error("Cancel twice succeeded, want error")
	}
}

func TestExpire(t *testing.T) {
	t.Parallel()

	e := create(t)
	fund(t, e, "60")
	if err := e.Expire(); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if got, want := e.Status(), escrow.StatusExpired; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := e.Expire(); err == nil {
		t.Error("Expire twice succeeded, want error")
	}

	released := create(t)
	fund(t, released, "100")
	if err := released.Release("agent-2", "done"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := released.Expire(); err == nil {
		t.Error("Expire of released escrow succeeded, want error")
	}
}
