// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger_test

import (
	"testing"

	"github.com/go-a2a/ledger"
)

func TestRecord(t *testing.T) {
	t.Parallel()

	c := newCounter("c-1")
	if err := c.Increment(3); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := c.Increment(4); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	if got, want := c.total, 7; got != want {
		t.Errorf("total = %d, want %d", got, want)
	}
	if got, want := c.Version(), int64(2); got != want {
		t.Errorf("Version = %d, want %d", got, want)
	}
	if got, want := len(c.Root().Uncommitted()), 2; got != want {
		t.Errorf("uncommitted events = %d, want %d", got, want)
	}
}

func TestRecord_RejectedCommandLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	c := newCounter("c-1")
	if err := c.Increment(0); err == nil {
		t.Fatal("Increment(0) succeeded, want error")
	}
	if got := c.Version(); got != 0 {
		t.Errorf("Version = %d, want 0", got)
	}
	if got := len(c.Root().Uncommitted()); got != 0 {
		t.Errorf("uncommitted events = %d, want 0", got)
	}
}

func TestRehydrate(t *testing.T) {
	t.Parallel()

	source := newCounter("c-1")
	for _, n := range []int{1, 2, 3} {
		if err := source.Increment(n); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}

	replayed := newCounter("c-1")
	if err := ledger.Rehydrate(replayed, source.Root().Uncommitted()...); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}

	if got, want := replayed.total, source.total; got != want {
		t.Errorf("total = %d, want %d", got, want)
	}
	if got, want := replayed.Version(), source.Version(); got != want {
		t.Errorf("Version = %d, want %d", got, want)
	}
	// Replay reconstructs state without re-buffering the events.
	if got := len(replayed.Root().Uncommitted()); got != 0 {
		t.Errorf("uncommitted events after replay = %d, want 0", got)
	}
}

func TestMarkCommitted(t *testing.T) {
	t.Parallel()

	c := newCounter("c-1")
	if err := c.Increment(1); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	c.Root().MarkCommitted()

	if got := len(c.Root().Uncommitted()); got != 0 {
		t.Errorf("uncommitted events = %d, want 0", got)
	}
	if got, want := c.Version(), int64(1); got != want {
		t.Errorf("Version = %d, want %d", got, want)
	}
}
