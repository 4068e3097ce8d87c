// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger provides the event-sourced aggregate runtime for the
// Agent-to-Agent (A2A) payment and trust protocol core.
//
// Every aggregate in the protocol (wallets, transactions, escrows, messages,
// reputation, compliance, security) derives its state solely by replaying an
// ordered event stream. This package contains the shared machinery: the
// Event and Aggregate contracts, the explicit event codec, the generic
// repository with optimistic concurrency and optional snapshots, and the
// error taxonomy used by every command.
package ledger

import (
	"time"
)

// Version is the current version of the ledger protocol core.
const Version = "0.1.0"

// Clock provides the current time to aggregates and repositories.
// Commands never call time.Now directly so that expiry and backoff
// behavior is fully deterministic under test.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock backed by time.Now.
var SystemClock Clock = systemClock{}

// FixedClock is a Clock that always returns the same instant.
// It is intended for tests.
type FixedClock struct {
	// Instant is the time returned by Now.
	Instant time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.Instant }
