// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reputation_test

import (
	"math"
	"testing"
	"time"

	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/reputation"
)

var testClock = ledger.FixedClock{Instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

func initialize(t *testing.T, score float64) *reputation.Reputation {
	t.Helper()
	r, err := reputation.Initialize("rep-1", "agent-1", score, testClock)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return r
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	r := initialize(t, reputation.DefaultInitialScore)
	if got, want := r.Score(), 50.0; got != want {
		t.Errorf("Score = %v, want %v", got, want)
	}
	if got, want := r.Level(), reputation.TrustNeutral; got != want {
		t.Errorf("Level = %v, want %v", got, want)
	}

	if _, err := reputation.Initialize("rep-1", "agent-1", 120, testClock); err == nil {
		t.Error("Initialize with out-of-range score succeeded, want error")
	}
}

func TestTrustLevelForScore(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		score float64
		want  reputation.TrustLevel
	}{
		"floor":         {score: 0, want: reputation.TrustUntrusted},
		"under low":     {score: 19.9, want: reputation.TrustUntrusted},
		"low boundary":  {score: 20, want: reputation.TrustLow},
		"neutral":       {score: 40, want: reputation.TrustNeutral},
		"high boundary": {score: 60, want: reputation.TrustHigh},
		"under trusted": {score: 79.9, want: reputation.TrustHigh},
		"trusted":       {score: 80, want: reputation.TrustTrusted},
		"ceiling":       {score: 100, want: reputation.TrustTrusted},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := reputation.TrustLevelForScore(tt.score); got != tt.want {
				t.Errorf("TrustLevelForScore(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestRecordTransaction_Delta(t *testing.T) {
	t.Parallel()

	// delta = base(outcome) * min(log10(value+1)/3, 2)
	r := initialize(t, 50)
	if err := r.RecordTransaction("tx-1", reputation.OutcomeSuccess, 999); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	want := 50 + 1.0*(math.Log10(1000)/3)
	if got := r.Score(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}

	if err := r.RecordTransaction("tx-2", reputation.OutcomeFailed, 999); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	want += -2.0 * (math.Log10(1000) / 3)
	if got := r.Score(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}

	stats := r.GetStats()
	if got, want := stats.TotalTransactions, 2; got != want {
		t.Errorf("TotalTransactions = %d, want %d", got, want)
	}
	if got, want := stats.SuccessfulTransactions, 1; got != want {
		t.Errorf("SuccessfulTransactions = %d, want %d", got, want)
	}
	if got, want := stats.FailedTransactions, 1; got != want {
		t.Errorf("FailedTransactions = %d, want %d", got, want)
	}
	if got, want := stats.SuccessRate, 0.5; got != want {
		t.Errorf("SuccessRate = %v, want %v", got, want)
	}
}

func TestRecordTransaction_ValueMultiplierCap(t *testing.T) {
	t.Parallel()

	// The log multiplier caps at 2 regardless of transaction value.
	r := initialize(t, 50)
	if err := r.RecordTransaction("tx-1", reputation.OutcomeSuccess, 1e12); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if got, want := r.Score(), 52.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScoreClamping(t *testing.T) {
	t.Parallel()

	r := initialize(t, 1)
	for i := 0; i < 5; i++ {
		if err := r.ApplyDisputePenalty(reputation.SeverityCritical); err != nil {
			t.Fatalf("ApplyDisputePenalty: %v", err)
		}
	}
	if got := r.Score(); got != 0 {
		t.Errorf("Score = %v, want clamped to 0", got)
	}
	if got, want := r.Level(), reputation.TrustUntrusted; got != want {
		t.Errorf("Level = %v, want %v", got, want)
	}

	high := initialize(t, 99)
	if err := high.ApplyReputationBoost(50, "partnership bonus"); err != nil {
		t.Fatalf("ApplyReputationBoost: %v", err)
	}
	if got := high.Score(); got != 100 {
		t.Errorf("Score = %v, want clamped to 100", got)
	}
}

func TestDisputePenalties(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		severity reputation.Severity
		want     float64
	}{
		"minor":    {severity: reputation.SeverityMinor, want: 45},
		"moderate": {severity: reputation.SeverityModerate, want: 40},
		"major":    {severity: reputation.SeverityMajor, want: 30},
		"critical": {severity: reputation.SeverityCritical, want: 20},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := initialize(t, 50)
			if err := r.ApplyDisputePenalty(tt.severity); err != nil {
				t.Fatalf("ApplyDisputePenalty: %v", err)
			}
			if got := r.Score(); got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
			if got, want := r.GetStats().DisputedTransactions, 1; got != want {
				t.Errorf("DisputedTransactions = %d, want %d", got, want)
			}
		})
	}
}

func TestDecayReputation(t *testing.T) {
	t.Parallel()

	// decay = score * min(0.01 * days, 0.5)
	r := initialize(t, 80)
	if err := r.DecayReputation(10); err != nil {
		t.Fatalf("DecayReputation: %v", err)
	}
	if got, want := r.Score(), 72.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}

	capped := initialize(t, 80)
	if err := capped.DecayReputation(365); err != nil {
		t.Fatalf("DecayReputation: %v", err)
	}
	if got, want := capped.Score(), 40.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestDecayReputation_NegligibleIsNoOp(t *testing.T) {
	t.Parallel()

	r := initialize(t, 50)
	before := len(r.Root().Uncommitted())
	if err := r.DecayReputation(0.001); err != nil {
		t.Fatalf("DecayReputation: %v", err)
	}
	if got := len(r.Root().Uncommitted()); got != before {
		t.Errorf("uncommitted events = %d, want %d (negligible decay must not emit)", got, before)
	}
	if got := r.Score(); got != 50 {
		t.Errorf("Score = %v, want unchanged 50", got)
	}
}

func TestTrustLevelChangeEvents(t *testing.T) {
	t.Parallel()

	r := initialize(t, 50)
	before := r.Version()
	// A large penalty crosses from neutral into low: score event plus a
	// level-change event.
	if err := r.ApplyDisputePenalty(reputation.SeverityMajor); err != nil {
		t.Fatalf("ApplyDisputePenalty: %v", err)
	}
	if got, want := r.Version()-before, int64(2); got != want {
		t.Errorf("events emitted = %d, want %d", got, want)
	}
	if got, want := r.Level(), reputation.TrustLow; got != want {
		t.Errorf("Level = %v, want %v", got, want)
	}

	// A small change within the same band emits no level-change event.
	before = r.Version()
	if err := r.ApplyReputationBoost(1, "bonus"); err != nil {
		t.Fatalf("ApplyReputationBoost: %v", err)
	}
	if got, want := r.Version()-before, int64(1); got != want {
		t.Errorf("events emitted = %d, want %d", got, want)
	}
}
