// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package reputation implements the Reputation aggregate: a continuous
// trust score in [0,100] driven by transaction outcomes, dispute penalties,
// boosts, and caller-scheduled time decay, banded into discrete trust
// levels. The score is clamped after every change and the trust level is a
// pure function of the score, event-logged only when it actually changes.
package reputation

import (
	"fmt"
	"math"
	"time"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for reputation aggregates.
const AggregateType = "reputation"

// DefaultInitialScore is the score assigned to a new agent.
const DefaultInitialScore = 50.0

// TrustLevel is a discrete banding of the continuous score.
type TrustLevel string

// Trust levels, from least to most trusted.
const (
	TrustUntrusted TrustLevel = "untrusted" // [0, 20)
	TrustLow       TrustLevel = "low"       // [20, 40)
	TrustNeutral   TrustLevel = "neutral"   // [40, 60)
	TrustHigh      TrustLevel = "high"      // [60, 80)
	TrustTrusted   TrustLevel = "trusted"   // [80, 100]
)

// Outcome classifies how a transaction ended for scoring purposes.
type Outcome string

// Transaction outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeTimeout   Outcome = "timeout"
)

// Severity classifies a dispute penalty.
type Severity string

// Dispute severities.
const (
	SeverityMinor    Severity = "minor"    // -5
	SeverityModerate Severity = "moderate" // -10
	SeverityMajor    Severity = "major"    // -20
	SeverityCritical Severity = "critical" // -30
)

// TrustLevelForScore maps a score to its discrete trust band.
func TrustLevelForScore(score float64) TrustLevel {
	switch {
	case score < 20:
		return TrustUntrusted
	case score < 40:
		return TrustLow
	case score < 60:
		return TrustNeutral
	case score < 80:
		return TrustHigh
	default:
		return TrustTrusted
	}
}

func baseChange(outcome Outcome) (float64, error) {
	switch outcome {
	case OutcomeSuccess:
		return 1.0, nil
	case OutcomeFailed:
		return -2.0, nil
	case OutcomeCancelled:
		return -0.5, nil
	case OutcomeTimeout:
		return -1.0, nil
	default:
		return 0, fmt.Errorf("invalid transaction outcome: %s", outcome)
	}
}

func penaltyFor(severity Severity) (float64, error) {
	switch severity {
	case SeverityMinor:
		return 5, nil
	case SeverityModerate:
		return 10, nil
	case SeverityMajor:
		return 20, nil
	case SeverityCritical:
		return 30, nil
	default:
		return 0, fmt.Errorf("invalid dispute severity: %s", severity)
	}
}

func clamp(score float64) float64 {
	return math.Min(100, math.Max(0, score))
}

// Stats summarizes an agent's reputation counters.
type Stats struct {
	Score                  float64    `json:"score"`
	TrustLevel             TrustLevel `json:"trustLevel"`
	TotalTransactions      int        `json:"totalTransactions"`
	SuccessfulTransactions int        `json:"successfulTransactions"`
	FailedTransactions     int        `json:"failedTransactions"`
	DisputedTransactions   int        `json:"disputedTransactions"`
	SuccessRate            float64    `json:"successRate"`
}

// TransactionEntry is one scored transaction in the history log.
type TransactionEntry struct {
	TransactionID string    `json:"transactionId"`
	Outcome       Outcome   `json:"outcome"`
	Value         float64   `json:"value"`
	Delta         float64   `json:"delta"`
	At            time.Time `json:"at"`
}

// Reputation is the Reputation aggregate.
type Reputation struct {
	ledger.AggregateRoot
	clock ledger.Clock

	agentID    string
	score      float64
	trustLevel TrustLevel

	totalTransactions      int
	successfulTransactions int
	failedTransactions     int
	disputedTransactions   int

	lastActivityAt time.Time
	transactions   []TransactionEntry
}

var _ ledger.Aggregate = (*Reputation)(nil)

// New creates an empty reputation aggregate ready for replay. Use
// Initialize to create a new reputation.
func New(reputationID string, clock ledger.Clock) *Reputation {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Reputation{
		AggregateRoot:  ledger.NewRoot(reputationID),
		clock: clock,
	}
}

// Initialize creates an agent's reputation with the given starting score.
func Initialize(reputationID, agentID string, initialScore float64, clock ledger.Clock) (*Reputation, error) {
	if reputationID == "" {
		return nil, fmt.Errorf("reputation ID cannot be empty")
	}
	if agentID == "" {
		return nil, fmt.Errorf("agent ID cannot be empty")
	}
	if initialScore < 0 || initialScore > 100 {
		return nil, fmt.Errorf("initial score must be in [0,100], got %g", initialScore)
	}

	r := New(reputationID, clock)
	if err := ledger.Record(r, &ReputationInitialized{
		AgentID:       agentID,
		Score:         initialScore,
		TrustLevel:    TrustLevelForScore(initialScore),
		InitializedAt: r.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// AggregateType returns the stream type tag.
func (r *Reputation) AggregateType() string { return AggregateType }

// AgentID returns the agent this reputation belongs to.
func (r *Reputation) AgentID() string { return r.agentID }

// Score returns the current score in [0,100].
func (r *Reputation) Score() float64 { return r.score }

// Level returns the current discrete trust level.
func (r *Reputation) Level() TrustLevel { return r.trustLevel }

// TransactionHistory returns a copy of the scored transactions.
func (r *Reputation) TransactionHistory() []TransactionEntry {
	out := make([]TransactionEntry, len(r.transactions))
	copy(out, r.transactions)
	return out
}

// GetStats returns the reputation counters and derived success rate.
func (r *Reputation) GetStats() Stats {
	stats := Stats{
		Score:                  r.score,
		TrustLevel:             r.trustLevel,
		TotalTransactions:      r.totalTransactions,
		SuccessfulTransactions: r.successfulTransactions,
		FailedTransactions:     r.failedTransactions,
		DisputedTransactions:   r.disputedTransactions,
	}
	if r.totalTransactions > 0 {
		stats.SuccessRate = float64(r.successfulTransactions) / float64(r.totalTransactions)
	}
	return stats
}

// recordLevelChange emits a TrustLevelChanged event when the score change
// crossed a band boundary.
func (r *Reputation) recordLevelChange(previous TrustLevel, now time.Time) error {
	current := TrustLevelForScore(r.score)
	if current == previous {
		return nil
	}
	return ledger.Record(r, &TrustLevelChanged{
		Previous:  previous,
		Current:   current,
		Score:     r.score,
		ChangedAt: now,
	})
}

// RecordTransaction scores a transaction outcome. The delta is the
// outcome's base change scaled by min(log10(value+1)/3, 2.0) so that large
// transactions carry more weight without any single one dominating.
func (r *Reputation) RecordTransaction(transactionID string, outcome Outcome, value float64) error {
	if transactionID == "" {
		return ledger.NewValidationError(r, "transaction ID cannot be empty")
	}
	if value < 0 {
		return ledger.NewValidationError(r, "transaction value cannot be negative, got %g", value)
	}
	base, err := baseChange(outcome)
	if err != nil {
		return ledger.NewValidationError(r, "%s", err)
	}

	factor := math.Min(math.Log10(value+1)/3, 2.0)
	delta := base * factor
	previous := r.trustLevel
	now := r.clock.Now()

	if err := ledger.Record(r, &ReputationUpdated{
		TransactionID: transactionID,
		Outcome:       outcome,
		Value:         value,
		Delta:         delta,
		Score:         clamp(r.score + delta),
		UpdatedAt:     now,
	}); err != nil {
		return err
	}
	return r.recordLevelChange(previous, now)
}

// ApplyDisputePenalty subtracts the severity's penalty from the score.
func (r *Reputation) ApplyDisputePenalty(severity Severity) error {
	penalty, err := penaltyFor(severity)
	if err != nil {
		return ledger.NewValidationError(r, "%s", err)
	}

	previous := r.trustLevel
	now := r.clock.Now()
	if err := ledger.Record(r, &DisputePenaltyApplied{
		Severity:  severity,
		Penalty:   penalty,
		Score:     clamp(r.score - penalty),
		AppliedAt: now,
	}); err != nil {
		return err
	}
	return r.recordLevelChange(previous, now)
}

// ApplyReputationBoost adds an explicit boost to the score.
func (r *Reputation) ApplyReputationBoost(amount float64, reason string) error {
	if amount <= 0 {
		return ledger.NewValidationError(r, "boost amount must be positive, got %g", amount)
	}

	previous := r.trustLevel
	now := r.clock.Now()
	if err := ledger.Record(r, &ReputationBoosted{
		Amount:    amount,
		Reason:    reason,
		Score:     clamp(r.score + amount),
		BoostedAt: now,
	}); err != nil {
		return err
	}
	return r.recordLevelChange(previous, now)
}

// DecayReputation erodes the score for inactivity:
// score * min(0.01*days, 0.5). A decay below 0.01 is skipped entirely so a
// cron-driven decay job cannot flood the stream with negligible events.
func (r *Reputation) DecayReputation(daysSinceLastActivity float64) error {
	if daysSinceLastActivity <= 0 {
		return ledger.NewValidationError(r, "days since last activity must be positive, got %g", daysSinceLastActivity)
	}

	amount := r.score * math.Min(0.01*daysSinceLastActivity, 0.5)
	if amount < 0.01 {
		return nil
	}

	previous := r.trustLevel
	now := r.clock.Now()
	if err := ledger.Record(r, &ReputationDecayed{
		Days:      daysSinceLastActivity,
		Amount:    amount,
		Score:     clamp(r.score - amount),
		DecayedAt: now,
	}); err != nil {
		return err
	}
	return r.recordLevelChange(previous, now)
}

// Apply mutates the reputation state for a single event.
func (r *Reputation) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *ReputationInitialized:
		r.agentID = ev.AgentID
		r.score = ev.Score
		r.trustLevel = ev.TrustLevel
		r.lastActivityAt = ev.InitializedAt
	case *ReputationUpdated:
		r.score = ev.Score
		r.totalTransactions++
		switch ev.Outcome {
		case OutcomeSuccess:
			r.successfulTransactions++
		case OutcomeFailed:
			r.failedTransactions++
		}
		r.lastActivityAt = ev.UpdatedAt
		r.transactions = append(r.transactions, TransactionEntry{
			TransactionID: ev.TransactionID,
			Outcome:       ev.Outcome,
			Value:         ev.Value,
			Delta:         ev.Delta,
			At:            ev.UpdatedAt,
		})
	case *TrustLevelChanged:
		r.trustLevel = ev.Current
	case *DisputePenaltyApplied:
		r.score = ev.Score
		r.disputedTransactions++
		r.lastActivityAt = ev.AppliedAt
	case *ReputationBoosted:
		r.score = ev.Score
		r.lastActivityAt = ev.BoostedAt
	case *ReputationDecayed:
		r.score = ev.Score
	default:
		return fmt.Errorf("reputation: unknown event type %T", event)
	}
	return nil
}
