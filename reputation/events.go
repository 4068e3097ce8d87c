// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reputation

import (
	"time"

	"github.com/go-a2a/ledger"
)

// Event type tags for the reputation aggregate.
const (
	EventReputationInitialized = "reputation.initialized"
	EventReputationUpdated     = "reputation.updated"
	EventTrustLevelChanged     = "reputation.trust_level_changed"
	EventDisputePenaltyApplied = "reputation.dispute_penalty_applied"
	EventReputationBoosted     = "reputation.boosted"
	EventReputationDecayed     = "reputation.decayed"
)

// ReputationInitialized records the creation of an agent's reputation.
type ReputationInitialized struct {
	AgentID       string     `json:"agentId"`
	Score         float64    `json:"score"`
	TrustLevel    TrustLevel `json:"trustLevel"`
	InitializedAt time.Time  `json:"initializedAt"`
}

// EventType returns the event type tag.
func (*ReputationInitialized) EventType() string { return EventReputationInitialized }

// ReputationUpdated records a transaction-driven score change.
type ReputationUpdated struct {
	TransactionID string    `json:"transactionId"`
	Outcome       Outcome   `json:"outcome"`
	Value         float64   `json:"value"`
	Delta         float64   `json:"delta"`
	Score         float64   `json:"score"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EventType returns the event type tag.
func (*ReputationUpdated) EventType() string { return EventReputationUpdated }

// TrustLevelChanged records a crossing between discrete trust bands. It is
// emitted only when the level actually changes.
type TrustLevelChanged struct {
	Previous  TrustLevel `json:"previous"`
	Current   TrustLevel `json:"current"`
	Score     float64    `json:"score"`
	ChangedAt time.Time  `json:"changedAt"`
}

// EventType returns the event type tag.
func (*TrustLevelChanged) EventType() string { return EventTrustLevelChanged }

// DisputePenaltyApplied records a dispute penalty against the score.
type DisputePenaltyApplied struct {
	Severity  Severity  `json:"severity"`
	Penalty   float64   `json:"penalty"`
	Score     float64   `json:"score"`
	AppliedAt time.Time `json:"appliedAt"`
}

// EventType returns the event type tag.
func (*DisputePenaltyApplied) EventType() string { return EventDisputePenaltyApplied }

// ReputationBoosted records an explicit reputation boost.
type ReputationBoosted struct {
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	Score     float64   `json:"score"`
	BoostedAt time.Time `json:"boostedAt"`
}

// EventType returns the event type tag.
func (*ReputationBoosted) EventType() string { return EventReputationBoosted }

// ReputationDecayed records inactivity erosion of the score.
type ReputationDecayed struct {
	Days      float64   `json:"days"`
	Amount    float64   `json:"amount"`
	Score     float64   `json:"score"`
	DecayedAt time.Time `json:"decayedAt"`
}

// EventType returns the event type tag.
func (*ReputationDecayed) EventType() string { return EventReputationDecayed }

var (
	_ ledger.Event = (*ReputationInitialized)(nil)
	_ ledger.Event = (*ReputationUpdated)(nil)
	_ ledger.Event = (*TrustLevelChanged)(nil)
	_ ledger.Event = (*DisputePenaltyApplied)(nil)
	_ ledger.Event = (*ReputationBoosted)(nil)
	_ ledger.Event = (*ReputationDecayed)(nil)
)

// RegisterEvents registers all reputation event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventReputationInitialized, func() ledger.Event { return new(ReputationInitialized) })
	c.MustRegister(EventReputationUpdated, func() ledger.Event { return new(ReputationUpdated) })
	c.MustRegister(EventTrustLevelChanged, func() ledger.Event { return new(TrustLevelChanged) })
	c.MustRegister(EventDisputePenaltyApplied, func() ledger.Event { return new(DisputePenaltyApplied) })
	c.MustRegister(EventReputationBoosted, func() ledger.Event { return new(ReputationBoosted) })
	c.MustRegister(EventReputationDecayed, func() ledger.Event { return new(ReputationDecayed) })
}
