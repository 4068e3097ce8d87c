// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"time"

	"github.com/go-a2a/ledger"
)

// Event type tags for the identity aggregate.
const (
	EventAgentRegistered      = "identity.registered"
	EventCapabilityAdvertised = "identity.capability_advertised"
	EventWalletLinked         = "identity.wallet_linked"
	EventAgentDeactivated     = "identity.deactivated"
	EventAgentReactivated     = "identity.reactivated"
	EventReputationMirrored   = "identity.reputation_mirrored"
)

// AgentRegistered records the registration of an agent identity. The agent
// becomes active on registration.
type AgentRegistered struct {
	AgentID      string    `json:"agentId"`
	DID          string    `json:"did"`
	Name         string    `json:"name"`
	Type         Type      `json:"type"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// EventType returns the event type tag.
func (*AgentRegistered) EventType() string { return EventAgentRegistered }

// CapabilityAdvertised records a capability advertised by the agent.
type CapabilityAdvertised struct {
	CapabilityID string    `json:"capabilityId"`
	Name         string    `json:"name"`
	Version      string    `json:"version,omitempty"`
	AdvertisedAt time.Time `json:"advertisedAt"`
}

// EventType returns the event type tag.
func (*CapabilityAdvertised) EventType() string { return EventCapabilityAdvertised }

// WalletLinked records a wallet created for and linked to the agent.
type WalletLinked struct {
	WalletID string    `json:"walletId"`
	Currency string    `json:"currency"`
	LinkedAt time.Time `json:"linkedAt"`
}

// EventType returns the event type tag.
func (*WalletLinked) EventType() string { return EventWalletLinked }

// AgentDeactivated records the agent being taken out of service.
type AgentDeactivated struct {
	Reason        string    `json:"reason,omitempty"`
	DeactivatedAt time.Time `json:"deactivatedAt"`
}

// EventType returns the event type tag.
func (*AgentDeactivated) EventType() string { return EventAgentDeactivated }

// AgentReactivated records the agent returning to service.
type AgentReactivated struct {
	ReactivatedAt time.Time `json:"reactivatedAt"`
}

// EventType returns the event type tag.
func (*AgentReactivated) EventType() string { return EventAgentReactivated }

// ReputationMirrored records an informational copy of the agent's
// reputation score; the Reputation aggregate remains the source of truth.
type ReputationMirrored struct {
	Score      float64   `json:"score"`
	MirroredAt time.Time `json:"mirroredAt"`
}

// EventType returns the event type tag.
func (*ReputationMirrored) EventType() string { return EventReputationMirrored }

var (
	_ ledger.Event = (*AgentRegistered)(nil)
	_ ledger.Event = (*CapabilityAdvertised)(nil)
	_ ledger.Event = (*WalletLinked)(nil)
	_ ledger.Event = (*AgentDeactivated)(nil)
	_ ledger.Event = (*AgentReactivated)(nil)
	_ ledger.Event = (*ReputationMirrored)(nil)
)

// RegisterEvents registers all identity event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventAgentRegistered, func() ledger.Event { return new(AgentRegistered) })
	c.MustRegister(EventCapabilityAdvertised, func() ledger.Event { return new(CapabilityAdvertised) })
	c.MustRegister(EventWalletLinked, func() ledger.Event { return new(WalletLinked) })
	c.MustRegister(EventAgentDeactivated, func() ledger.Event { return new(AgentDeactivated) })
	c.MustRegister(EventAgentReactivated, func() ledger.Event { return new(AgentReactivated) })
	c.MustRegister(EventReputationMirrored, func() ledger.Event { return new(ReputationMirrored) })
}
