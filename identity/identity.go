// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity implements the AgentIdentity aggregate: the root entity
// of the protocol. An agent registers with a decentralized identifier,
// becomes active, and from then on may advertise capabilities and link
// wallets. Capability and wallet state here are directory entries; the
// capability and wallet aggregates are the sources of truth.
package identity

import (
	"fmt"
	"time"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for identity aggregates.
const AggregateType = "identity"

// Type classifies an agent.
type Type string

// Agent types.
const (
	TypeAutonomous Type = "autonomous"
	TypeHuman      Type = "human"
	TypeService    Type = "service"
)

// Status is the lifecycle state of an agent identity.
type Status string

// Identity states.
const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
)

// CapabilityRef is a directory entry for an advertised capability.
type CapabilityRef struct {
	CapabilityID string    `json:"capabilityId"`
	Name         string    `json:"name"`
	Version      string    `json:"version,omitempty"`
	AdvertisedAt time.Time `json:"advertisedAt"`
}

// WalletRef is a directory entry for a linked wallet.
type WalletRef struct {
	WalletID string    `json:"walletId"`
	Currency string    `json:"currency"`
	LinkedAt time.Time `json:"linkedAt"`
}

// Identity is the AgentIdentity aggregate.
type Identity struct {
	ledger.AggregateRoot
	clock ledger.Clock

	did             string
	name            string
	agentType       Type
	status          Status
	reputationScore float64
	capabilities    map[string]CapabilityRef
	wallets         map[string]WalletRef
}

var _ ledger.Aggregate = (*Identity)(nil)

// New creates an empty identity aggregate ready for replay. Use Register
// to register a new agent.
func New(agentID string, clock ledger.Clock) *Identity {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Identity{
		AggregateRoot:         ledger.NewRoot(agentID),
		clock:        clock,
		capabilities: make(map[string]CapabilityRef),
		wallets:      make(map[string]WalletRef),
	}
}

// Register registers a new agent identity. Registration activates the
// agent; nothing can be advertised or linked before it.
func Register(agentID, did, name string, agentType Type, clock ledger.Clock) (*Identity, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent ID cannot be empty")
	}
	if did == "" {
		return nil, fmt.Errorf("DID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("agent name cannot be empty")
	}
	switch agentType {
	case TypeAutonomous, TypeHuman, TypeService:
	default:
		return nil, fmt.Errorf("invalid agent type: %s", agentType)
	}

	i := New(agentID, clock)
	if err := ledger.Record(i, &AgentRegistered{
		AgentID:      agentID,
		DID:          did,
		Name:         name,
		Type:         agentType,
		RegisteredAt: i.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return i, nil
}

// AggregateType returns the stream type tag.
func (i *Identity) AggregateType() string { return AggregateType }

// DID returns the agent's decentralized identifier.
func (i *Identity) DID() string { return i.did }

// Name returns the agent's display name.
func (i *Identity) Name() string { return i.name }

// Type returns the agent type.
func (i *Identity) Type() Type { return i.agentType }

// Status returns the current lifecycle state.
func (i *Identity) Status() Status { return i.status }

// ReputationScore returns the informational reputation mirror.
func (i *Identity) ReputationScore() float64 { return i.reputationScore }

// Capabilities returns a copy of the advertised capability directory.
func (i *Identity) Capabilities() map[string]CapabilityRef {
	out := make(map[string]CapabilityRef, len(i.capabilities))
	for id, ref := range i.capabilities {
		out[id] = ref
	}
	return out
}

// Wallets returns a copy of the linked wallet directory.
func (i *Identity) Wallets() map[string]WalletRef {
	out := make(map[string]WalletRef, len(i.wallets))
	for id, ref := range i.wallets {
		out[id] = ref
	}
	return out
}

// AdvertiseCapability adds a capability to the agent's directory. Only an
// active agent can advertise.
func (i *Identity) AdvertiseCapability(capabilityID, name, version string) error {
	if i.status != StatusActive {
		return ledger.NewStateError(i, "advertise capability", string(i.status))
	}
	if capabilityID == "" {
		return ledger.NewValidationError(i, "capability ID cannot be empty")
	}
	if name == "" {
		return ledger.NewValidationError(i, "capability name cannot be empty")
	}
	if _, exists := i.capabilities[capabilityID]; exists {
		return ledger.NewValidationError(i, "capability %s already advertised", capabilityID)
	}
	return ledger.Record(i, &CapabilityAdvertised{
		CapabilityID: capabilityID,
		Name:         name,
		Version:      version,
		AdvertisedAt: i.clock.Now(),
	})
}

// LinkWallet adds a wallet to the agent's directory. Only an active agent
// can link wallets.
func (i *Identity) LinkWallet(walletID, currency string) error {
	if i.status != StatusActive {
		return ledger.NewStateError(i, "link wallet", string(i.status))
	}
	if walletID == "" {
		return ledger.NewValidationError(i, "wallet ID cannot be empty")
	}
	if currency == "" {
		return ledger.NewValidationError(i, "currency cannot be empty")
	}
	if _, exists := i.wallets[walletID]; exists {
		return ledger.NewValidationError(i, "wallet %s already linked", walletID)
	}
	return ledger.Record(i, &WalletLinked{
		WalletID: walletID,
		Currency: currency,
		LinkedAt: i.clock.Now(),
	})
}

// Deactivate takes the agent out of service.
func (i *Identity) Deactivate(reason string) error {
	if i.status != StatusActive {
		return ledger.NewStateError(i, "deactivate", string(i.status))
	}
	return ledger.Record(i, &AgentDeactivated{
		Reason:        reason,
		DeactivatedAt: i.clock.Now(),
	})
}

// Reactivate returns the agent to service.
func (i *Identity) Reactivate() error {
	if i.status != StatusInactive {
		return ledger.NewStateError(i, "reactivate", string(i.status))
	}
	return ledger.Record(i, &AgentReactivated{
		ReactivatedAt: i.clock.Now(),
	})
}

// MirrorReputation stores an informational copy of the agent's reputation
// score.
func (i *Identity) MirrorReputation(score float64) error {
	if score < 0 || score > 100 {
		return ledger.NewValidationError(i, "reputation score must be in [0,100], got %g", score)
	}
	return ledger.Record(i, &ReputationMirrored{
		Score:      score,
		MirroredAt: i.clock.Now(),
	})
}

// Apply mutates the identity state for a single event.
func (i *Identity) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *AgentRegistered:
		i.did = ev.DID
		i.name = ev.Name
		i.agentType = ev.Type
		i.status = StatusActive
	case *CapabilityAdvertised:
		i.capabilities[ev.CapabilityID] = CapabilityRef{
			CapabilityID: ev.CapabilityID,
			Name:         ev.Name,
			Version:      ev.Version,
			AdvertisedAt: ev.AdvertisedAt,
		}
	case *WalletLinked:
		i.wallets[ev.WalletID] = WalletRef{
			WalletID: ev.WalletID,
			Currency: ev.Currency,
			LinkedAt: ev.LinkedAt,
		}
	case *AgentDeactivated:
		i.status = StatusInactive
	case *AgentReactivated:
		i.status = StatusActive
	case *ReputationMirrored:
		i.reputationScore = ev.Score
	default:
		return fmt.Errorf("identity: unknown event type %T", event)
	}
	return nil
}
