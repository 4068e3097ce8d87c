// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"time"

	"github.com/go-a2a/ledger"
)

// Event type tags for the capability aggregate.
const (
	EventCapabilityRegistered = "capability.registered"
	EventCapabilityActivated  = "capability.activated"
	EventVersionPublished     = "capability.version_published"
	EventEndpointsUpdated     = "capability.endpoints_updated"
	EventRateLimitsSet        = "capability.rate_limits_set"
	EventPrioritySet          = "capability.priority_set"
	EventCapabilityDeprecated = "capability.deprecated"
	EventCapabilityDisabled   = "capability.disabled"
	EventCapabilityEnabled    = "capability.enabled"
)

// CapabilityRegistered records a new capability entering the catalog as a
// draft.
type CapabilityRegistered struct {
	CapabilityID        string            `json:"capabilityId"`
	AgentID             string            `json:"agentId"`
	Name                string            `json:"name"`
	Description         string            `json:"description,omitempty"`
	Skills              []string          `json:"skills"`
	SupportedProtocols  []string          `json:"supportedProtocols"`
	RequiredPermissions []string          `json:"requiredPermissions,omitempty"`
	Parameters          map[string]string `json:"parameters,omitempty"`
	Priority            int               `json:"priority"`
	RegisteredAt        time.Time         `json:"registeredAt"`
}

// EventType returns the event type tag.
func (*CapabilityRegistered) EventType() string { return EventCapabilityRegistered }

// CapabilityActivated records the draft capability going live.
type CapabilityActivated struct {
	ActivatedAt time.Time `json:"activatedAt"`
}

// EventType returns the event type tag.
func (*CapabilityActivated) EventType() string { return EventCapabilityActivated }

// VersionPublished records a new semantic version of the capability.
type VersionPublished struct {
	Version            string    `json:"version"`
	Changes            []string  `json:"changes,omitempty"`
	BackwardCompatible bool      `json:"backwardCompatible"`
	MigrationPath      string    `json:"migrationPath,omitempty"`
	PublishedAt        time.Time `json:"publishedAt"`
}

// EventType returns the event type tag.
func (*VersionPublished) EventType() string { return EventVersionPublished }

// EndpointsUpdated records the capability's endpoints being replaced.
type EndpointsUpdated struct {
	Endpoints []Endpoint `json:"endpoints"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// EventType returns the event type tag.
func (*EndpointsUpdated) EventType() string { return EventEndpointsUpdated }

// RateLimitsSet records the capability's rate limits being replaced.
type RateLimitsSet struct {
	RateLimits []RateLimit `json:"rateLimits"`
	SetAt      time.Time   `json:"setAt"`
}

// EventType returns the event type tag.
func (*RateLimitsSet) EventType() string { return EventRateLimitsSet }

// PrioritySet records a priority change.
type PrioritySet struct {
	Priority int       `json:"priority"`
	SetAt    time.Time `json:"setAt"`
}

// EventType returns the event type tag.
func (*PrioritySet) EventType() string { return EventPrioritySet }

// CapabilityDeprecated records the capability being deprecated. No further
// advertising or updates are possible.
type CapabilityDeprecated struct {
	MigrationPath string    `json:"migrationPath,omitempty"`
	DeprecatedAt  time.Time `json:"deprecatedAt"`
}

// EventType returns the event type tag.
func (*CapabilityDeprecated) EventType() string { return EventCapabilityDeprecated }

// CapabilityDisabled records the capability being temporarily disabled.
type CapabilityDisabled struct {
	Reason     string    `json:"reason,omitempty"`
	DisabledAt time.Time `json:"disabledAt"`
}

// EventType returns the event type tag.
func (*CapabilityDisabled) EventType() string { return EventCapabilityDisabled }

// CapabilityEnabled records a disabled capability returning to service.
type CapabilityEnabled struct {
	EnabledAt time.Time `json:"enabledAt"`
}

// EventType returns the event type tag.
func (*CapabilityEnabled) EventType() string { return EventCapabilityEnabled }

var (
	_ ledger.Event = (*CapabilityRegistered)(nil)
	_ ledger.Event = (*CapabilityActivated)(nil)
	_ ledger.Event = (*VersionPublished)(nil)
	_ ledger.Event = (*EndpointsUpdated)(nil)
	_ ledger.Event = (*RateLimitsSet)(nil)
	_ ledger.Event = (*PrioritySet)(nil)
	_ ledger.Event = (*CapabilityDeprecated)(nil)
	_ ledger.Event = (*CapabilityDisabled)(nil)
	_ ledger.Event = (*CapabilityEnabled)(nil)
)

// RegisterEvents registers all capability event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventCapabilityRegistered, func() ledger.Event { return new(CapabilityRegistered) })
	c.MustRegister(EventCapabilityActivated, func() ledger.Event { return new(CapabilityActivated) })
	c.MustRegister(EventVersionPublished, func() ledger.Event { return new(VersionPublished) })
	c.MustRegister(EventEndpointsUpdated, func() ledger.Event { return new(EndpointsUpdated) })
	c.MustRegister(EventRateLimitsSet, func() ledger.Event { return new(RateLimitsSet) })
	c.MustRegister(EventPrioritySet, func() ledger.Event { return new(PrioritySet) })
	c.MustRegister(EventCapabilityDeprecated, func() ledger.Event { return new(CapabilityDeprecated) })
	c.MustRegister(EventCapabilityDisabled, func() ledger.Event { return new(CapabilityDisabled) })
	c.MustRegister(EventCapabilityEnabled, func() ledger.Event { return new(CapabilityEnabled) })
}
