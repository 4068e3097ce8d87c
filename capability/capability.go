// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package capability implements the AgentCapability aggregate: a versioned
// catalog entry for one capability an agent offers. Entries move through
// draft -> active -> deprecated (or disabled), carry semantic versions with
// migration metadata, and advertise endpoints, rate limits, and protocol
// compatibility. A deprecated capability accepts no further updates.
package capability

import (
	"fmt"
	"regexp"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for capability aggregates.
const AggregateType = "capability"

// Status is the lifecycle state of a capability.
type Status string

// Capability states.
const (
	StatusDraft      Status = "draft"
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
	StatusDisabled   Status = "disabled"
)

// Default protocols every capability supports unless told otherwise.
var DefaultProtocols = []string{"AP2", "A2A"}

// semverPattern matches MAJOR.MINOR.PATCH with an optional suffix.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// Endpoint is one network endpoint serving the capability.
type Endpoint struct {
	URL      string `json:"url"`
	Protocol string `json:"protocol,omitempty"`
}

// RateLimit caps requests per period for the capability.
type RateLimit struct {
	Requests int    `json:"requests"`
	Period   string `json:"period"`
}

// VersionInfo describes one published version of the capability.
type VersionInfo struct {
	Changes            []string `json:"changes,omitempty"`
	BackwardCompatible bool     `json:"backwardCompatible"`
	MigrationPath      string   `json:"migrationPath,omitempty"`
}

// Capability is the AgentCapability aggregate.
type Capability struct {
	ledger.AggregateRoot
	clock ledger.Clock

	agentID             string
	name                string
	description         string
	status              Status
	skills              []string
	versions            map[string]VersionInfo
	currentVersion      string
	endpoints           []Endpoint
	parameters          map[string]string
	requiredPermissions []string
	supportedProtocols  []string
	rateLimits          []RateLimit
	priority            int
}

var _ ledger.Aggregate = (*Capability)(nil)

// New creates an empty capability aggregate ready for replay. Use Register
// to catalog a new capability.
func New(capabilityID string, clock ledger.Clock) *Capability {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Capability{
		AggregateRoot:     ledger.NewRoot(capabilityID),
		clock:    clock,
		versions: make(map[string]VersionInfo),
	}
}

// Register catalogs a new capability as a draft. Skills must be non-empty;
// protocols default to AP2 and A2A when none are given.
func Register(capabilityID, agentID, name, description string, skills []string, protocols []string, priority int, clock ledger.Clock) (*Capability, error) {
	if capabilityID == "" {
		return nil, fmt.Errorf("capability ID cannot be empty")
	}
	if agentID == "" {
		return nil, fmt.Errorf("agent ID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("capability name cannot be empty")
	}
	if len(skills) == 0 {
		return nil, fmt.Errorf("capability skills cannot be empty")
	}
	if priority < 0 || priority > 100 {
		return nil, fmt.Errorf("priority must be in [0,100], got %d", priority)
	}
	if len(protocols) == 0 {
		protocols = DefaultProtocols
	}

	c := New(capabilityID, clock)
	if err := ledger.Record(c, &CapabilityRegistered{
		CapabilityID:       capabilityID,
		AgentID:            agentID,
		Name:               name,
		Description:        description,
		Skills:             skills,
		SupportedProtocols: protocols,
		Priority:           priority,
		RegisteredAt:       c.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// AggregateType returns the stream type tag.
func (c *Capability) AggregateType() string { return AggregateType }

// AgentID returns the offering agent's id.
func (c *Capability) AgentID() string { return c.agentID }

// Name returns the capability name.
func (c *Capability) Name() string { return c.name }

// Status returns the current lifecycle state.
func (c *Capability) Status() Status { return c.status }

// Skills returns a copy of the logical skill tags.
func (c *Capability) Skills() []string {
	out := make([]string, len(c.skills))
	copy(out, c.skills)
	return out
}

// CurrentVersion returns the latest published version, empty before any
// publish.
func (c *Capability) CurrentVersion() string { return c.currentVersion }

// Versions returns a copy of the published version catalog.
func (c *Capability) Versions() map[string]VersionInfo {
	out := make(map[string]VersionInfo, len(c.versions))
	for version, info := range c.versions {
		out[version] = info
	}
	return out
}

// Endpoints returns a copy of the capability's endpoints.
func (c *Capability) Endpoints() []Endpoint {
	out := make([]Endpoint, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// SupportedProtocols returns a copy of the supported protocol list.
func (c *Capability) SupportedProtocols() []string {
	out := make([]string, len(c.supportedProtocols))
	copy(out, c.supportedProtocols)
	return out
}

// RateLimits returns a copy of the configured rate limits.
func (c *Capability) RateLimits() []RateLimit {
	out := make([]RateLimit, len(c.rateLimits))
	copy(out, c.rateLimits)
	return out
}

// Priority returns the capability priority in [0,100].
func (c *Capability) Priority() int { return c.priority }

// mutable reports whether the capability still accepts updates.
func (c *Capability) mutable(operation string) error {
	if c.status == StatusDeprecated {
		return ledger.NewStateError(c, operation, string(c.status))
	}
	return nil
}

// Activate takes the draft capability live.
func (c *Capability) Activate() error {
	if c.status != StatusDraft {
		return ledger.NewStateError(c, "activate", string(c.status))
	}
	return ledger.Record(c, &CapabilityActivated{
		ActivatedAt: c.clock.Now(),
	})
}

// PublishVersion publishes a new semantic version of the capability and
// makes it current.
func (c *Capability) PublishVersion(version string, changes []string, backwardCompatible bool, migrationPath string) error {
	if err := c.mutable("publish version"); err != nil {
		return err
	}
	if !semverPattern.MatchString(version) {
		return ledger.NewValidationError(c, "version %q is not a valid semantic version", version)
	}
	if _, exists := c.versions[version]; exists {
		return ledger.NewValidationError(c, "version %s already published", version)
	}
	return ledger.Record(c, &VersionPublished{
		Version:            version,
		Changes:            changes,
		BackwardCompatible: backwardCompatible,
		MigrationPath:      migrationPath,
		PublishedAt:        c.clock.Now(),
	})
}

// UpdateEndpoints replaces the capability's endpoints.
func (c *Capability) UpdateEndpoints(endpoints []Endpoint) error {
	if err := c.mutable("update endpoints"); err != nil {
		return err
	}
	if len(endpoints) == 0 {
		return ledger.NewValidationError(c, "endpoints cannot be empty")
	}
	for _, endpoint := range endpoints {
		if endpoint.URL == "" {
			return ledger.NewValidationError(c, "endpoint URL cannot be empty")
		}
	}
	return ledger.Record(c, &EndpointsUpdated{
		Endpoints: endpoints,
		UpdatedAt: c.clock.Now(),
	})
}

// SetRateLimits replaces the capability's rate limits.
func (c *Capability) SetRateLimits(rateLimits []RateLimit) error {
	if err := c.mutable("set rate limits"); err != nil {
		return err
	}
	for _, limit := range rateLimits {
		if limit.Requests <= 0 {
			return ledger.NewValidationError(c, "rate limit requests must be positive, got %d", limit.Requests)
		}
		if limit.Period == "" {
			return ledger.NewValidationError(c, "rate limit period cannot be empty")
		}
	}
	return ledger.Record(c, &RateLimitsSet{
		RateLimits: rateLimits,
		SetAt:      c.clock.Now(),
	})
}

// SetPriority changes the capability priority.
func (c *Capability) SetPriority(priority int) error {
	if err := c.mutable("set priority"); err != nil {
		return err
	}
	if priority < 0 || priority > 100 {
		return ledger.NewValidationError(c, "priority must be in [0,100], got %d", priority)
	}
	return ledger.Record(c, &PrioritySet{
		Priority: priority,
		SetAt:    c.clock.Now(),
	})
}

// Deprecate retires the capability. Deprecation is final: no further
// updates or state changes are accepted.
func (c *Capability) Deprecate(migrationPath string) error {
	if c.status != StatusActive && c.status != StatusDisabled {
		return ledger.NewStateError(c, "deprecate", string(c.status))
	}
	return ledger.Record(c, &CapabilityDeprecated{
		MigrationPath: migrationPath,
		DeprecatedAt:  c.clock.Now(),
	})
}

// Disable temporarily removes the capability from service.
func (c *Capability) Disable(reason string) error {
	if c.status != StatusActive {
		return ledger.NewStateError(c, "disable", string(c.status))
	}
	return ledger.Record(c, &CapabilityDisabled{
		Reason:     reason,
		DisabledAt: c.clock.Now(),
	})
}

// Enable returns a disabled capability to service.
func (c *Capability) Enable() error {
	if c.status != StatusDisabled {
		return ledger.NewStateError(c, "enable", string(c.status))
	}
	return ledger.Record(c, &CapabilityEnabled{
		EnabledAt: c.clock.Now(),
	})
}

// Apply mutates the capability state for a single event.
func (c *Capability) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *CapabilityRegistered:
		c.agentID = ev.AgentID
		c.name = ev.Name
		c.description = ev.Description
		c.skills = ev.Skills
		c.supportedProtocols = ev.SupportedProtocols
		c.requiredPermissions = ev.RequiredPermissions
		c.parameters = ev.Parameters
		c.priority = ev.Priority
		c.status = StatusDraft
	case *CapabilityActivated:
		c.status = StatusActive
	case *VersionPublished:
		c.versions[ev.Version] = VersionInfo{
			Changes:            ev.Changes,
			BackwardCompatible: ev.BackwardCompatible,
			MigrationPath:      ev.MigrationPath,
		}
		c.currentVersion = ev.Version
	case *EndpointsUpdated:
		c.endpoints = ev.Endpoints
	case *RateLimitsSet:
		c.rateLimits = ev.RateLimits
	case *PrioritySet:
		c.priority = ev.Priority
	case *CapabilityDeprecated:
		c.status = StatusDeprecated
	case *CapabilityDisabled:
		c.status = StatusDisabled
	case *CapabilityEnabled:
		c.status = StatusActive
	default:
		return fmt.Errorf("capability: unknown event type %T", event)
	}
	return nil
}
