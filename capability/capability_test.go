// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package capability_test

import (
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"

	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/capability"
)

var testClock = ledger.FixedClock{Instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

func register(t *testing.T) *capability.Capability {
	t.Helper()
	c, err := capability.Register("cap-1", "agent-1", "invoice settlement", "settles invoices", []string{"payments"}, nil, 50, testClock)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return c
}

func TestRegister(t *testing.T) {
	t.Parallel()

	c := register(t)
	if got, want := c.Status(), capability.StatusDraft; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if diff := gocmp.Diff([]string{"AP2", "A2A"}, c.SupportedProtocols()); diff != "" {
		t.Errorf("SupportedProtocols mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := capability.Register("cap-1", "agent-1", "x", "", nil, nil, 50, testClock); err == nil {
		t.Error("Register without skills succeeded, want error")
	}
	if _, err := capability.Register("cap-1", "agent-1", "x", "", []string{"payments"}, nil, 101, testClock); err == nil {
		t.Error("Register with out-of-range priority succeeded, want error")
	}
}

func TestActivate(t *testing.T) {
	t.Parallel()

	c := register(t)
	if err := c.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if got, want := c.Status(), capability.StatusActive; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := c.Activate(); err == nil {
		t.Error("Activate twice succeeded, want error")
	}
}

func TestPublishVersion(t *testing.T) {
	t.Parallel()

	c := register(t)
	if err := c.PublishVersion("1.0.0", []string{"initial"}, true, ""); err != nil {
		t.Fatalf("PublishVersion: %v", err)
	}
	if err := c.PublishVersion("1.1.0-beta.1", []string{"streaming"}, true, ""); err != nil {
		t.Fatalf("PublishVersion: %v", err)
	}
	if got, want := c.CurrentVersion(), "1.1.0-beta.1"; got != want {
		t.Errorf("CurrentVersion = %q, want %q", got, want)
	}
	if err := c.PublishVersion("1.0.0", nil, true, ""); err == nil {
		t.Error("republishing an existing version succeeded, want error")
	}
}

func TestPublishVersion_Semver(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version string
		wantErr bool
	}{
		"plain":         {version: "2.0.1"},
		"prerelease":    {version: "2.0.1-rc.1"},
		"missing patch": {version: "2.0", wantErr: true},
		"leading v":     {version: "v2.0.1", wantErr: true},
		"words":         {version: "latest", wantErr: true},
		"empty":         {version: "", wantErr: true},
		"trailing junk": {version: "2.0.1 final", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := register(t)
			err := c.PublishVersion(tt.version, nil, true, "")
			if tt.wantErr && err == nil {
				t.Errorf("PublishVersion(%q) succeeded, want error", tt.version)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("PublishVersion(%q) = %v, want nil", tt.version, err)
			}
		})
	}
}

func TestUpdateEndpoints(t *testing.T) {
	t.Parallel()

	c := register(t)
	endpoints := []capability.Endpoint{{URL: "https://agent.example/pay", Protocol: "A2A"}}
	if err := c.UpdateEndpoints(endpoints); err != nil {
		t.Fatalf("UpdateEndpoints: %v", err)
	}
	if diff := gocmp.Diff(endpoints, c.Endpoints()); diff != "" {
		t.Errorf("Endpoints mismatch (-want +got):\n%s", diff)
	}
	if err := c.UpdateEndpoints(nil); err == nil {
		t.Error("UpdateEndpoints with no endpoints succeeded, want error")
	}
	if err := c.UpdateEndpoints([]capability.Endpoint{{URL: ""}}); err == nil {
		t.Error("UpdateEndpoints with empty URL succeeded, want error")
	}
}

func TestSetRateLimits(t *testing.T) {
	t.Parallel()

	c := register(t)
	if err := c.SetRateLimits([]capability.RateLimit{{Requests: 100, Period: "minute"}}); err != nil {
		t.Fatalf("SetRateLimits: %v", err)
	}
	if err := c.SetRateLimits([]capability.RateLimit{{Requests: 0, Period: "minute"}}); err == nil {
		t.Error("SetRateLimits with zero requests succeeded, want error")
	}
}

func TestSetPriority(t *testing.T) {
	t.Parallel()

	c := register(t)
	if err := c.SetPriority(90); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if got, want := c.Priority(), 90; got != want {
		t.Errorf("Priority = %d, want %d", got, want)
	}
	if err := c.SetPriority(-1); err == nil {
		t.Error("SetPriority out of range succeeded, want error")
	}
}

func TestDeprecate_Freezes(t *testing.T) {
	t.Parallel()

	c := register(t)
	if err := c.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := c.Deprecate("use cap-2"); err != nil {
		t.Fatalf("Deprecate: %v", err)
	}
	if got, want := c.Status(), capability.StatusDeprecated; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}

	if err := c.PublishVersion("2.0.0", nil, true, ""); err == nil {
		t.Error("PublishVersion after deprecation succeeded, want error")
	}
	if err := c.UpdateEndpoints([]capability.Endpoint{{URL: "https://x"}}); err == nil {
		t.Error("UpdateEndpoints after deprecation succeeded, want error")
	}
	if err := c.SetPriority(10); err == nil {
		t.Error("SetPriority after deprecation succeeded, want error")
	}
	if err := c.Disable("cleanup"); err == nil {
		t.Error("Disable after deprecation succeeded, want error")
	}
}

func TestDisableEnable(t *testing.T) {
	t.Parallel()

	c := register(t)
	if err := c.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := c.Disable("incident"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if got, want := c.Status(), capability.StatusDisabled; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := c.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if got, want := c.Status(), capability.StatusActive; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
	if err := c.Enable(); err == nil {
		t.Error("Enable of active capability succeeded, want error")
	}
}
