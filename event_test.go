// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger_test

import (
	"testing"
	"time"

	"github.com/go-a2a/ledger"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := newCounterCodec()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	envelope, err := codec.Encode("counter", "c-1", 1, now, &counterIncremented{N: 5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := envelope.EventType, "counter.incremented"; got != want {
		t.Errorf("EventType = %q, want %q", got, want)
	}
	if envelope.EventID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("EventID is the zero UUID, want generated id")
	}
	if err := envelope.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	event, err := codec.Decode(envelope)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	incremented, ok := event.(*counterIncremented)
	if !ok {
		t.Fatalf("Decode returned %T, want *counterIncremented", event)
	}
	if got, want := incremented.N, 5; got != want {
		t.Errorf("N = %d, want %d", got, want)
	}
}

func TestCodec_Register(t *testing.T) {
	t.Parallel()

	codec := ledger.NewCodec()
	if err := codec.Register("counter.incremented", func() ledger.Event { return new(counterIncremented) }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := codec.Register("counter.incremented", func() ledger.Event { return new(counterIncremented) }); err == nil {
		t.Error("duplicate Register succeeded, want error")
	}
}

func TestCodec_DecodeUnknownType(t *testing.T) {
	t.Parallel()

	codec := newCounterCodec()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	envelope, err := codec.Encode("counter", "c-1", 1, now, &counterIncremented{N: 5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	envelope.EventType = "counter.unregistered"
	if _, err := codec.Decode(envelope); err == nil {
		t.Error("Decode of unregistered type succeeded, want error")
	}
}

func TestCodec_EncodeUnregistered(t *testing.T) {
	t.Parallel()

	codec := ledger.NewCodec()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := codec.Encode("counter", "c-1", 1, now, &counterIncremented{N: 5}); err == nil {
		t.Error("Encode of unregistered type succeeded, want error")
	}
}
