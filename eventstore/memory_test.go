// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/eventstore"
)

func envelope(aggregateID string, version int64) ledger.Envelope {
	return ledger.Envelope{
		EventID:       uuid.New(),
		AggregateType: "counter",
		AggregateID:   aggregateID,
		Version:       version,
		EventType:     "counter.incremented",
		OccurredAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Payload:       []byte(`{"n":1}`),
	}
}

func TestMemoryStore_AppendAndRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := eventstore.NewMemoryStore()

	if err := store.Append(ctx, "c-1", 0, []ledger.Envelope{envelope("c-1", 1), envelope("c-1", 2)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, "c-1", 2, []ledger.Envelope{envelope("c-1", 3)}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	all, err := store.ReadStream(ctx, "c-1", 0)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if got, want := len(all), 3; got != want {
		t.Fatalf("len(events) = %d, want %d", got, want)
	}
	for i, env := range all {
		if got, want := env.Version, int64(i+1); got != want {
			t.Errorf("events[%d].Version = %d, want %d", i, got, want)
		}
	}

	tail, err := store.ReadStream(ctx, "c-1", 2)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if got, want := len(tail), 1; got != want {
		t.Fatalf("len(tail) = %d, want %d", got, want)
	}
	if got, want := tail[0].Version, int64(3); got != want {
		t.Errorf("tail[0].Version = %d, want %d", got, want)
	}
}

func TestMemoryStore_VersionConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := eventstore.NewMemoryStore()

	if err := store.Append(ctx, "c-1", 0, []ledger.Envelope{envelope("c-1", 1)}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := store.Append(ctx, "c-1", 0, []ledger.Envelope{envelope("c-1", 1)})
	var conflict ledger.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Append error = %v, want VersionConflictError", err)
	}
	if got, want := conflict.Actual, int64(1); got != want {
		t.Errorf("Actual = %d, want %d", got, want)
	}

	// The losing write must not have been partially applied.
	all, err := store.ReadStream(ctx, "c-1", 0)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if got, want := len(all), 1; got != want {
		t.Errorf("len(events) = %d, want %d", got, want)
	}
}

func TestMemoryStore_ReadEmptyStream(t *testing.T) {
	t.Parallel()

	store := eventstore.NewMemoryStore()
	events, err := store.ReadStream(context.Background(), "missing", 0)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestMemorySnapshotStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := eventstore.NewMemorySnapshotStore()

	if _, err := store.LoadSnapshot(ctx, "c-1"); !errors.Is(err, ledger.ErrNoSnapshot) {
		t.Errorf("LoadSnapshot error = %v, want ErrNoSnapshot", err)
	}

	snapshot := ledger.Snapshot{AggregateID: "c-1", Version: 5, State: []byte(`{"total":15}`)}
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, "c-1")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got, want := loaded.Version, int64(5); got != want {
		t.Errorf("Version = %d, want %d", got, want)
	}
	if got, want := string(loaded.State), `{"total":15}`; got != want {
		t.Errorf("State = %s, want %s", got, want)
	}
}
