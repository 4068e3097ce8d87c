// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventstore provides event store and snapshot store implementations
// for the ledger aggregate runtime: an in-memory store for tests and
// single-process use, and a GORM-backed store for durable deployments.
package eventstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-a2a/ledger"
)

// MemoryStore is an in-memory implementation of ledger.EventStore.
// Event data is lost when the process stops.
// All operations are thread-safe using sync.RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]ledger.Envelope
}

var _ ledger.EventStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]ledger.Envelope),
	}
}

// Append atomically appends events to the aggregate's stream, rejecting the
// write when the stream has advanced past expectedVersion.
func (s *MemoryStore) Append(ctx context.Context, aggregateID string, expectedVersion int64, events []ledger.Envelope) error {
	if aggregateID == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}
	if len(events) == 0 {
		return fmt.Errorf("events cannot be empty")
	}
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]
	current := int64(len(stream))
	if current != expectedVersion {
		return ledger.VersionConflictError{
			AggregateID: aggregateID,
			Expected:    expectedVersion,
			Actual:      current,
		}
	}

	s.streams[aggregateID] = append(stream, events...)
	return nil
}

// ReadStream returns the aggregate's events with version > fromVersion in
// version order.
func (s *MemoryStore) ReadStream(ctx context.Context, aggregateID string, fromVersion int64) ([]ledger.Envelope, error) {
	if aggregateID == "" {
		return nil, fmt.Errorf("aggregate ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[aggregateID]
	if fromVersion >= int64(len(stream)) {
		return nil, nil
	}

	// Copy the tail so callers never alias the internal slice.
	tail := make([]ledger.Envelope, len(stream)-int(fromVersion))
	copy(tail, stream[fromVersion:])
	return tail, nil
}

// MemorySnapshotStore is an in-memory implementation of ledger.SnapshotStore.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]ledger.Snapshot
}

var _ ledger.SnapshotStore = (*MemorySnapshotStore)(nil)

// NewMemorySnapshotStore creates a new MemorySnapshotStore.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snapshots: make(map[string]ledger.Snapshot),
	}
}

// LoadSnapshot returns the latest snapshot for the aggregate, or
// ledger.ErrNoSnapshot when none exists.
func (s *MemorySnapshotStore) LoadSnapshot(ctx context.Context, aggregateID string) (ledger.Snapshot, error) {
	if aggregateID == "" {
		return ledger.Snapshot{}, fmt.Errorf("aggregate ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, exists := s.snapshots[aggregateID]
	if !exists {
		return ledger.Snapshot{}, ledger.ErrNoSnapshot
	}
	return snapshot, nil
}

// SaveSnapshot stores the snapshot, replacing any earlier one.
func (s *MemorySnapshotStore) SaveSnapshot(ctx context.Context, snapshot ledger.Snapshot) error {
	if snapshot.AggregateID == "" {
		return fmt.Errorf("snapshot aggregate ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.AggregateID] = snapshot
	return nil
}
