// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"errors"
	"fmt"
)

// EventStore is the append-only, per-aggregate-ordered event log the
// runtime persists to. Append must be atomic per call and must reject the
// write with a VersionConflictError when the stream already holds events
// beyond expectedVersion.
type EventStore interface {
	// Append atomically appends events to the aggregate's stream.
	// expectedVersion is the stream version the caller loaded; a mismatch
	// means a concurrent writer got there first.
	Append(ctx context.Context, aggregateID string, expectedVersion int64, events []Envelope) error

	// ReadStream returns the aggregate's events with version > fromVersion,
	// in version order.
	ReadStream(ctx context.Context, aggregateID string, fromVersion int64) ([]Envelope, error)
}

// Snapshot is a materialized aggregate state at a stream version.
type Snapshot struct {
	AggregateID string
	Version     int64
	State       []byte
}

// SnapshotStore persists optional aggregate snapshots. LoadSnapshot returns
// ErrNoSnapshot when none exists.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, aggregateID string) (Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
}

// Repository loads and persists one aggregate type. Load replays the event
// stream (or snapshot plus tail) to reconstruct state; Save appends the
// aggregate's uncommitted events with an optimistic version check.
//
// The runtime assumes a single writer per aggregate id. Concurrent writers
// are arbitrated by the version check: the loser's Save fails with
// VersionConflictError and the caller must reload and reissue the command.
type Repository[T Aggregate] struct {
	store         EventStore
	snapshots     SnapshotStore
	codec         *Codec
	newFunc       func(id string) T
	clock         Clock
	snapshotEvery int64
}

// RepositoryOption configures a Repository.
type RepositoryOption[T Aggregate] func(*Repository[T])

// WithSnapshots enables snapshotting: a snapshot is saved whenever the
// stream version crosses a multiple of every. The aggregate type must
// implement Snapshotter.
func WithSnapshots[T Aggregate](store SnapshotStore, every int64) RepositoryOption[T] {
	return func(r *Repository[T]) {
		r.snapshots = store
		r.snapshotEvery = every
	}
}

// WithClock overrides the clock used to stamp persisted envelopes.
func WithClock[T Aggregate](clock Clock) RepositoryOption[T] {
	return func(r *Repository[T]) {
		r.clock = clock
	}
}

// NewRepository creates a Repository for one aggregate type. newFunc
// returns an empty aggregate for the given id, ready for replay.
func NewRepository[T Aggregate](store EventStore, codec *Codec, newFunc func(id string) T, opts ...RepositoryOption[T]) *Repository[T] {
	r := &Repository[T]{
		store:   store,
		codec:   codec,
		newFunc: newFunc,
		clock:   SystemClock,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reconstructs the aggregate by replaying its event stream. When a
// snapshot store is configured and the aggregate supports snapshots, the
// snapshot is restored first and only the tail is replayed; the result is
// required to be indistinguishable from a full replay.
func (r *Repository[T]) Load(ctx context.Context, aggregateID string) (T, error) {
	var zero T
	if aggregateID == "" {
		return zero, fmt.Errorf("aggregate ID cannot be empty")
	}

	aggregate := r.newFunc(aggregateID)
	fromVersion := int64(0)

	if r.snapshots != nil {
		if snapshotter, ok := any(aggregate).(Snapshotter); ok {
			snapshot, err := r.snapshots.LoadSnapshot(ctx, aggregateID)
			switch {
			case err == nil:
				if err := snapshotter.RestoreSnapshot(snapshot.State); err != nil {
					return zero, fmt.Errorf("failed to restore snapshot for %s: %w", aggregateID, err)
				}
				aggregate.Root().version = snapshot.Version
				fromVersion = snapshot.Version
			case errors.Is(err, ErrNoSnapshot):
				// full replay
			default:
				return zero, err
			}
		}
	}

	envelopes, err := r.store.ReadStream(ctx, aggregateID, fromVersion)
	if err != nil {
		return zero, err
	}
	if fromVersion == 0 && len(envelopes) == 0 {
		return zero, NotFoundError{AggregateType: aggregate.AggregateType(), AggregateID: aggregateID}
	}

	for _, envelope := range envelopes {
		event, err := r.codec.Decode(envelope)
		if err != nil {
			return zero, err
		}
		if err := Rehydrate(aggregate, event); err != nil {
			return zero, fmt.Errorf("failed to replay %s at version %d: %w", aggregateID, envelope.Version, err)
		}
	}

	return aggregate, nil
}

// Save appends the aggregate's uncommitted events to the store. The append
// is all-or-nothing: on success the uncommitted buffer is cleared, on
// version conflict (or any other store error) the buffer is retained so the
// caller can reload and retry the whole command.
func (r *Repository[T]) Save(ctx context.Context, aggregate T) error {
	pending := aggregate.Root().Uncommitted()
	if len(pending) == 0 {
		return nil
	}

	expectedVersion := aggregate.Version() - int64(len(pending))
	now := r.clock.Now()

	envelopes := make([]Envelope, len(pending))
	for i, event := range pending {
		envelope, err := r.codec.Encode(aggregate.AggregateType(), aggregate.AggregateID(), expectedVersion+int64(i)+1, now, event)
		if err != nil {
			return err
		}
		envelopes[i] = envelope
	}

	if err := r.store.Append(ctx, aggregate.AggregateID(), expectedVersion, envelopes); err != nil {
		return err
	}
	aggregate.Root().MarkCommitted()

	r.maybeSnapshot(ctx, aggregate, expectedVersion)
	return nil
}

func (r *Repository[T]) maybeSnapshot(ctx context.Context, aggregate T, previousVersion int64) {
	if r.snapshots == nil || r.snapshotEvery <= 0 {
		return
	}
	snapshotter, ok := any(aggregate).(Snapshotter)
	if !ok {
		return
	}
	if aggregate.Version()/r.snapshotEvery == previousVersion/r.snapshotEvery {
		return
	}
	state, err := snapshotter.SnapshotState()
	if err != nil {
		return
	}
	// The events are already durable; a failed snapshot write only costs a
	// longer replay next time.
	_ = r.snapshots.SaveSnapshot(ctx, Snapshot{
		AggregateID: aggregate.AggregateID(),
		Version:     aggregate.Version(),
		State:       state,
	})
}
