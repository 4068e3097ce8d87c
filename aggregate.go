// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

// Aggregate is the contract every event-sourced aggregate satisfies.
// An aggregate exposes no mutable public fields; state changes only by
// applying recorded events.
type Aggregate interface {
	// AggregateID returns the globally unique, immutable id of the aggregate.
	AggregateID() string

	// AggregateType returns the stream type tag (e.g. "wallet").
	AggregateType() string

	// Version returns the number of events applied so far.
	Version() int64

	// Apply mutates the aggregate state for a single event. Apply performs
	// no validation beyond event-type dispatch; command methods validate
	// invariants before an event is ever recorded.
	Apply(Event) error

	// Root returns the embedded aggregate root bookkeeping.
	Root() *AggregateRoot
}

// Snapshotter is implemented by aggregates that support snapshotting.
// Snapshots are an optimization only: restoring from a snapshot and
// replaying the tail must yield the same state as a full replay.
type Snapshotter interface {
	// SnapshotState serializes the current aggregate state.
	SnapshotState() ([]byte, error)

	// RestoreSnapshot replaces the aggregate state with a previously
	// serialized snapshot.
	RestoreSnapshot(data []byte) error
}

// AggregateRoot carries the bookkeeping shared by all aggregates: identity,
// version, and the buffer of recorded-but-unpersisted events. Aggregates
// embed AggregateRoot and record state changes through the package-level
// Record function.
type AggregateRoot struct {
	id      string
	version int64
	pending []Event
}

// NewRoot creates the root bookkeeping for an aggregate id.
func NewRoot(id string) AggregateRoot {
	return AggregateRoot{id: id}
}

// AggregateID returns the aggregate id.
func (r *AggregateRoot) AggregateID() string { return r.id }

// Version returns the number of events applied so far, including events
// recorded in the current command that have not yet been persisted.
func (r *AggregateRoot) Version() int64 { return r.version }

// Root returns the receiver so that embedding satisfies Aggregate.
func (r *AggregateRoot) Root() *AggregateRoot { return r }

// Uncommitted returns the events recorded since the last persist.
func (r *AggregateRoot) Uncommitted() []Event { return r.pending }

// MarkCommitted clears the uncommitted event buffer after a successful
// persist.
func (r *AggregateRoot) MarkCommitted() { r.pending = nil }

// Record applies a new event to the aggregate and buffers it for
// persistence. Commands call Record only after all invariants have been
// validated; a failed Apply leaves the buffer untouched.
func Record(a Aggregate, event Event) error {
	if err := a.Apply(event); err != nil {
		return err
	}
	root := a.Root()
	root.version++
	root.pending = append(root.pending, event)
	return nil
}

// Rehydrate applies already-persisted events to the aggregate during
// replay. Nothing is buffered: the events are history, not new facts.
func Rehydrate(a Aggregate, events ...Event) error {
	for _, event := range events {
		if err := a.Apply(event); err != nil {
			return err
		}
		a.Root().version++
	}
	return nil
}
