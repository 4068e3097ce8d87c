// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by a SnapshotStore when no snapshot exists for
// the requested aggregate.
var ErrNoSnapshot = errors.New("snapshot not found")

// ValidationError reports a command rejected because its input violates an
// aggregate invariant (negative amount, malformed version string, and so
// on). The aggregate state is unchanged; the caller must correct the input
// before retrying.
type ValidationError struct {
	Aggregate string
	ID        string
	Message   string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Aggregate, e.ID, e.Message)
}

// NewValidationError creates a ValidationError for the given aggregate.
func NewValidationError(a Aggregate, format string, args ...any) ValidationError {
	return ValidationError{
		Aggregate: a.AggregateType(),
		ID:        a.AggregateID(),
		Message:   fmt.Sprintf(format, args...),
	}
}

// StateError reports a command rejected because the aggregate is not in a
// state that permits the operation (completing a failed transaction,
// disputing an unfunded escrow). The aggregate state is unchanged.
type StateError struct {
	Aggregate string
	ID        string
	Operation string
	State     string
}

// Error implements the error interface.
func (e StateError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s in state %q", e.Aggregate, e.ID, e.Operation, e.State)
}

// NewStateError creates a StateError for the given aggregate and operation.
func NewStateError(a Aggregate, operation, state string) StateError {
	return StateError{
		Aggregate: a.AggregateType(),
		ID:        a.AggregateID(),
		Operation: operation,
		State:     state,
	}
}

// VersionConflictError reports an append rejected because the event store
// already holds a newer version of the stream. The caller must reload the
// aggregate and reissue the command.
type VersionConflictError struct {
	AggregateID string
	Expected    int64
	Actual      int64
}

// Error implements the error interface.
func (e VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected version %d, store has %d", e.AggregateID, e.Expected, e.Actual)
}

// NotFoundError reports that no events exist for the requested aggregate.
type NotFoundError struct {
	AggregateType string
	AggregateID   string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.AggregateType, e.AggregateID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
