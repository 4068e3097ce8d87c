// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package ledger_test

import (
	"fmt"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/ledger"
)

// counter is a minimal aggregate used to exercise the runtime.
type counter struct {
	ledger.AggregateRoot
	total int
}

type counterIncremented struct {
	N int `json:"n"`
}

func (*counterIncremented) EventType() string { return "counter.incremented" }

func newCounter(id string) *counter {
	return &counter{AggregateRoot: ledger.NewRoot(id)}
}

func (c *counter) AggregateType() string { return "counter" }

func (c *counter) Increment(n int) error {
	if n <= 0 {
		return ledger.NewValidationError(c, "increment must be positive, got %d", n)
	}
	return ledger.Record(c, &counterIncremented{N: n})
}

func (c *counter) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *counterIncremented:
		c.total += ev.N
	default:
		return fmt.Errorf("counter: unknown event type %T", event)
	}
	return nil
}

func (c *counter) SnapshotState() ([]byte, error) {
	return json.Marshal(struct {
		Total int `json:"total"`
	}{Total: c.total})
}

func (c *counter) RestoreSnapshot(data []byte) error {
	var state struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	c.total = state.Total
	return nil
}

func newCounterCodec() *ledger.Codec {
	c := ledger.NewCodec()
	c.MustRegister("counter.incremented", func() ledger.Event { return new(counterIncremented) })
	return c
}
