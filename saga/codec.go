// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package saga

import (
	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/capability"
	"github.com/go-a2a/ledger/compliance"
	"github.com/go-a2a/ledger/escrow"
	"github.com/go-a2a/ledger/identity"
	"github.com/go-a2a/ledger/message"
	"github.com/go-a2a/ledger/reputation"
	"github.com/go-a2a/ledger/security"
	"github.com/go-a2a/ledger/transaction"
	"github.com/go-a2a/ledger/wallet"
)

// NewCodec returns a codec with every aggregate's event types registered.
func NewCodec() *ledger.Codec {
	c := ledger.NewCodec()
	identity.RegisterEvents(c)
	capability.RegisterEvents(c)
	wallet.RegisterEvents(c)
	transaction.RegisterEvents(c)
	escrow.RegisterEvents(c)
	message.RegisterEvents(c)
	reputation.RegisterEvents(c)
	compliance.RegisterEvents(c)
	security.RegisterEvents(c)
	return c
}
