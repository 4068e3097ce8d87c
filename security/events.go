// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"time"

	"github.com/go-a2a/ledger"
)

// Event type tags for the security aggregate.
const (
	EventSecurityInitialized  = "security.initialized"
	EventTransactionSigned    = "security.transaction_signed"
	EventTransactionEncrypted = "security.transaction_encrypted"
	EventTransactionVerified  = "security.transaction_verified"
	EventVerificationFailed   = "security.verification_failed"
	EventFraudCheckPerformed  = "security.fraud_check_performed"
)

// SecurityInitialized records the security pipeline being attached to a
// transaction with a fixed requirement set derived from the level.
type SecurityInitialized struct {
	SecurityID    string       `json:"securityId"`
	TransactionID string       `json:"transactionId"`
	AgentID       string       `json:"agentId"`
	Level         Level        `json:"level"`
	Requirements  Requirements `json:"requirements"`
	InitializedAt time.Time    `json:"initializedAt"`
}

// EventType returns the event type tag.
func (*SecurityInitialized) EventType() string { return EventSecurityInitialized }

// TransactionSigned records one signature over the transaction digest.
type TransactionSigned struct {
	SignedBy  string    `json:"signedBy"`
	KeyID     string    `json:"keyId,omitempty"`
	Algorithm string    `json:"algorithm"`
	Signature string    `json:"signature"`
	SignedAt  time.Time `json:"signedAt"`
}

// EventType returns the event type tag.
func (*TransactionSigned) EventType() string { return EventTransactionSigned }

// TransactionEncrypted records the transaction payload being encrypted.
type TransactionEncrypted struct {
	KeyID       string    `json:"keyId"`
	Algorithm   string    `json:"algorithm"`
	EncryptedAt time.Time `json:"encryptedAt"`
}

// EventType returns the event type tag.
func (*TransactionEncrypted) EventType() string { return EventTransactionEncrypted }

// TransactionVerified records a successful end-to-end verification.
type TransactionVerified struct {
	SignatureValid  bool      `json:"signatureValid"`
	EncryptionValid bool      `json:"encryptionValid"`
	VerifiedAt      time.Time `json:"verifiedAt"`
}

// EventType returns the event type tag.
func (*TransactionVerified) EventType() string { return EventTransactionVerified }

// VerificationFailed records a verification that did not satisfy the
// requirement set.
type VerificationFailed struct {
	SignatureValid  bool      `json:"signatureValid"`
	EncryptionValid bool      `json:"encryptionValid"`
	Reason          string    `json:"reason"`
	FailedAt        time.Time `json:"failedAt"`
}

// EventType returns the event type tag.
func (*VerificationFailed) EventType() string { return EventVerificationFailed }

// FraudCheckPerformed records one fraud-screening pass. A reject decision
// moves the pipeline to suspicious.
type FraudCheckPerformed struct {
	RiskScore   float64       `json:"riskScore"`
	RiskFactors []string      `json:"riskFactors,omitempty"`
	Decision    FraudDecision `json:"decision"`
	CheckedAt   time.Time     `json:"checkedAt"`
}

// EventType returns the event type tag.
func (*FraudCheckPerformed) EventType() string { return EventFraudCheckPerformed }

var (
	_ ledger.Event = (*SecurityInitialized)(nil)
	_ ledger.Event = (*TransactionSigned)(nil)
	_ ledger.Event = (*TransactionEncrypted)(nil)
	_ ledger.Event = (*TransactionVerified)(nil)
	_ ledger.Event = (*VerificationFailed)(nil)
	_ ledger.Event = (*FraudCheckPerformed)(nil)
)

// RegisterEvents registers all security event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventSecurityInitialized, func() ledger.Event { return new(SecurityInitialized) })
	c.MustRegister(EventTransactionSigned, func() ledger.Event { return new(TransactionSigned) })
	c.MustRegister(EventTransactionEncrypted, func() ledger.Event { return new(TransactionEncrypted) })
	c.MustRegister(EventTransactionVerified, func() ledger.Event { return new(TransactionVerified) })
	c.MustRegister(EventVerificationFailed, func() ledger.Event { return new(VerificationFailed) })
	c.MustRegister(EventFraudCheckPerformed, func() ledger.Event { return new(FraudCheckPerformed) })
}
