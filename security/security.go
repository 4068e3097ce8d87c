// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package security implements the TransactionSecurity aggregate: a
// signing, encryption, and fraud-screening pipeline attached to a single
// transaction. The security level fixes the requirement set at
// initialization; verification checks the collected evidence against it.
package security

import (
	"fmt"
	"time"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for security aggregates.
const AggregateType = "security"

// Level selects the requirement set for a transaction.
type Level string

// Security levels. Signature is required at every level, encryption from
// enhanced up, multiple signatures only at maximum.
const (
	LevelStandard Level = "standard"
	LevelEnhanced Level = "enhanced"
	LevelMaximum  Level = "maximum"
)

// Status is the pipeline state of a security aggregate.
type Status string

// Security states.
const (
	StatusPending    Status = "pending"
	StatusSigned     Status = "signed"
	StatusEncrypted  Status = "encrypted"
	StatusVerified   Status = "verified"
	StatusSuspicious Status = "suspicious"
	StatusFailed     Status = "failed"
)

// FraudDecision is the outcome of one fraud check.
type FraudDecision string

// Fraud decisions.
const (
	DecisionApprove FraudDecision = "approve"
	DecisionReject  FraudDecision = "reject"
	DecisionReview  FraudDecision = "review"
)

// Requirements is the check set implied by a security level.
type Requirements struct {
	Signature          bool `json:"signature"`
	Encryption         bool `json:"encryption"`
	MultiSignature     bool `json:"multiSignature"`
	RequiredSignatures int  `json:"requiredSignatures"`
}

// RequirementsForLevel maps a security level to its fixed check set.
func RequirementsForLevel(level Level) (Requirements, error) {
	switch level {
	case LevelStandard:
		return Requirements{Signature: true, RequiredSignatures: 1}, nil
	case LevelEnhanced:
		return Requirements{Signature: true, Encryption: true, RequiredSignatures: 1}, nil
	case LevelMaximum:
		return Requirements{Signature: true, Encryption: true, MultiSignature: true, RequiredSignatures: 2}, nil
	default:
		return Requirements{}, fmt.Errorf("unknown security level %q", level)
	}
}

// Signature is one recorded signature over the transaction digest.
type Signature struct {
	SignedBy  string
	KeyID     string
	Algorithm string
	Signature string
	SignedAt  time.Time
}

// FraudCheck is one recorded fraud-screening pass.
type FraudCheck struct {
	RiskScore   float64
	RiskFactors []string
	Decision    FraudDecision
	CheckedAt   time.Time
}

// Security is the TransactionSecurity aggregate.
type Security struct {
	ledger.AggregateRoot
	clock ledger.Clock

	transactionID  string
	agentID        string
	level          Level
	requirements   Requirements
	status         Status
	signatures     []Signature
	encryptionKeys []string
	fraudChecks    []FraudCheck
}

var _ ledger.Aggregate = (*Security)(nil)

// New creates an empty security aggregate ready for replay. Use Initialize
// to attach a security pipeline to a transaction.
func New(securityID string, clock ledger.Clock) *Security {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Security{
		AggregateRoot:  ledger.NewRoot(securityID),
		clock: clock,
	}
}

// Initialize attaches a security pipeline to a transaction. The level
// fixes the requirement set for the lifetime of the aggregate.
func Initialize(securityID, transactionID, agentID string, level Level, clock ledger.Clock) (*Security, error) {
	if securityID == "" {
		return nil, fmt.Errorf("security ID cannot be empty")
	}
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if agentID == "" {
		return nil, fmt.Errorf("agent ID cannot be empty")
	}
	requirements, err := RequirementsForLevel(level)
	if err != nil {
		return nil, err
	}

	s := New(securityID, clock)
	if err := ledger.Record(s, &SecurityInitialized{
		SecurityID:    securityID,
		TransactionID: transactionID,
		AgentID:       agentID,
		Level:         level,
		Requirements:  requirements,
		InitializedAt: s.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// AggregateType returns the stream type tag.
func (s *Security) AggregateType() string { return AggregateType }

// TransactionID returns the guarded transaction's id.
func (s *Security) TransactionID() string { return s.transactionID }

// Level returns the security level.
func (s *Security) Level() Level { return s.level }

// Requirements returns the check set fixed at initialization.
func (s *Security) Requirements() Requirements { return s.requirements }

// Status returns the current pipeline state.
func (s *Security) Status() Status { return s.status }

// Signatures returns a copy of the collected signatures.
func (s *Security) Signatures() []Signature {
	out := make([]Signature, len(s.signatures))
	copy(out, s.signatures)
	return out
}

// FraudChecks returns a copy of the recorded fraud checks.
func (s *Security) FraudChecks() []FraudCheck {
	out := make([]FraudCheck, len(s.fraudChecks))
	copy(out, s.fraudChecks)
	return out
}

// terminal reports whether the pipeline accepts no further evidence.
func (s *Security) terminal() bool {
	switch s.status {
	case StatusVerified, StatusSuspicious, StatusFailed:
		return true
	}
	return false
}

// Sign records a signature over the transaction digest. At maximum level
// multiple distinct signers may each sign once.
func (s *Security) Sign(signedBy, keyID, algorithm, signature string) error {
	if s.terminal() {
		return ledger.NewStateError(s, "sign", string(s.status))
	}
	if signedBy == "" {
		return ledger.NewValidationError(s, "signer cannot be empty")
	}
	if signature == "" {
		return ledger.NewValidationError(s, "signature cannot be empty")
	}
	for _, existing := range s.signatures {
		if existing.SignedBy == signedBy {
			return ledger.NewValidationError(s, "agent %s has already signed", signedBy)
		}
	}
	return ledger.Record(s, &TransactionSigned{
		SignedBy:  signedBy,
		KeyID:     keyID,
		Algorithm: algorithm,
		Signature: signature,
		SignedAt:  s.clock.Now(),
	})
}

// Encrypt records the transaction payload being encrypted. Only valid for
// enhanced and maximum levels.
func (s *Security) Encrypt(keyID, algorithm string) error {
	if s.terminal() {
		return ledger.NewStateError(s, "encrypt", string(s.status))
	}
	if !s.requirements.Encryption {
		return ledger.NewValidationError(s, "encryption is not part of security level %s", s.level)
	}
	if keyID == "" {
		return ledger.NewValidationError(s, "encryption key ID cannot be empty")
	}
	return ledger.Record(s, &TransactionEncrypted{
		KeyID:       keyID,
		Algorithm:   algorithm,
		EncryptedAt: s.clock.Now(),
	})
}

// Verify checks the collected evidence against the requirement set. The
// signature must verify at every level; encryption must additionally
// verify at enhanced and maximum; maximum requires the full signature
// quorum.
func (s *Security) Verify(signatureValid, encryptionValid bool) error {
	if s.terminal() {
		return ledger.NewStateError(s, "verify", string(s.status))
	}
	now := s.clock.Now()
	if reason := s.verificationFailure(signatureValid, encryptionValid); reason != "" {
		return ledger.Record(s, &VerificationFailed{
			SignatureValid:  signatureValid,
			EncryptionValid: encryptionValid,
			Reason:          reason,
			FailedAt:        now,
		})
	}
	return ledger.Record(s, &TransactionVerified{
		SignatureValid:  signatureValid,
		EncryptionValid: encryptionValid,
		VerifiedAt:      now,
	})
}

func (s *Security) verificationFailure(signatureValid, encryptionValid bool) string {
	if !signatureValid {
		return "signature invalid"
	}
	if len(s.signatures) < s.requirements.RequiredSignatures {
		return fmt.Sprintf("%d of %d required signatures collected", len(s.signatures), s.requirements.RequiredSignatures)
	}
	if s.requirements.Encryption {
		if len(s.encryptionKeys) == 0 {
			return "transaction was never encrypted"
		}
		if !encryptionValid {
			return "encryption invalid"
		}
	}
	return ""
}

// CheckFraud records one fraud-screening pass. A reject decision moves the
// pipeline to suspicious, which blocks transaction completion upstream.
func (s *Security) CheckFraud(riskScore float64, riskFactors []string, decision FraudDecision) error {
	if s.terminal() {
		return ledger.NewStateError(s, "check fraud", string(s.status))
	}
	if riskScore < 0 || riskScore > 100 {
		return ledger.NewValidationError(s, "risk score must be in [0,100], got %v", riskScore)
	}
	switch decision {
	case DecisionApprove, DecisionReject, DecisionReview:
	default:
		return ledger.NewValidationError(s, "unknown fraud decision %q", decision)
	}
	return ledger.Record(s, &FraudCheckPerformed{
		RiskScore:   riskScore,
		RiskFactors: riskFactors,
		Decision:    decision,
		CheckedAt:   s.clock.Now(),
	})
}

// Apply mutates the security state for a single event.
func (s *Security) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *SecurityInitialized:
		s.transactionID = ev.TransactionID
		s.agentID = ev.AgentID
		s.level = ev.Level
		s.requirements = ev.Requirements
		s.status = StatusPending
	case *TransactionSigned:
		s.signatures = append(s.signatures, Signature{
			SignedBy:  ev.SignedBy,
			KeyID:     ev.KeyID,
			Algorithm: ev.Algorithm,
			Signature: ev.Signature,
			SignedAt:  ev.SignedAt,
		})
		s.status = StatusSigned
	case *TransactionEncrypted:
		s.encryptionKeys = append(s.encryptionKeys, ev.KeyID)
		s.status = StatusEncrypted
	case *TransactionVerified:
		s.status = StatusVerified
	case *VerificationFailed:
		s.status = StatusFailed
	case *FraudCheckPerformed:
		s.fraudChecks = append(s.fraudChecks, FraudCheck{
			RiskScore:   ev.RiskScore,
			RiskFactors: ev.RiskFactors,
			Decision:    ev.Decision,
			CheckedAt:   ev.CheckedAt,
		})
		if ev.Decision == DecisionReject {
			s.status = StatusSuspicious
		}
	default:
		return fmt.Errorf("security: unknown event type %T", event)
	}
	return nil
}
