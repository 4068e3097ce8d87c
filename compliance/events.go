// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compliance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// Event type tags for the compliance aggregate.
const (
	EventKycInitiated             = "compliance.kyc_initiated"
	EventDocumentsSubmitted       = "compliance.documents_submitted"
	EventKycVerified              = "compliance.kyc_verified"
	EventKycRejected              = "compliance.kyc_rejected"
	EventKycReviewRequired        = "compliance.kyc_review_required"
	EventTransactionTotalsUpdated = "compliance.transaction_totals_updated"
	EventLimitExceededRecorded    = "compliance.limit_exceeded_recorded"
	EventTransactionLimitsReset   = "compliance.transaction_limits_reset"
	EventLimitsOverridden         = "compliance.limits_overridden"
)

// KycInitiated records the start of a KYC workflow for an agent.
type KycInitiated struct {
	AgentID           string    `json:"agentId"`
	Level             Level     `json:"level"`
	RequiredDocuments []string  `json:"requiredDocuments,omitempty"`
	InitiatedAt       time.Time `json:"initiatedAt"`
}

// EventType returns the event type tag.
func (*KycInitiated) EventType() string { return EventKycInitiated }

// DocumentsSubmitted records documents submitted for review.
type DocumentsSubmitted struct {
	Documents   []string  `json:"documents"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// EventType returns the event type tag.
func (*DocumentsSubmitted) EventType() string { return EventDocumentsSubmitted }

// KycVerified records successful verification together with the
// transaction limits derived from the verification level and risk score.
type KycVerified struct {
	RiskScore    int             `json:"riskScore"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	DailyLimit   decimal.Decimal `json:"dailyLimit"`
	WeeklyLimit  decimal.Decimal `json:"weeklyLimit"`
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
	VerifiedAt   time.Time       `json:"verifiedAt"`
}

// EventType returns the event type tag.
func (*KycVerified) EventType() string { return EventKycVerified }

// KycRejected records verification rejected over failed checks.
type KycRejected struct {
	FailedChecks []string  `json:"failedChecks"`
	RejectedAt   time.Time `json:"rejectedAt"`
}

// EventType returns the event type tag.
func (*KycRejected) EventType() string { return EventKycRejected }

// KycReviewRequired records verification escalated to manual review
// because the risk score exceeded the level's threshold.
type KycReviewRequired struct {
	RiskScore   int       `json:"riskScore"`
	Flags       []string  `json:"flags,omitempty"`
	EscalatedAt time.Time `json:"escalatedAt"`
}

// EventType returns the event type tag.
func (*KycReviewRequired) EventType() string { return EventKycReviewRequired }

// TransactionTotalsUpdated records an amount added to the rolling
// daily/weekly/monthly totals.
type TransactionTotalsUpdated struct {
	Amount     decimal.Decimal `json:"amount"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// EventType returns the event type tag.
func (*TransactionTotalsUpdated) EventType() string { return EventTransactionTotalsUpdated }

// LimitExceededRecorded records a transaction rejected over a limit. It is
// bookkeeping for reporting; the rejection itself happened in the caller.
type LimitExceededRecorded struct {
	Amount     decimal.Decimal `json:"amount"`
	Period     Period          `json:"period"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// EventType returns the event type tag.
func (*LimitExceededRecorded) EventType() string { return EventLimitExceededRecorded }

// TransactionLimitsReset records the rolling total for one period being
// zeroed.
type TransactionLimitsReset struct {
	Period  Period    `json:"period"`
	ResetAt time.Time `json:"resetAt"`
}

// EventType returns the event type tag.
func (*TransactionLimitsReset) EventType() string { return EventTransactionLimitsReset }

// LimitsOverridden records an explicit limit override.
type LimitsOverridden struct {
	DailyLimit   decimal.Decimal `json:"dailyLimit"`
	WeeklyLimit  decimal.Decimal `json:"weeklyLimit"`
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
	Reason       string          `json:"reason,omitempty"`
	OverriddenAt time.Time       `json:"overriddenAt"`
}

// EventType returns the event type tag.
func (*LimitsOverridden) EventType() string { return EventLimitsOverridden }

var (
	_ ledger.Event = (*KycInitiated)(nil)
	_ ledger.Event = (*DocumentsSubmitted)(nil)
	_ ledger.Event = (*KycVerified)(nil)
	_ ledger.Event = (*KycRejected)(nil)
	_ ledger.Event = (*KycReviewRequired)(nil)
	_ ledger.Event = (*TransactionTotalsUpdated)(nil)
	_ ledger.Event = (*LimitExceededRecorded)(nil)
	_ ledger.Event = (*TransactionLimitsReset)(nil)
	_ ledger.Event = (*LimitsOverridden)(nil)
)

// RegisterEvents registers all compliance event types with the codec.
func RegisterEvents(c *ledger.Codec) {
	c.MustRegister(EventKycInitiated, func() ledger.Event { return new(KycInitiated) })
	c.MustRegister(EventDocumentsSubmitted, func() ledger.Event { return new(DocumentsSubmitted) })
	c.MustRegister(EventKycVerified, func() ledger.Event { return new(KycVerified) })
	c.MustRegister(EventKycRejected, func() ledger.Event { return new(KycRejected) })
	c.MustRegister(EventKycReviewRequired, func() ledger.Event { return new(KycReviewRequired) })
	c.MustRegister(EventTransactionTotalsUpdated, func() ledger.Event { return new(TransactionTotalsUpdated) })
	c.MustRegister(EventLimitExceededRecorded, func() ledger.Event { return new(LimitExceededRecorded) })
	c.MustRegister(EventTransactionLimitsReset, func() ledger.Event { return new(TransactionLimitsReset) })
	c.MustRegister(EventLimitsOverridden, func() ledger.Event { return new(LimitsOverridden) })
}
