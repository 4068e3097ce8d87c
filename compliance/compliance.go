// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package compliance implements the AgentCompliance aggregate: the KYC
// workflow (pending -> in_review -> verified/rejected/requires_review) and
// the rolling transaction-limit bookkeeping that gates agent transactions.
// Limits are derived from the verification level scaled by a risk
// multiplier at verification time and can be explicitly overridden.
package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
)

// AggregateType is the stream type tag for compliance aggregates.
const AggregateType = "compliance"

// KycStatus is the state of the KYC workflow.
type KycStatus string

// KYC workflow states.
const (
	KycPending        KycStatus = "pending"
	KycInReview       KycStatus = "in_review"
	KycVerifiedStatus KycStatus = "verified"
	KycRejectedStatus KycStatus = "rejected"
	KycRequiresReview KycStatus = "requires_review"
)

// Level is the KYC verification level.
type Level string

// Verification levels.
const (
	LevelBasic    Level = "basic"
	LevelEnhanced Level = "enhanced"
	LevelFull     Level = "full"
)

// Period identifies one rolling transaction-limit window.
type Period string

// Limit periods.
const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Limits holds the per-period transaction limits.
type Limits struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// Totals holds the rolling per-period transaction totals.
type Totals struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// LimitExceededError reports a transaction amount that would breach a
// period limit. The caller must escalate rather than blindly retry.
type LimitExceededError struct {
	AgentID string
	Period  Period
	Amount  decimal.Decimal
	Total   decimal.Decimal
	Limit   decimal.Decimal
}

// Error implements the error interface.
func (e LimitExceededError) Error() string {
	return fmt.Sprintf("agent %s: %s limit exceeded: %s spent + %s requested > %s", e.AgentID, e.Period, e.Total, e.Amount, e.Limit)
}

// baseLimits returns the unadjusted limits for a verification level.
func baseLimits(level Level) (Limits, error) {
	switch level {
	case LevelBasic:
		return Limits{
			Daily:   decimal.NewFromInt(1000),
			Weekly:  decimal.NewFromInt(5000),
			Monthly: decimal.NewFromInt(10000),
		}, nil
	case LevelEnhanced:
		return Limits{
			Daily:   decimal.NewFromInt(5000),
			Weekly:  decimal.NewFromInt(25000),
			Monthly: decimal.NewFromInt(50000),
		}, nil
	case LevelFull:
		return Limits{
			Daily:   decimal.NewFromInt(10000),
			Weekly:  decimal.NewFromInt(50000),
			Monthly: decimal.NewFromInt(100000),
		}, nil
	default:
		return Limits{}, fmt.Errorf("invalid verification level: %s", level)
	}
}

// riskThreshold returns the maximum risk score a level tolerates before
// escalating to manual review.
func riskThreshold(level Level) int {
	switch level {
	case LevelBasic:
		return 70
	case LevelEnhanced:
		return 50
	default:
		return 30
	}
}

// riskMultiplier scales the base limits by how risky the agent looks.
func riskMultiplier(riskScore int) decimal.Decimal {
	switch {
	case riskScore <= 20:
		return decimal.NewFromFloat(1.5)
	case riskScore <= 40:
		return decimal.NewFromInt(1)
	case riskScore <= 60:
		return decimal.NewFromFloat(0.75)
	default:
		return decimal.NewFromFloat(0.5)
	}
}

// DeriveLimits computes the transaction limits for a verification level and
// risk score.
func DeriveLimits(level Level, riskScore int) (Limits, error) {
	base, err := baseLimits(level)
	if err != nil {
		return Limits{}, err
	}
	multiplier := riskMultiplier(riskScore)
	return Limits{
		Daily:   base.Daily.Mul(multiplier),
		Weekly:  base.Weekly.Mul(multiplier),
		Monthly: base.Monthly.Mul(multiplier),
	}, nil
}

// Compliance is the AgentCompliance aggregate.
type Compliance struct {
	ledger.AggregateRoot
	clock ledger.Clock

	agentID           string
	kycStatus         KycStatus
	level             Level
	riskScore         int
	limits            Limits
	totals            Totals
	kycExpiresAt      *time.Time
	requiredDocuments []string
	flags             []string
}

var _ ledger.Aggregate = (*Compliance)(nil)

// New creates an empty compliance aggregate ready for replay. Use
// InitiateKyc to start a new workflow.
func New(complianceID string, clock ledger.Clock) *Compliance {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Compliance{
		AggregateRoot:  ledger.NewRoot(complianceID),
		clock: clock,
	}
}

// InitiateKyc starts the KYC workflow for an agent at the given level.
func InitiateKyc(complianceID, agentID string, level Level, requiredDocuments []string, clock ledger.Clock) (*Compliance, error) {
	if complianceID == "" {
		return nil, fmt.Errorf("compliance ID cannot be empty")
	}
	if agentID == "" {
		return nil, fmt.Errorf("agent ID cannot be empty")
	}
	if _, err := baseLimits(level); err != nil {
		return nil, err
	}

	c := New(complianceID, clock)
	if err := ledger.Record(c, &KycInitiated{
		AgentID:           agentID,
		Level:             level,
		RequiredDocuments: requiredDocuments,
		InitiatedAt:       c.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// AggregateType returns the stream type tag.
func (c *Compliance) AggregateType() string { return AggregateType }

// AgentID returns the agent this compliance record belongs to.
func (c *Compliance) AgentID() string { return c.agentID }

// KycStatus returns the current workflow state.
func (c *Compliance) KycStatus() KycStatus { return c.kycStatus }

// VerificationLevel returns the requested verification level.
func (c *Compliance) VerificationLevel() Level { return c.level }

// RiskScore returns the last recorded risk score.
func (c *Compliance) RiskScore() int { return c.riskScore }

// TransactionLimits returns the current per-period limits.
func (c *Compliance) TransactionLimits() Limits { return c.limits }

// TransactionTotals returns the rolling per-period totals.
func (c *Compliance) TransactionTotals() Totals { return c.totals }

// KycExpiresAt returns the verification expiry, if verified.
func (c *Compliance) KycExpiresAt() *time.Time { return c.kycExpiresAt }

// IsKycVerified reports whether the agent is verified and the verification
// has not lapsed. Expiry is evaluated lazily against the clock; there is no
// background sweep.
func (c *Compliance) IsKycVerified() bool {
	if c.kycStatus != KycVerifiedStatus {
		return false
	}
	return c.kycExpiresAt != nil && c.kycExpiresAt.After(c.clock.Now())
}

// SubmitDocuments records submitted documents and moves the workflow to
// in_review. Submission against an already verified agent is rejected.
func (c *Compliance) SubmitDocuments(documents []string) error {
	if c.kycStatus == KycVerifiedStatus {
		return ledger.NewStateError(c, "submit documents", string(c.kycStatus))
	}
	if len(documents) == 0 {
		return ledger.NewValidationError(c, "documents cannot be empty")
	}
	return ledger.Record(c, &DocumentsSubmitted{
		Documents:   documents,
		SubmittedAt: c.clock.Now(),
	})
}

// VerifyKyc evaluates the check results. Any failed check rejects the
// application; a risk score above the level's threshold escalates to
// manual review; otherwise the agent is verified and its transaction
// limits derived.
func (c *Compliance) VerifyKyc(results map[string]bool, riskScore int, expiresAt time.Time, flags []string) error {
	if c.kycStatus != KycInReview {
		return ledger.NewStateError(c, "verify KYC", string(c.kycStatus))
	}
	if riskScore < 0 || riskScore > 100 {
		return ledger.NewValidationError(c, "risk score must be in [0,100], got %d", riskScore)
	}

	now := c.clock.Now()

	var failed []string
	for check, passed := range results {
		if !passed {
			failed = append(failed, check)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return ledger.Record(c, &KycRejected{
			FailedChecks: failed,
			RejectedAt:   now,
		})
	}

	if riskScore > riskThreshold(c.level) {
		return ledger.Record(c, &KycReviewRequired{
			RiskScore:   riskScore,
			Flags:       flags,
			EscalatedAt: now,
		})
	}

	if !expiresAt.After(now) {
		return ledger.NewValidationError(c, "KYC expiry %s must be in the future", expiresAt)
	}
	limits, err := DeriveLimits(c.level, riskScore)
	if err != nil {
		return ledger.NewValidationError(c, "%s", err)
	}
	return ledger.Record(c, &KycVerified{
		RiskScore:    riskScore,
		ExpiresAt:    expiresAt,
		DailyLimit:   limits.Daily,
		WeeklyLimit:  limits.Weekly,
		MonthlyLimit: limits.Monthly,
		VerifiedAt:   now,
	})
}

func (c *Compliance) limitFor(period Period) (limit, total decimal.Decimal, err error) {
	switch period {
	case PeriodDaily:
		return c.limits.Daily, c.totals.Daily, nil
	case PeriodWeekly:
		return c.limits.Weekly, c.totals.Weekly, nil
	case PeriodMonthly:
		return c.limits.Monthly, c.totals.Monthly, nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid limit period: %s", period)
	}
}

// CheckTransactionLimit reports whether the amount fits within the
// period's remaining limit. It is a pure predicate: no event is recorded.
// Callers must check before authorizing a transaction.
func (c *Compliance) CheckTransactionLimit(amount decimal.Decimal, period Period) (bool, error) {
	if !amount.IsPositive() {
		return false, ledger.NewValidationError(c, "amount must be positive, got %s", amount)
	}
	limit, total, err := c.limitFor(period)
	if err != nil {
		return false, ledger.NewValidationError(c, "%s", err)
	}
	return total.Add(amount).LessThanOrEqual(limit), nil
}

// RecordTransaction adds a settled transaction amount to the rolling
// totals for all periods.
func (c *Compliance) RecordTransaction(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledger.NewValidationError(c, "amount must be positive, got %s", amount)
	}
	return ledger.Record(c, &TransactionTotalsUpdated{
		Amount:     amount,
		RecordedAt: c.clock.Now(),
	})
}

// RecordLimitExceeded books a rejected transaction for reporting.
func (c *Compliance) RecordLimitExceeded(amount decimal.Decimal, period Period) error {
	if _, _, err := c.limitFor(period); err != nil {
		return ledger.NewValidationError(c, "%s", err)
	}
	return ledger.Record(c, &LimitExceededRecorded{
		Amount:     amount,
		Period:     period,
		RecordedAt: c.clock.Now(),
	})
}

// ResetTransactionLimits zeroes the rolling total for one period, leaving
// the other periods untouched.
func (c *Compliance) ResetTransactionLimits(period Period) error {
	if _, _, err := c.limitFor(period); err != nil {
		return ledger.NewValidationError(c, "%s", err)
	}
	return ledger.Record(c, &TransactionLimitsReset{
		Period:  period,
		ResetAt: c.clock.Now(),
	})
}

// OverrideLimits replaces the derived limits with explicit values.
func (c *Compliance) OverrideLimits(limits Limits, reason string) error {
	if limits.Daily.IsNegative() || limits.Weekly.IsNegative() || limits.Monthly.IsNegative() {
		return ledger.NewValidationError(c, "limits cannot be negative")
	}
	return ledger.Record(c, &LimitsOverridden{
		DailyLimit:   limits.Daily,
		WeeklyLimit:  limits.Weekly,
		MonthlyLimit: limits.Monthly,
		Reason:       reason,
		OverriddenAt: c.clock.Now(),
	})
}

// Apply mutates the compliance state for a single event.
func (c *Compliance) Apply(event ledger.Event) error {
	switch ev := event.(type) {
	case *KycInitiated:
		c.agentID = ev.AgentID
		c.level = ev.Level
		c.requiredDocuments = ev.RequiredDocuments
		c.kycStatus = KycPending
	case *DocumentsSubmitted:
		c.kycStatus = KycInReview
	case *KycVerified:
		c.kycStatus = KycVerifiedStatus
		c.riskScore = ev.RiskScore
		expiresAt := ev.ExpiresAt
		c.kycExpiresAt = &expiresAt
		c.limits = Limits{
			Daily:   ev.DailyLimit,
			Weekly:  ev.WeeklyLimit,
			Monthly: ev.MonthlyLimit,
		}
	case *KycRejected:
		c.kycStatus = KycRejectedStatus
	case *KycReviewRequired:
		c.kycStatus = KycRequiresReview
		c.riskScore = ev.RiskScore
		c.flags = ev.Flags
	case *TransactionTotalsUpdated:
		c.totals.Daily = c.totals.Daily.Add(ev.Amount)
		c.totals.Weekly = c.totals.Weekly.Add(ev.Amount)
		c.totals.Monthly = c.totals.Monthly.Add(ev.Amount)
	case *LimitExceededRecorded:
		// bookkeeping only
	case *TransactionLimitsReset:
		switch ev.Period {
		case PeriodDaily:
			c.totals.Daily = decimal.Zero
		case PeriodWeekly:
			c.totals.Weekly = decimal.Zero
		case PeriodMonthly:
			c.totals.Monthly = decimal.Zero
		}
	case *LimitsOverridden:
		c.limits = Limits{
			Daily:   ev.DailyLimit,
			Weekly:  ev.WeeklyLimit,
			Monthly: ev.MonthlyLimit,
		}
	default:
		return fmt.Errorf("compliance: unknown event type %T", event)
	}
	return nil
}
