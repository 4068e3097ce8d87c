// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package saga orchestrates multi-aggregate payment workflows. Aggregates
// are independent consistency boundaries, so a workflow spanning a
// transaction, two wallets, and an escrow is not atomic: the coordinator
// issues compensating commands (cancel the hold, fail the transaction)
// when a later step fails after an earlier one has been persisted.
package saga

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger"
	"github.com/go-a2a/ledger/compliance"
	"github.com/go-a2a/ledger/escrow"
	"github.com/go-a2a/ledger/reputation"
	"github.com/go-a2a/ledger/transaction"
	"github.com/go-a2a/ledger/wallet"
)

// PaymentCoordinator drives direct and escrow payment workflows across
// wallet, transaction, escrow, compliance, and reputation aggregates.
//
// Commands for a given aggregate id must not be issued concurrently with
// the coordinator; interleaved writers are caught by the store's version
// check and surface as VersionConflictError.
type PaymentCoordinator struct {
	wallets      *ledger.Repository[*wallet.Wallet]
	transactions *ledger.Repository[*transaction.Transaction]
	escrows      *ledger.Repository[*escrow.Escrow]
	compliances  *ledger.Repository[*compliance.Compliance]
	reputations  *ledger.Repository[*reputation.Reputation]
	clock        ledger.Clock
	logger       *slog.Logger
}

// CoordinatorOption configures a PaymentCoordinator.
type CoordinatorOption func(*PaymentCoordinator)

// WithClock overrides the clock used by aggregates the coordinator creates.
func WithClock(clock ledger.Clock) CoordinatorOption {
	return func(pc *PaymentCoordinator) {
		pc.clock = clock
	}
}

// WithLogger overrides the coordinator's logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(pc *PaymentCoordinator) {
		pc.logger = logger
	}
}

// NewPaymentCoordinator creates a coordinator over a shared event store.
// The codec must have all aggregate event types registered (see NewCodec).
func NewPaymentCoordinator(store ledger.EventStore, codec *ledger.Codec, opts ...CoordinatorOption) *PaymentCoordinator {
	pc := &PaymentCoordinator{
		clock:  ledger.SystemClock,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(pc)
	}
	pc.wallets = ledger.NewRepository(store, codec, func(id string) *wallet.Wallet {
		return wallet.New(id, pc.clock)
	})
	pc.transactions = ledger.NewRepository(store, codec, func(id string) *transaction.Transaction {
		return transaction.New(id, pc.clock)
	})
	pc.escrows = ledger.NewRepository(store, codec, func(id string) *escrow.Escrow {
		return escrow.New(id, pc.clock)
	})
	pc.compliances = ledger.NewRepository(store, codec, func(id string) *compliance.Compliance {
		return compliance.New(id, pc.clock)
	})
	pc.reputations = ledger.NewRepository(store, codec, func(id string) *reputation.Reputation {
		return reputation.New(id, pc.clock)
	})
	return pc
}

// Wallets returns the coordinator's wallet repository.
func (pc *PaymentCoordinator) Wallets() *ledger.Repository[*wallet.Wallet] { return pc.wallets }

// Transactions returns the coordinator's transaction repository.
func (pc *PaymentCoordinator) Transactions() *ledger.Repository[*transaction.Transaction] {
	return pc.transactions
}

// Escrows returns the coordinator's escrow repository.
func (pc *PaymentCoordinator) Escrows() *ledger.Repository[*escrow.Escrow] { return pc.escrows }

// DirectPaymentRequest describes a direct wallet-to-wallet payment.
// ComplianceID and ReputationID are optional: when set, the sender's
// transaction limits gate the payment and the outcome feeds its
// reputation.
type DirectPaymentRequest struct {
	TransactionID string
	FromWalletID  string
	ToWalletID    string
	Amount        decimal.Decimal
	Currency      string
	ComplianceID  string
	ReputationID  string
}

// DirectPayment runs the full direct payment workflow: compliance gate,
// hold on the sender wallet, transaction lifecycle, settlement into the
// receiver wallet, then reputation and limit bookkeeping. A failure after
// the hold compensates by cancelling the hold and failing the transaction.
func (pc *PaymentCoordinator) DirectPayment(ctx context.Context, req DirectPaymentRequest) (*transaction.Transaction, error) {
	if err := pc.checkLimits(ctx, req.ComplianceID, req.Amount); err != nil {
		return nil, err
	}

	sender, err := pc.wallets.Load(ctx, req.FromWalletID)
	if err != nil {
		return nil, fmt.Errorf("load sender wallet: %w", err)
	}
	receiver, err := pc.wallets.Load(ctx, req.ToWalletID)
	if err != nil {
		return nil, fmt.Errorf("load receiver wallet: %w", err)
	}

	if err := sender.InitiatePayment(req.TransactionID, receiver.AgentID(), req.Amount); err != nil {
		return nil, err
	}
	if err := pc.wallets.Save(ctx, sender); err != nil {
		return nil, fmt.Errorf("persist payment hold: %w", err)
	}

	txn, err := transaction.Initiate(req.TransactionID, sender.AgentID(), receiver.AgentID(), req.Amount, req.Currency, transaction.TypeDirect, "", pc.clock)
	if err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, err
	}
	if err := txn.Validate(nil); err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, err
	}
	if err := pc.transactions.Save(ctx, txn); err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	if err := sender.CompletePayment(req.TransactionID, req.Amount, receiver.AgentID()); err != nil {
		pc.compensate(ctx, txn, req.FromWalletID, req.TransactionID, err.Error())
		return nil, err
	}
	if err := pc.wallets.Save(ctx, sender); err != nil {
		pc.compensate(ctx, txn, req.FromWalletID, req.TransactionID, err.Error())
		return nil, fmt.Errorf("persist payment completion: %w", err)
	}

	if err := receiver.ReceivePayment(req.TransactionID, sender.AgentID(), req.Amount); err != nil {
		return nil, err
	}
	if err := pc.wallets.Save(ctx, receiver); err != nil {
		return nil, fmt.Errorf("persist payment receipt: %w", err)
	}

	if err := txn.Complete("settled", nil); err != nil {
		return nil, err
	}
	if err := pc.transactions.Save(ctx, txn); err != nil {
		return nil, fmt.Errorf("persist transaction completion: %w", err)
	}

	pc.recordOutcome(ctx, req.ComplianceID, req.ReputationID, req.TransactionID, req.Amount, reputation.OutcomeSuccess)
	return txn, nil
}

// EscrowPaymentRequest describes an escrow-type payment: funds are held on
// the sender wallet and deposited into an escrow pending release.
type EscrowPaymentRequest struct {
	TransactionID string
	FromWalletID  string
	ToWalletID    string
	Amount        decimal.Decimal
	Currency      string
	Conditions    []string
	ExpiresAt     *time.Time
	ComplianceID  string
}

// EscrowPayment opens an escrow-type payment: compliance gate, hold on the
// sender wallet, transaction in processing with escrow held, and a fully
// funded escrow aggregate. Settlement happens later via SettleEscrow or
// RefundEscrow.
func (pc *PaymentCoordinator) EscrowPayment(ctx context.Context, req EscrowPaymentRequest) (*transaction.Transaction, *escrow.Escrow, error) {
	if err := pc.checkLimits(ctx, req.ComplianceID, req.Amount); err != nil {
		return nil, nil, err
	}

	sender, err := pc.wallets.Load(ctx, req.FromWalletID)
	if err != nil {
		return nil, nil, fmt.Errorf("load sender wallet: %w", err)
	}
	receiver, err := pc.wallets.Load(ctx, req.ToWalletID)
	if err != nil {
		return nil, nil, fmt.Errorf("load receiver wallet: %w", err)
	}

	if err := sender.InitiatePayment(req.TransactionID, receiver.AgentID(), req.Amount); err != nil {
		return nil, nil, err
	}
	if err := pc.wallets.Save(ctx, sender); err != nil {
		return nil, nil, fmt.Errorf("persist payment hold: %w", err)
	}

	txn, err := transaction.Initiate(req.TransactionID, sender.AgentID(), receiver.AgentID(), req.Amount, req.Currency, transaction.TypeEscrow, "", pc.clock)
	if err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, err
	}
	if err := txn.Validate(nil); err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, err
	}
	if err := txn.HoldInEscrow(req.Amount); err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, err
	}
	if err := pc.transactions.Save(ctx, txn); err != nil {
		pc.cancelHold(ctx, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, fmt.Errorf("persist transaction: %w", err)
	}

	esc, err := escrow.Create(txn.EscrowID(), req.TransactionID, sender.AgentID(), receiver.AgentID(), req.Amount, req.Currency, req.Conditions, req.ExpiresAt, pc.clock)
	if err != nil {
		pc.compensate(ctx, txn, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, err
	}
	if err := esc.Deposit(req.Amount, sender.AgentID()); err != nil {
		pc.compensate(ctx, txn, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, err
	}
	if err := pc.escrows.Save(ctx, esc); err != nil {
		pc.compensate(ctx, txn, req.FromWalletID, req.TransactionID, err.Error())
		return nil, nil, fmt.Errorf("persist escrow: %w", err)
	}

	return txn, esc, nil
}

// SettleEscrowRequest identifies an escrow payment to release and settle.
type SettleEscrowRequest struct {
	TransactionID string
	FromWalletID  string
	ToWalletID    string
	ReleasedBy    string
	Reason        string
	ComplianceID  string
	ReputationID  string
}

// SettleEscrow releases a funded (or resolved) escrow and settles the
// payment: the held funds leave the sender wallet, the receiver wallet is
// credited, and the transaction completes.
func (pc *PaymentCoordinator) SettleEscrow(ctx context.Context, req SettleEscrowRequest) error {
	txn, err := pc.transactions.Load(ctx, req.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	esc, err := pc.escrows.Load(ctx, txn.EscrowID())
	if err != nil {
		return fmt.Errorf("load escrow: %w", err)
	}

	if err := esc.Release(req.ReleasedBy, req.Reason); err != nil {
		return err
	}
	if err := pc.escrows.Save(ctx, esc); err != nil {
		return fmt.Errorf("persist escrow release: %w", err)
	}

	if err := txn.ReleaseFromEscrow(req.ReleasedBy, req.Reason); err != nil {
		return err
	}
	if err := txn.Complete("settled", nil); err != nil {
		return err
	}
	if err := pc.transactions.Save(ctx, txn); err != nil {
		return fmt.Errorf("persist transaction completion: %w", err)
	}

	sender, err := pc.wallets.Load(ctx, req.FromWalletID)
	if err != nil {
		return fmt.Errorf("load sender wallet: %w", err)
	}
	receiver, err := pc.wallets.Load(ctx, req.ToWalletID)
	if err != nil {
		return fmt.Errorf("load receiver wallet: %w", err)
	}
	if err := sender.CompletePayment(req.TransactionID, esc.Amount(), receiver.AgentID()); err != nil {
		return err
	}
	if err := pc.wallets.Save(ctx, sender); err != nil {
		return fmt.Errorf("persist payment completion: %w", err)
	}
	if err := receiver.ReceivePayment(req.TransactionID, sender.AgentID(), esc.Amount()); err != nil {
		return err
	}
	if err := pc.wallets.Save(ctx, receiver); err != nil {
		return fmt.Errorf("persist payment receipt: %w", err)
	}

	pc.recordOutcome(ctx, req.ComplianceID, req.ReputationID, req.TransactionID, esc.Amount(), reputation.OutcomeSuccess)
	return nil
}

// RefundEscrowRequest identifies an escrow payment to cancel and refund.
type RefundEscrowRequest struct {
	TransactionID string
	FromWalletID  string
	CancelledBy   string
	Reason        string
	ReputationID  string
}

// RefundEscrow cancels an escrow payment: the escrow is cancelled, the
// transaction failed, and the sender wallet's hold is released. Cancelling
// a funded escrow is only allowed for the sender.
func (pc *PaymentCoordinator) RefundEscrow(ctx context.Context, req RefundEscrowRequest) error {
	txn, err := pc.transactions.Load(ctx, req.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	esc, err := pc.escrows.Load(ctx, txn.EscrowID())
	if err != nil {
		return fmt.Errorf("load escrow: %w", err)
	}

	if err := esc.Cancel(req.CancelledBy, req.Reason); err != nil {
		return err
	}
	if err := pc.escrows.Save(ctx, esc); err != nil {
		return fmt.Errorf("persist escrow cancellation: %w", err)
	}

	if err := txn.ReleaseFromEscrow(req.CancelledBy, req.Reason); err != nil {
		return err
	}
	if err := txn.Fail(req.Reason); err != nil {
		return err
	}
	if err := pc.transactions.Save(ctx, txn); err != nil {
		return fmt.Errorf("persist transaction failure: %w", err)
	}

	sender, err := pc.wallets.Load(ctx, req.FromWalletID)
	if err != nil {
		return fmt.Errorf("load sender wallet: %w", err)
	}
	if err := sender.CancelPayment(req.TransactionID, req.Reason); err != nil {
		return err
	}
	if err := pc.wallets.Save(ctx, sender); err != nil {
		return fmt.Errorf("persist hold release: %w", err)
	}

	pc.recordOutcome(ctx, "", req.ReputationID, req.TransactionID, esc.Amount(), reputation.OutcomeCancelled)
	return nil
}

// checkLimits gates a payment on the sender's compliance aggregate. A
// limit breach is recorded on the aggregate before the payment is
// rejected.
func (pc *PaymentCoordinator) checkLimits(ctx context.Context, complianceID string, amount decimal.Decimal) error {
	if complianceID == "" {
		return nil
	}
	comp, err := pc.compliances.Load(ctx, complianceID)
	if err != nil {
		return fmt.Errorf("load compliance: %w", err)
	}
	if !comp.IsKycVerified() {
		return fmt.Errorf("agent %s is not KYC verified", comp.AgentID())
	}
	for _, period := range []compliance.Period{compliance.PeriodDaily, compliance.PeriodWeekly, compliance.PeriodMonthly} {
		ok, err := comp.CheckTransactionLimit(amount, period)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := comp.RecordLimitExceeded(amount, period); err == nil {
			if saveErr := pc.compliances.Save(ctx, comp); saveErr != nil {
				pc.logger.WarnContext(ctx, "failed to record limit breach",
					slog.String("compliance_id", complianceID),
					slog.Any("error", saveErr))
			}
		}
		return fmt.Errorf("%s transaction limit exceeded for agent %s", period, comp.AgentID())
	}
	return nil
}

// recordOutcome feeds a settled payment into the sender's compliance
// totals and reputation. Bookkeeping failures do not unwind the payment;
// they are logged and left for reconciliation.
func (pc *PaymentCoordinator) recordOutcome(ctx context.Context, complianceID, reputationID, transactionID string, amount decimal.Decimal, outcome reputation.Outcome) {
	if complianceID != "" {
		comp, err := pc.compliances.Load(ctx, complianceID)
		if err == nil {
			if err = comp.RecordTransaction(amount); err == nil {
				err = pc.compliances.Save(ctx, comp)
			}
		}
		if err != nil {
			pc.logger.WarnContext(ctx, "failed to record transaction totals",
				slog.String("compliance_id", complianceID),
				slog.String("transaction_id", transactionID),
				slog.Any("error", err))
		}
	}
	if reputationID != "" {
		value, _ := amount.Float64()
		rep, err := pc.reputations.Load(ctx, reputationID)
		if err == nil {
			if err = rep.RecordTransaction(transactionID, outcome, value); err == nil {
				err = pc.reputations.Save(ctx, rep)
			}
		}
		if err != nil {
			pc.logger.WarnContext(ctx, "failed to record reputation outcome",
				slog.String("reputation_id", reputationID),
				slog.String("transaction_id", transactionID),
				slog.Any("error", err))
		}
	}
}

// cancelHold releases a payment hold after a later workflow step failed.
func (pc *PaymentCoordinator) cancelHold(ctx context.Context, walletID, transactionID, reason string) {
	sender, err := pc.wallets.Load(ctx, walletID)
	if err == nil {
		if err = sender.CancelPayment(transactionID, reason); err == nil {
			err = pc.wallets.Save(ctx, sender)
		}
	}
	if err != nil {
		pc.logger.ErrorContext(ctx, "failed to compensate payment hold",
			slog.String("wallet_id", walletID),
			slog.String("transaction_id", transactionID),
			slog.Any("error", err))
	}
}

// compensate fails the transaction and releases the sender's hold.
func (pc *PaymentCoordinator) compensate(ctx context.Context, txn *transaction.Transaction, walletID, transactionID, reason string) {
	if err := txn.Fail(reason); err == nil {
		if err := pc.transactions.Save(ctx, txn); err != nil {
			pc.logger.ErrorContext(ctx, "failed to persist transaction failure",
				slog.String("transaction_id", transactionID),
				slog.Any("error", err))
		}
	}
	pc.cancelHold(ctx, walletID, transactionID, reason)
}
