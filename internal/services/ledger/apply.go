package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/events"
	"github.com/mukulima/ledger/internal/infra/pgutils"
	"github.com/mukulima/ledger/internal/repos/transactions"
	"github.com/mukulima/ledger/internal/repos/wallets"
)

// maxApplyAttempts bounds internal retries on transient conflicts
// (serialization failures, deadlocks) before surfacing
// ErrStorageUnavailable to the caller.
const maxApplyAttempts = 3

// maxAbsAmount is the largest representable amount, matching the
// NUMERIC(20,4) columns.
var maxAbsAmount = decimal.New(1, 16)

// Apply validates and applies one signed balance change, in a single DB
// transaction:
//
//  1. Ensure the account exists.
//  2. Lock the wallet row (the per-account serialization point).
//  3. Replay check: a prior record under the same idempotency key is
//     returned unchanged, with no second balance change.
//  4. Check funds, move the balance, append the log record with its
//     resulting-balance snapshot.
//
// The log order for an account is exactly the order callers acquire the
// row lock. A context cancellation is honored up to BeginTx; after that
// the database transaction either commits fully or not at all.
func (s *Service) Apply(ctx context.Context, accountID uint64, amount decimal.Decimal, kind transactions.Kind, idempotencyKey string) (transactions.Record, error) {
	if err := validateAmount(amount); err != nil {
		return transactions.Record{}, err
	}
	if !kind.Valid() {
		return transactions.Record{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if idempotencyKey == "" {
		return transactions.Record{}, ErrMissingKey
	}

	var (
		rec      transactions.Record
		replayed bool
		err      error
	)

	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		rec, replayed, err = s.applyOnce(ctx, accountID, amount, kind, idempotencyKey)
		if err == nil {
			break
		}

		if pgutils.IsRetryable(err) || errors.Is(err, transactions.ErrDuplicateKey) {
			slog.Warn("retrying transaction apply",
				"accountId", accountID, "attempt", attempt, "error", err)

			continue
		}

		return transactions.Record{}, fmt.Errorf("apply transaction: %w", err)
	}

	if err != nil {
		return transactions.Record{}, fmt.Errorf("%w: retries exhausted: %v", ErrStorageUnavailable, err)
	}

	if !replayed {
		// The row is committed; a client hanging up now must not cancel
		// the event publish.
		s.publish(context.WithoutCancel(ctx), rec)
	}

	return rec, nil
}

func (s *Service) applyOnce(ctx context.Context, accountID uint64, amount decimal.Decimal, kind transactions.Kind, idempotencyKey string) (transactions.Record, bool, error) {
	var (
		rec      transactions.Record
		replayed bool
	)

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.accounts.Exists(tx, accountID)
		if err != nil {
			return fmt.Errorf("check account exists: %w", err)
		}

		balance, err := s.wallets.LockAndGetBalance(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		// Replay check runs under the row lock: a concurrent duplicate
		// submission has either fully committed (visible here) or is
		// queued behind us.
		prior, err := s.txns.FindByKey(tx, accountID, idempotencyKey)
		if err == nil {
			rec = prior
			replayed = true

			return nil
		}
		if !errors.Is(err, transactions.ErrNotFound) {
			return fmt.Errorf("replay check: %w", err)
		}

		resulting := balance.Add(amount)
		if resulting.IsNegative() {
			return fmt.Errorf("pre-check debit: %w", wallets.ErrInsufficientFunds)
		}

		if amount.IsPositive() {
			err = s.wallets.Credit(tx, accountID, amount)
		} else {
			err = s.wallets.Debit(tx, accountID, amount.Neg())
		}
		if err != nil {
			return fmt.Errorf("move balance: %w", err)
		}

		rec = transactions.Record{
			ID:               uuid.New(),
			AccountID:        accountID,
			Amount:           amount,
			Kind:             kind,
			IdempotencyKey:   idempotencyKey,
			ResultingBalance: resulting,
			CreatedAt:        time.Now().UTC(),
		}

		err = s.txns.Insert(tx, rec)
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return transactions.Record{}, false, err
	}

	if replayed {
		slog.Info("idempotent replay",
			"accountId", accountID, "idempotencyKey", idempotencyKey,
			"transactionId", rec.ID)
	}

	return rec, replayed, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: amount must be nonzero", ErrInvalidAmount)
	}
	// Value-level check: "1.50000" is exactly 1.5 and passes.
	if !amount.Equal(amount.Truncate(4)) {
		return fmt.Errorf("%w: at most 4 decimal places", ErrInvalidAmount)
	}
	if amount.Abs().Cmp(maxAbsAmount) >= 0 {
		return fmt.Errorf("%w: amount out of range", ErrInvalidAmount)
	}

	return nil
}

func (s *Service) publish(ctx context.Context, rec transactions.Record) {
	if s.events == nil {
		return
	}

	evt := events.TransactionApplied{
		TransactionID:    rec.ID.String(),
		AccountID:        rec.AccountID,
		Amount:           rec.Amount,
		Kind:             string(rec.Kind),
		ResultingBalance: rec.ResultingBalance,
		AppliedAt:        rec.CreatedAt,
	}

	err := s.events.Publish(ctx, evt)
	if err != nil {
		// The ledger row is committed; event delivery is best effort.
		slog.Error("publish transaction event failed",
			"transactionId", rec.ID, "error", err)
	}
}
