// Package ledger is the transaction processor and read façade for farmer
// wallets. All balance mutations go through Apply, which serializes per
// account on the wallet row lock; reads go through GetBalance,
// ListTransactions and AuditBalance.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/events"
	"github.com/mukulima/ledger/internal/infra/pgutils"
	"github.com/mukulima/ledger/internal/repos/accounts"
	pgaccounts "github.com/mukulima/ledger/internal/repos/accounts/postgres"
	"github.com/mukulima/ledger/internal/repos/transactions"
	pgtransactions "github.com/mukulima/ledger/internal/repos/transactions/postgres"
	"github.com/mukulima/ledger/internal/repos/wallets"
	pgwallets "github.com/mukulima/ledger/internal/repos/wallets/postgres"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrMissingKey         = errors.New("idempotency key required")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	wallets  wallets.Wallets
	txns     transactions.Transactions
	events   events.Publisher // nil disables publishing
}

func New(db *sql.DB, pub events.Publisher) *Service {
	return &Service{
		db:       db,
		accounts: pgaccounts.New(db),
		wallets:  pgwallets.New(db),
		txns:     pgtransactions.New(db),
		events:   pub,
	}
}

// Register creates an account and its zero-balance wallet in one DB
// transaction, so no account is ever observable without a wallet.
func (s *Service) Register(ctx context.Context) (uint64, error) {
	var accountID uint64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := s.accounts.Create(tx)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		err = s.wallets.Create(tx, id)
		if err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}

		accountID = id

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	return accountID, nil
}

// GetBalance returns the current wallet balance (no locks; read path).
func (s *Service) GetBalance(ctx context.Context, accountID uint64) (decimal.Decimal, error) {
	balance, err := s.wallets.GetBalance(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// ListTransactions returns the account's log entries at or after since in
// apply order. Callers page by passing the last seen timestamp back.
func (s *Service) ListTransactions(ctx context.Context, accountID uint64, since time.Time, limit int) ([]transactions.Record, error) {
	err := s.accounts.Resolve(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	recs, err := s.txns.ListByAccount(ctx, accountID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return recs, nil
}

// AuditBalance replays the full transaction log and returns the stored
// balance next to the recomputed one. Both reads run in one repeatable-read
// transaction, so they see the same snapshot even while applies are in
// flight; they are equal whenever the conservation invariant holds.
func (s *Service) AuditBalance(ctx context.Context, accountID uint64) (stored, recomputed decimal.Decimal, err error) {
	err = pgutils.WithReadTx(ctx, s.db, func(tx *sql.Tx) error {
		stored, err = s.wallets.GetBalanceInTx(tx, accountID)
		if err != nil {
			return fmt.Errorf("get stored balance: %w", err)
		}

		recs, err := s.txns.ListByAccountInTx(tx, accountID, time.Time{}, 0)
		if err != nil {
			return fmt.Errorf("list for audit: %w", err)
		}

		recomputed = decimal.Zero
		for _, rec := range recs {
			recomputed = recomputed.Add(rec.Amount)
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("audit balance: %w", err)
	}

	return stored, recomputed, nil
}
