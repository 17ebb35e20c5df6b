package wallets

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
)

// Wallets stores one balance row per account. The balance is mutated only
// inside a DB transaction that has locked the row via LockAndGetBalance.
type Wallets interface {
	Create(tx *sql.Tx, accountID uint64) error
	GetBalance(ctx context.Context, accountID uint64) (decimal.Decimal, error)
	GetBalanceInTx(tx *sql.Tx, accountID uint64) (decimal.Decimal, error)
	LockAndGetBalance(tx *sql.Tx, accountID uint64) (decimal.Decimal, error)
	Credit(tx *sql.Tx, accountID uint64, amount decimal.Decimal) error
	Debit(tx *sql.Tx, accountID uint64, amount decimal.Decimal) error
}
