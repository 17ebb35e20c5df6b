package wallets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/repos/wallets"
)

// LockAndGetBalance takes the row lock that serializes all mutations for
// one account. Concurrent callers queue here in admission order; callers
// touching other accounts are unaffected.
func (r *walletsRepo) LockAndGetBalance(tx *sql.Tx, accountID uint64) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := tx.QueryRow(`
		SELECT balance
		FROM wallets
		WHERE account_id = $1
		FOR UPDATE
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, wallets.ErrWalletNotFound
		}

		return decimal.Zero, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
