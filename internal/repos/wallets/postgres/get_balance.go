package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/repos/wallets"
)

const getBalanceQuery = `
	SELECT balance
	FROM wallets
	WHERE account_id = $1
`

func (r *walletsRepo) GetBalance(ctx context.Context, accountID uint64) (decimal.Decimal, error) {
	return scanBalance(r.db.QueryRowContext(ctx, getBalanceQuery, accountID))
}

// GetBalanceInTx reads the balance through tx without locking the row, so
// it shares tx's snapshot with other reads in the same transaction.
func (r *walletsRepo) GetBalanceInTx(tx *sql.Tx, accountID uint64) (decimal.Decimal, error) {
	return scanBalance(tx.QueryRow(getBalanceQuery, accountID))
}

func scanBalance(row *sql.Row) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := row.Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, wallets.ErrWalletNotFound
		}

		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
