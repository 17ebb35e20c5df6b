package wallets

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/repos/wallets"
)

func (r *walletsRepo) Credit(tx *sql.Tx, accountID uint64, amount decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE wallets
		SET balance = balance + $2
		WHERE account_id = $1
	`, accountID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return wallets.ErrWalletNotFound
	}

	return nil
}
