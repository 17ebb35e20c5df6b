package wallets

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/repos/wallets"
)

// Debit subtracts amount (a positive decimal) from the wallet, guarded in
// SQL so the balance can never go negative even if the caller's pre-check
// raced.
func (r *walletsRepo) Debit(tx *sql.Tx, accountID uint64, amount decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE wallets
		SET balance = balance - $2
		WHERE account_id = $1
		  AND balance >= $2
	`, accountID, amount)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return wallets.ErrInsufficientFunds
	}

	return nil
}
