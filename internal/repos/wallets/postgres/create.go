package wallets

import (
	"database/sql"
	"fmt"
)

func (r *walletsRepo) Create(tx *sql.Tx, accountID uint64) error {
	_, err := tx.Exec(`
		INSERT INTO wallets (account_id, balance)
		VALUES ($1, 0)
	`, accountID)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}

	return nil
}
