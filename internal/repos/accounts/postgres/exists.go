package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mukulima/ledger/internal/repos/accounts"
)

func (r *accountsRepo) Exists(tx *sql.Tx, accountID uint64) error {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return accounts.ErrAccountNotFound
	}

	return nil
}

// Resolve is the read-path variant of Exists for callers outside a DB
// transaction.
func (r *accountsRepo) Resolve(ctx context.Context, accountID uint64) error {
	var exists bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}

	if !exists {
		return accounts.ErrAccountNotFound
	}

	return nil
}
