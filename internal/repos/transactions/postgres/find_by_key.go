package transactions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mukulima/ledger/internal/repos/transactions"
)

// FindByKey returns the record previously applied under the given
// idempotency key, if any. Called with the wallet row already locked so a
// concurrent duplicate submission is either fully visible or not yet begun.
func (r *transactionsRepo) FindByKey(tx *sql.Tx, accountID uint64, idempotencyKey string) (transactions.Record, error) {
	var rec transactions.Record
	var kind string

	err := tx.QueryRow(`
		SELECT id, account_id, amount, kind, idempotency_key, resulting_balance, created_at
		FROM transactions
		WHERE account_id = $1
		  AND idempotency_key = $2
	`, accountID, idempotencyKey).Scan(
		&rec.ID, &rec.AccountID, &rec.Amount, &kind,
		&rec.IdempotencyKey, &rec.ResultingBalance, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transactions.Record{}, transactions.ErrNotFound
		}

		return transactions.Record{}, fmt.Errorf("find by key: %w", err)
	}

	rec.Kind = transactions.Kind(kind)

	return rec, nil
}
