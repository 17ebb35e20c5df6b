package transactions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mukulima/ledger/internal/repos/transactions"
)

func (r *transactionsRepo) Insert(tx *sql.Tx, rec transactions.Record) error {
	_, err := tx.Exec(`
		INSERT INTO transactions
			(id, account_id, amount, kind, idempotency_key, resulting_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.AccountID, rec.Amount, string(rec.Kind),
		rec.IdempotencyKey, rec.ResultingBalance, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return transactions.ErrDuplicateKey
		}

		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}
