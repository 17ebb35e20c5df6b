package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mukulima/ledger/internal/repos/transactions"
)

const listQuery = `
	SELECT id, account_id, amount, kind, idempotency_key, resulting_balance, created_at
	FROM transactions
	WHERE account_id = $1
	  AND created_at >= $2
	ORDER BY created_at ASC, id ASC
`

// listArgs appends the LIMIT clause when limit > 0; limit <= 0 means no
// limit. Callers page by passing the last seen timestamp back as since.
func listArgs(accountID uint64, since time.Time, limit int) (string, []any) {
	query := listQuery
	args := []any{accountID, since}

	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	return query, args
}

// ListByAccount returns the account's log entries at or after since,
// ordered by (created_at, id) ascending.
func (r *transactionsRepo) ListByAccount(ctx context.Context, accountID uint64, since time.Time, limit int) ([]transactions.Record, error) {
	query, args := listArgs(accountID, since, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return scanRecords(rows)
}

// ListByAccountInTx is ListByAccount inside an existing transaction, for
// reads that must share a snapshot with other statements.
func (r *transactionsRepo) ListByAccountInTx(tx *sql.Tx, accountID uint64, since time.Time, limit int) ([]transactions.Record, error) {
	query, args := listArgs(accountID, since, limit)

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]transactions.Record, error) {
	defer rows.Close()

	var recs []transactions.Record

	for rows.Next() {
		var rec transactions.Record
		var kind string

		err := rows.Scan(
			&rec.ID, &rec.AccountID, &rec.Amount, &kind,
			&rec.IdempotencyKey, &rec.ResultingBalance, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		rec.Kind = transactions.Kind(kind)
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return recs, nil
}
