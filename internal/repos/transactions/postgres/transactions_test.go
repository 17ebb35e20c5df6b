package transactions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/infra/pgtestutil"
	"github.com/mukulima/ledger/internal/repos/transactions"
)

func seedAccount(t *testing.T, db *sql.DB, accountID uint64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, accountID)
	if err != nil {
		t.Fatalf("seed account(%d): %v", accountID, err)
	}
}

func record(accountID uint64, amount, resulting, key string, at time.Time) transactions.Record {
	return transactions.Record{
		ID:               uuid.New(),
		AccountID:        accountID,
		Amount:           decimal.RequireFromString(amount),
		Kind:             transactions.KindTopUp,
		IdempotencyKey:   key,
		ResultingBalance: decimal.RequireFromString(resulting),
		CreatedAt:        at,
	}
}

func insertCommitted(t *testing.T, db *sql.DB, repo *transactionsRepo, rec transactions.Record) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.Insert(tx, rec)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestTransactions_Insert(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name    string
		seed    func(t *testing.T, db *sql.DB, repo *transactionsRepo)
		rec     transactions.Record
		wantErr error
	}{
		{
			name: "ok_insert",
			seed: func(t *testing.T, db *sql.DB, _ *transactionsRepo) {
				seedAccount(t, db, 1)
			},
			rec:     record(1, "10.00", "10.00", "key-1", now),
			wantErr: nil,
		},
		{
			name: "duplicate_idempotency_key",
			seed: func(t *testing.T, db *sql.DB, repo *transactionsRepo) {
				seedAccount(t, db, 2)
				insertCommitted(t, db, repo, record(2, "5.00", "5.00", "key-dup", now))
			},
			rec:     record(2, "5.00", "10.00", "key-dup", now),
			wantErr: transactions.ErrDuplicateKey,
		},
		{
			name: "same_key_different_account_ok",
			seed: func(t *testing.T, db *sql.DB, repo *transactionsRepo) {
				seedAccount(t, db, 3)
				seedAccount(t, db, 4)
				insertCommitted(t, db, repo, record(3, "5.00", "5.00", "key-shared", now))
			},
			rec:     record(4, "5.00", "5.00", "key-shared", now),
			wantErr: nil,
		},
		{
			name:    "account_not_exist_fk_violation",
			rec:     record(999, "1.00", "1.00", "key-fk", now),
			wantErr: &pgconn.PgError{}, // expect a wrapped pg error
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			repo := New(db)

			if tt.seed != nil {
				tt.seed(t, db, repo)
			}

			tx, err := db.BeginTx(context.Background(), nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			err = repo.Insert(tx, tt.rec)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var pgErr *pgconn.PgError
			if errors.As(tt.wantErr, &pgErr) {
				if !errors.As(err, &pgErr) {
					t.Fatalf("expected pg error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("unexpected error: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactions_Insert_UnknownKindRejected(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 11)

	rec := record(11, "1.00", "1.00", "key-kind", time.Now().UTC())
	rec.Kind = transactions.Kind("barter")

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.Insert(tx, rec)

	// The kind column carries a CHECK constraint backing the service-level
	// validation.
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23514" {
		t.Fatalf("expected check violation, got: %v", err)
	}
}

func TestTransactions_FindByKey(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 7)

	want := record(7, "12.3400", "12.3400", "key-find", time.Now().UTC().Truncate(time.Microsecond))
	insertCommitted(t, db, repo, want)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := repo.FindByKey(tx, 7, "key-find")
	if err != nil {
		t.Fatalf("find by key: %v", err)
	}

	if got.ID != want.ID {
		t.Fatalf("id mismatch: want %s, got %s", want.ID, got.ID)
	}
	if !got.Amount.Equal(want.Amount) {
		t.Fatalf("amount mismatch: want %s, got %s", want.Amount, got.Amount)
	}
	if got.Kind != want.Kind {
		t.Fatalf("kind mismatch: want %s, got %s", want.Kind, got.Kind)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("createdAt mismatch: want %s, got %s", want.CreatedAt, got.CreatedAt)
	}

	// Unknown key
	_, err = repo.FindByKey(tx, 7, "no-such-key")
	if !errors.Is(err, transactions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	// Same key, other account
	_, err = repo.FindByKey(tx, 8, "key-find")
	if !errors.Is(err, transactions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other account, got: %v", err)
	}
}

func TestTransactions_ListByAccount_OrderSinceLimit(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 10)
	seedAccount(t, db, 11)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recs := []transactions.Record{
		record(10, "1.00", "1.00", "k1", base),
		record(10, "2.00", "3.00", "k2", base.Add(1*time.Second)),
		record(10, "-1.50", "1.50", "k3", base.Add(2*time.Second)),
		record(11, "9.00", "9.00", "k-other", base), // other account, must not appear
	}
	for _, rec := range recs {
		insertCommitted(t, db, repo, rec)
	}

	ctx := context.Background()

	// Full list: apply order
	got, err := repo.ListByAccount(ctx, 10, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 records, got %d", len(got))
	}
	for i, key := range []string{"k1", "k2", "k3"} {
		if got[i].IdempotencyKey != key {
			t.Fatalf("order mismatch at %d: want %s, got %s", i, key, got[i].IdempotencyKey)
		}
	}

	// Since filters inclusively
	got, err = repo.ListByAccount(ctx, 10, base.Add(1*time.Second), 0)
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(got) != 2 || got[0].IdempotencyKey != "k2" {
		t.Fatalf("since filter wrong: got %d records", len(got))
	}

	// Limit caps the page
	got, err = repo.ListByAccount(ctx, 10, time.Time{}, 2)
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(got) != 2 || got[1].IdempotencyKey != "k2" {
		t.Fatalf("limit wrong: got %d records", len(got))
	}
}

func TestTransactions_ListByAccount_TieBreakByID(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 20)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := record(20, "1.00", "1.00", "tie-a", at)
	b := record(20, "1.00", "2.00", "tie-b", at)
	insertCommitted(t, db, repo, a)
	insertCommitted(t, db, repo, b)

	got, err := repo.ListByAccount(context.Background(), 20, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}

	// Equal timestamps order by id ascending, stable across calls
	if got[0].ID.String() > got[1].ID.String() {
		t.Fatalf("tie-break not by id: %s before %s", got[0].ID, got[1].ID)
	}
}
