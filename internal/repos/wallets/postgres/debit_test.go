package wallets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/infra/pgtestutil"
	"github.com/mukulima/ledger/internal/repos/wallets"
)

func TestWallets_Debit_Table(t *testing.T) {
	t.Parallel()

	type tc struct {
		name          string
		seedBalance   string // empty -> no wallet
		accountID     uint64
		amount        string
		wantBalance   string
		wantErr       bool // true -> expect wallets.ErrInsufficientFunds
		checkFinalBal bool
	}

	tests := []tc{
		{
			name:          "sufficient_funds_debit_from_positive",
			seedBalance:   "10.00",
			accountID:     201,
			amount:        "2.50",
			wantBalance:   "7.50",
			checkFinalBal: true,
		},
		{
			name:          "sufficient_funds_exact_to_zero",
			seedBalance:   "3.00",
			accountID:     202,
			amount:        "3.00",
			wantBalance:   "0",
			checkFinalBal: true,
		},
		{
			name:          "insufficient_funds_balance_unchanged",
			seedBalance:   "2.00",
			accountID:     203,
			amount:        "3.00",
			wantBalance:   "2.00",
			wantErr:       true,
			checkFinalBal: true,
		},
		{
			name:      "wallet_missing_treated_as_insufficient",
			accountID: 999_999,
			amount:    "1.00",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			if tt.seedBalance != "" {
				seedWallet(t, db, tt.accountID, tt.seedBalance)
			}

			repo := New(db)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			err = repo.Debit(tx, tt.accountID, decimal.RequireFromString(tt.amount))

			if tt.wantErr {
				if !errors.Is(err, wallets.ErrInsufficientFunds) {
					t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
				}
				// no commit on error
			} else {
				if err != nil {
					t.Fatalf("debit: %v", err)
				}
				err = tx.Commit()
				if err != nil {
					t.Fatalf("commit: %v", err)
				}
			}

			if tt.checkFinalBal {
				got, gerr := repo.GetBalance(ctx, tt.accountID)
				if gerr != nil {
					t.Fatalf("get balance after debit: %v", gerr)
				}

				want := decimal.RequireFromString(tt.wantBalance)
				if !got.Equal(want) {
					t.Fatalf("final balance mismatch: want %s, got %s", want, got)
				}
			}
		})
	}
}

func TestWallets_Debit_ConcurrentGuard(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedWallet(t, db, 1, "10.00")

	full := decimal.RequireFromString("10.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, insufficient := 0, 0

	worker := func(name string) {
		defer wg.Done()

		ctx := context.Background()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Errorf("[%s] begin tx: %v", name, err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		// Lock row first (this will serialize)
		_, err = repo.LockAndGetBalance(tx, 1)
		if err != nil {
			t.Errorf("[%s] lock balance: %v", name, err)
			return
		}

		err = repo.Debit(tx, 1, full)
		if err == nil {
			mu.Lock()
			success++
			mu.Unlock()
			if err := tx.Commit(); err != nil {
				t.Errorf("[%s] commit: %v", name, err)
			}
			return
		}

		if errors.Is(err, wallets.ErrInsufficientFunds) {
			mu.Lock()
			insufficient++
			mu.Unlock()
			return
		}

		t.Errorf("[%s] unexpected error: %v", name, err)
	}

	wg.Add(2)
	go worker("A")
	go worker("B")
	wg.Wait()

	if success != 1 || insufficient != 1 {
		t.Fatalf("want 1 success and 1 insufficient, got success=%d insufficient=%d", success, insufficient)
	}
}
