package wallets

import (
	"database/sql"
	"testing"
)

// seedWallet inserts the owning account row and a wallet with the given
// balance, upserting so tests can re-seed freely.
func seedWallet(t *testing.T, db *sql.DB, accountID uint64, balance string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, accountID)
	if err != nil {
		t.Fatalf("seed account(%d): %v", accountID, err)
	}

	_, err = db.Exec(`
		INSERT INTO wallets (account_id, balance) VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE SET balance = EXCLUDED.balance
	`, accountID, balance)
	if err != nil {
		t.Fatalf("seed wallet(%d): %v", accountID, err)
	}
}
