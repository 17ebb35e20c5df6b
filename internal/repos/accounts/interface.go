package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var ErrAccountNotFound = errors.New("account not found")

// Accounts is the account directory: one row per registered identity,
// created once and never deleted.
type Accounts interface {
	Create(tx *sql.Tx) (uint64, error)
	Exists(tx *sql.Tx, accountID uint64) error
	Resolve(ctx context.Context, accountID uint64) error
}
