package transactions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateKey = errors.New("duplicate idempotency key")
	ErrNotFound     = errors.New("transaction not found")
)

// Kind classifies a balance-changing operation.
type Kind string

const (
	KindWalletPayment   Kind = "wallet_payment"
	KindTopUp           Kind = "top_up"
	KindTradeSettlement Kind = "trade_settlement"
	KindRefund          Kind = "refund"
)

func (k Kind) Valid() bool {
	switch k {
	case KindWalletPayment, KindTopUp, KindTradeSettlement, KindRefund:
		return true
	default:
		return false
	}
}

// Record is one immutable entry of the append-only transaction log.
// Amount is signed: positive credits, negative debits. ResultingBalance
// snapshots the wallet balance right after the entry was applied.
type Record struct {
	ID               uuid.UUID
	AccountID        uint64
	Amount           decimal.Decimal
	Kind             Kind
	IdempotencyKey   string
	ResultingBalance decimal.Decimal
	CreatedAt        time.Time
}

// Transactions is the append-only transaction log, ordered per account by
// (created_at, id). Records are never updated or deleted.
type Transactions interface {
	Insert(tx *sql.Tx, rec Record) error
	FindByKey(tx *sql.Tx, accountID uint64, idempotencyKey string) (Record, error)
	ListByAccount(ctx context.Context, accountID uint64, since time.Time, limit int) ([]Record, error)
	ListByAccountInTx(tx *sql.Tx, accountID uint64, since time.Time, limit int) ([]Record, error)
}
