// Package events defines the transaction-applied event emitted after a
// ledger mutation commits, for downstream consumers (settlement, audit).
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionApplied is published once per newly applied transaction.
// Idempotent replays do not re-publish.
type TransactionApplied struct {
	TransactionID    string          `json:"transaction_id"`
	AccountID        uint64          `json:"account_id"`
	Amount           decimal.Decimal `json:"amount"`
	Kind             string          `json:"kind"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	AppliedAt        time.Time       `json:"applied_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt TransactionApplied) error
}
