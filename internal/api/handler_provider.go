package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mukulima/ledger/internal/repos/accounts"
	"github.com/mukulima/ledger/internal/repos/transactions"
	"github.com/mukulima/ledger/internal/repos/wallets"
	"github.com/mukulima/ledger/internal/services/ledger"
)

// LedgerService is the slice of the ledger service the HTTP layer uses.
type LedgerService interface {
	Register(ctx context.Context) (uint64, error)
	Apply(ctx context.Context, accountID uint64, amount decimal.Decimal, kind transactions.Kind, idempotencyKey string) (transactions.Record, error)
	GetBalance(ctx context.Context, accountID uint64) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, accountID uint64, since time.Time, limit int) ([]transactions.Record, error)
	AuditBalance(ctx context.Context, accountID uint64) (stored, recomputed decimal.Decimal, err error)
}

// HandlerProvider wraps a LedgerService and exposes HTTP handlers.
type HandlerProvider struct {
	svc LedgerService
}

// NewHandler returns a new handler provider.
func NewHandler(svc LedgerService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps domain errors to stable status codes. Internal
// detail never crosses the boundary.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound),
		errors.Is(err, wallets.ErrWalletNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, wallets.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidKind),
		errors.Is(err, ledger.ErrMissingKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
	default:
		slog.Error("unhandled ledger error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseAccountIDFromPath reads `{accountId}` from chi routes like:
//
//	GET  /account/{accountId}/balance
//	POST /account/{accountId}/transaction
func parseAccountIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "accountId")
	if idStr == "" {
		return 0, fmt.Errorf("missing accountId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid accountId: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid accountId: must be positive")
	}

	return id, nil
}

func parseKind(s string) (transactions.Kind, error) {
	k := transactions.Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("invalid kind")
	}

	return k, nil
}

type txRequest struct {
	Amount         string `json:"amount"`
	Kind           string `json:"kind"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type txResponse struct {
	TransactionID    string `json:"transactionId"`
	AccountID        uint64 `json:"accountId"`
	Amount           string `json:"amount"`
	Kind             string `json:"kind"`
	ResultingBalance string `json:"resultingBalance"`
	CreatedAt        string `json:"createdAt"`
}

func toTxResponse(rec transactions.Record) txResponse {
	return txResponse{
		TransactionID:    rec.ID.String(),
		AccountID:        rec.AccountID,
		Amount:           rec.Amount.String(),
		Kind:             string(rec.Kind),
		ResultingBalance: rec.ResultingBalance.String(),
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// --- Handlers ---

// RegisterAccountHandler handles POST /accounts
func (h *HandlerProvider) RegisterAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.svc.Register(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"accountId": accountID})
}

// GetBalanceHandler handles GET /account/{accountId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	bal, err := h.svc.GetBalance(r.Context(), accountID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":   bal.String(),
	})
}

// ApplyTransactionHandler handles POST /account/{accountId}/transaction.
// A retried request with a known idempotency key returns the original
// transaction with 200, not an error.
func (h *HandlerProvider) ApplyTransactionHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	// Limit body size; disallow unknown fields
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	var req txRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err = dec.Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	if req.IdempotencyKey == "" {
		writeError(w, http.StatusBadRequest, "idempotencyKey required")
		return
	}

	rec, err := h.svc.Apply(r.Context(), accountID, amount, kind, req.IdempotencyKey)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTxResponse(rec))
}

// ListTransactionsHandler handles GET /account/{accountId}/transactions
// with optional ?since=RFC3339 and ?limit=N query parameters.
func (h *HandlerProvider) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since, want RFC3339")
			return
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	recs, err := h.svc.ListTransactions(r.Context(), accountID, since, limit)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	out := make([]txResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTxResponse(rec))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId":    accountID,
		"transactions": out,
	})
}

// AuditBalanceHandler handles GET /account/{accountId}/audit. It returns
// the stored balance next to the balance recomputed from the log.
func (h *HandlerProvider) AuditBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	stored, recomputed, err := h.svc.AuditBalance(r.Context(), accountID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId":         accountID,
		"storedBalance":     stored.String(),
		"recomputedBalance": recomputed.String(),
		"consistent":        stored.Equal(recomputed),
	})
}
