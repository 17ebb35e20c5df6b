package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs an http.Handler with all API endpoints registered.
func NewRouter(svc LedgerService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/accounts", h.RegisterAccountHandler)
	r.Get("/account/{accountId}/balance", h.GetBalanceHandler)
	r.Post("/account/{accountId}/transaction", h.ApplyTransactionHandler)
	r.Get("/account/{accountId}/transactions", h.ListTransactionsHandler)
	r.Get("/account/{accountId}/audit", h.AuditBalanceHandler)

	return r
}
