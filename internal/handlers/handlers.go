// Package handlers implements the HTTP surface of the payment ledger.
package handlers

import (
	"log/slog"

	"github.com/paystream/ledger/internal/service"
	"github.com/paystream/ledger/internal/storage"
)

// Handler serves the payment and refund endpoints.
type Handler struct {
	payments service.PaymentLedger
	refunds  service.RefundLedger
	store    storage.Store
	logger   *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	payments service.PaymentLedger,
	refunds service.RefundLedger,
	store storage.Store,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		payments: payments,
		refunds:  refunds,
		store:    store,
		logger:   logger,
	}
}
