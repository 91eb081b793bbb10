package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/paystream/ledger/internal/api"
	"github.com/paystream/ledger/internal/config"
	"github.com/paystream/ledger/internal/host"
	"github.com/paystream/ledger/internal/service"
	"github.com/paystream/ledger/internal/storage"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	store storage.Store,
	clock host.Clock,
	auth host.Auth,
	events host.Publisher,
	token host.TokenClient,
	cfg *config.Config,
	logger *slog.Logger,
) http.Handler {
	paymentService := service.NewPaymentService(store, clock, auth, events, logger)
	refundService := service.NewRefundService(store, clock, auth, events, token, logger)

	h := NewHandler(paymentService, refundService, store, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CallerIdentity(cfg.App.CallerHeader))

	r.Get("/health", h.Health)
	api.RegisterDocsRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.CreatePayment)
			r.Get("/", h.ListPayments)
			r.Get("/count", h.CountPayments)
			r.Get("/{id}", h.GetPayment)
			r.Post("/{id}/complete", h.CompletePayment)
			r.Post("/{id}/refund", h.RefundPayment)
			r.Post("/{id}/cancel", h.CancelPayment)
			r.Post("/{id}/expire", h.ExpirePayment)
			r.Get("/{id}/expired", h.IsPaymentExpired)
			r.Get("/{id}/refunded-total", h.GetRefundedTotal)
		})

		r.Route("/refunds", func(r chi.Router) {
			r.Post("/", h.RequestRefund)
			r.Get("/", h.ListRefunds)
			r.Get("/count", h.CountRefunds)
			r.Get("/{id}", h.GetRefund)
			r.Post("/{id}/approve", h.ApproveRefund)
			r.Post("/{id}/reject", h.RejectRefund)
			r.Post("/{id}/process", h.ProcessRefund)
		})
	})

	return r
}
