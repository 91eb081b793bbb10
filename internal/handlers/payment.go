package handlers

import (
	"context"
	"net/http"

	"github.com/paystream/ledger/internal/models"
)

type createPaymentRequest struct {
	Customer           models.Address `json:"customer"`
	Merchant           models.Address `json:"merchant"`
	Amount             models.Amount  `json:"amount"`
	Token              models.Address `json:"token"`
	ExpirationDuration uint64         `json:"expiration_duration"`
}

type adminRequest struct {
	Admin models.Address `json:"admin"`
}

type cancelPaymentRequest struct {
	Caller models.Address `json:"caller"`
}

// CreatePayment handles POST /api/v1/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := h.payments.CreatePayment(r.Context(), req.Customer, req.Merchant, req.Amount, req.Token, req.ExpirationDuration)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]uint64{"payment_id": id})
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, payment)
}

// CompletePayment handles POST /api/v1/payments/{id}/complete
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.payments.CompletePayment)
}

// RefundPayment handles POST /api/v1/payments/{id}/refund
func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.payments.RefundPayment)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, admin models.Address, id uint64) error) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := op(r.Context(), req.Admin, id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelPayment handles POST /api/v1/payments/{id}/cancel
func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req cancelPaymentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.payments.CancelPayment(r.Context(), req.Caller, id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExpirePayment handles POST /api/v1/payments/{id}/expire
func (h *Handler) ExpirePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.payments.ExpirePayment(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IsPaymentExpired handles GET /api/v1/payments/{id}/expired
func (h *Handler) IsPaymentExpired(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	expired, err := h.payments.IsPaymentExpired(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"expired": expired})
}

// ListPayments handles GET /api/v1/payments. Exactly one of the customer,
// merchant or status filters selects the index to page through.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := r.URL.Query()

	var (
		payments []models.Payment
		err      error
	)
	switch {
	case q.Get("customer") != "":
		payments, err = h.payments.GetPaymentsByCustomer(r.Context(), models.Address(q.Get("customer")), limit, offset)
	case q.Get("merchant") != "":
		payments, err = h.payments.GetPaymentsByMerchant(r.Context(), models.Address(q.Get("merchant")), limit, offset)
	case q.Get("status") != "":
		status, parseErr := models.ParsePaymentStatus(q.Get("status"))
		if parseErr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: parseErr.Error()})
			return
		}
		payments, err = h.payments.GetPaymentsByStatus(r.Context(), status, limit, offset)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "one of customer, merchant or status is required",
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

// CountPayments handles GET /api/v1/payments/count with the same filters as
// ListPayments.
func (h *Handler) CountPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		count uint64
		err   error
	)
	switch {
	case q.Get("customer") != "":
		count, err = h.payments.GetCustomerPaymentCount(r.Context(), models.Address(q.Get("customer")))
	case q.Get("merchant") != "":
		count, err = h.payments.GetMerchantPaymentCount(r.Context(), models.Address(q.Get("merchant")))
	case q.Get("status") != "":
		status, parseErr := models.ParsePaymentStatus(q.Get("status"))
		if parseErr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: parseErr.Error()})
			return
		}
		count, err = h.payments.GetPaymentCountByStatus(r.Context(), status)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "one of customer, merchant or status is required",
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}
