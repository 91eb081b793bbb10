package handlers

import (
	"net/http"
	"strconv"

	"github.com/paystream/ledger/internal/models"
)

type requestRefundRequest struct {
	Merchant              models.Address `json:"merchant"`
	PaymentID             uint64         `json:"payment_id"`
	Customer              models.Address `json:"customer"`
	Amount                models.Amount  `json:"amount"`
	OriginalPaymentAmount models.Amount  `json:"original_payment_amount"`
	Token                 models.Address `json:"token"`
	Reason                string         `json:"reason"`
}

type rejectRefundRequest struct {
	Admin           models.Address `json:"admin"`
	RejectionReason string         `json:"rejection_reason"`
}

// RequestRefund handles POST /api/v1/refunds
func (h *Handler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	var req requestRefundRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := h.refunds.RequestRefund(r.Context(), req.Merchant, req.PaymentID, req.Customer,
		req.Amount, req.OriginalPaymentAmount, req.Token, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]uint64{"refund_id": id})
}

// GetRefund handles GET /api/v1/refunds/{id}
func (h *Handler) GetRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	refund, err := h.refunds.GetRefund(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, refund)
}

// ApproveRefund handles POST /api/v1/refunds/{id}/approve
func (h *Handler) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.refunds.ApproveRefund(r.Context(), req.Admin, id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RejectRefund handles POST /api/v1/refunds/{id}/reject
func (h *Handler) RejectRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req rejectRefundRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.refunds.RejectRefund(r.Context(), req.Admin, id, req.RejectionReason); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProcessRefund handles POST /api/v1/refunds/{id}/process
func (h *Handler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.refunds.ProcessRefund(r.Context(), req.Admin, id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRefunds handles GET /api/v1/refunds. Exactly one of the status,
// merchant, customer or payment_id filters selects the index to page through.
func (h *Handler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := r.URL.Query()

	var (
		refunds []models.Refund
		err     error
	)
	switch {
	case q.Get("status") != "":
		status, parseErr := models.ParseRefundStatus(q.Get("status"))
		if parseErr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: parseErr.Error()})
			return
		}
		refunds, err = h.refunds.GetRefundsByStatus(r.Context(), status, limit, offset)
	case q.Get("merchant") != "":
		refunds, err = h.refunds.GetRefundsByMerchant(r.Context(), models.Address(q.Get("merchant")), limit, offset)
	case q.Get("customer") != "":
		refunds, err = h.refunds.GetRefundsByCustomer(r.Context(), models.Address(q.Get("customer")), limit, offset)
	case q.Get("payment_id") != "":
		paymentID, parseErr := strconv.ParseUint(q.Get("payment_id"), 10, 64)
		if parseErr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "payment_id must be an unsigned integer"})
			return
		}
		refunds, err = h.refunds.GetRefundsByPayment(r.Context(), paymentID, limit, offset)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "one of status, merchant, customer or payment_id is required",
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"refunds": refunds})
}

// CountRefunds handles GET /api/v1/refunds/count with the same filters as
// ListRefunds.
func (h *Handler) CountRefunds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		count uint64
		err   error
	)
	switch {
	case q.Get("status") != "":
		status, parseErr := models.ParseRefundStatus(q.Get("status"))
		if parseErr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: parseErr.Error()})
			return
		}
		count, err = h.refunds.GetRefundCountByStatus(r.Context(), status)
	case q.Get("merchant") != "":
		count, err = h.refunds.GetMerchantRefundCount(r.Context(), models.Address(q.Get("merchant")))
	case q.Get("customer") != "":
		count, err = h.refunds.GetCustomerRefundCount(r.Context(), models.Address(q.Get("customer")))
	case q.Get("payment_id") != "":
		paymentID, parseErr := strconv.ParseUint(q.Get("payment_id"), 10, 64)
		if parseErr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "payment_id must be an unsigned integer"})
			return
		}
		count, err = h.refunds.GetPaymentRefundCount(r.Context(), paymentID)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "one of status, merchant, customer or payment_id is required",
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

// GetRefundedTotal handles GET /api/v1/payments/{id}/refunded-total
func (h *Handler) GetRefundedTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	total, err := h.refunds.GetTotalRefundedAmount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"payment_id": id, "total_refunded": total})
}
