package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/paystream/ledger/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps a service error to its HTTP status. Unknown errors surface
// as 500 without leaking details.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("unhandled error", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   service.ErrCodeInternalError,
			Message: "internal error",
		})
		return
	}

	h.writeJSON(w, statusForCode(svcErr.Code), errorResponse{
		Error:   svcErr.Code,
		Message: svcErr.Message,
	})
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodePaymentNotFound, service.ErrCodeRefundNotFound:
		return http.StatusNotFound
	case service.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case service.ErrCodeInvalidAmount, service.ErrCodeInvalidPaymentID:
		return http.StatusBadRequest
	case service.ErrCodeInvalidStatus,
		service.ErrCodePaymentExpired,
		service.ErrCodePaymentNotExpired,
		service.ErrCodeRefundExceedsPayment,
		service.ErrCodeTotalRefundsExceedPayment,
		service.ErrCodeNotApproved,
		service.ErrCodeAlreadyInitialized:
		return http.StatusConflict
	case service.ErrCodeTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "request body is not valid JSON",
		})
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "id must be an unsigned integer",
		})
		return 0, false
	}
	return id, true
}

// pageParams parses limit/offset query parameters. Limit defaults to 50.
func pageParams(r *http.Request) (limit, offset uint64) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			offset = v
		}
	}
	return limit, offset
}
