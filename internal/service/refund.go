package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/paystream/ledger/internal/host"
	"github.com/paystream/ledger/internal/ledger"
	"github.com/paystream/ledger/internal/models"
	"github.com/paystream/ledger/internal/storage"
)

// RefundService implements the refund state machine over the ledger store.
// Refunds reference payments by id value only; the payment record is never
// consulted. Admin-gated operations check the caller against the stored admin
// address registered by Initialize.
type RefundService struct {
	store  storage.Store
	clock  host.Clock
	auth   host.Auth
	events host.Publisher
	token  host.TokenClient
	logger *slog.Logger

	statusIdx   *ledger.StatusIndex
	merchantIdx *ledger.PartyIndex
	customerIdx *ledger.PartyIndex
	paymentIdx  *ledger.PartyIndex
}

// NewRefundService creates a new RefundService
func NewRefundService(
	store storage.Store,
	clock host.Clock,
	auth host.Auth,
	events host.Publisher,
	token host.TokenClient,
	logger *slog.Logger,
) *RefundService {
	return &RefundService{
		store:       store,
		clock:       clock,
		auth:        auth,
		events:      events,
		token:       token,
		logger:      logger,
		statusIdx:   ledger.NewStatusIndex(storage.KindRefund),
		merchantIdx: ledger.NewPartyIndex(storage.KindRefund, "merchant"),
		customerIdx: ledger.NewPartyIndex(storage.KindRefund, "customer"),
		paymentIdx:  ledger.NewPartyIndex(storage.KindRefund, "payment"),
	}
}

// Initialize registers the admin address. It may be called exactly once.
func (s *RefundService) Initialize(ctx context.Context, admin models.Address) error {
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		if _, ok, err := tx.Get(ctx, storage.AdminKey()); err != nil {
			return internalError("failed to read admin address: %v", err)
		} else if ok {
			return &ServiceError{Code: ErrCodeAlreadyInitialized, Message: "already initialized"}
		}
		if err := tx.Set(ctx, storage.AdminKey(), []byte(admin)); err != nil {
			return internalError("failed to store admin address: %v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "refund ledger initialized", "admin", admin)
	return nil
}

// RequestRefund opens a Requested refund against a payment and returns its id.
// The merchant must be the authenticated caller. originalPaymentAmount is
// supplied by the caller and bounds the total that can ever be processed for
// the payment id.
func (s *RefundService) RequestRefund(
	ctx context.Context,
	merchant models.Address,
	paymentID uint64,
	customer models.Address,
	amount, originalPaymentAmount models.Amount,
	token models.Address,
	reason string,
) (uint64, error) {
	if err := s.auth.RequireAuth(ctx, merchant); err != nil {
		return 0, &ServiceError{Code: ErrCodeUnauthorized, Message: "merchant authentication required", Err: err}
	}
	if !amount.IsPositive() {
		return 0, &ServiceError{Code: ErrCodeInvalidAmount, Message: "amount must be greater than 0"}
	}
	if amount.Cmp(originalPaymentAmount) > 0 {
		return 0, &ServiceError{Code: ErrCodeRefundExceedsPayment, Message: "refund amount exceeds original payment amount"}
	}
	if paymentID == 0 {
		return 0, &ServiceError{Code: ErrCodeInvalidPaymentID, Message: "payment id must be greater than 0"}
	}

	var refund models.Refund
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		if err := s.canRefund(ctx, tx, paymentID, amount, originalPaymentAmount); err != nil {
			return err
		}

		id, err := ledger.NextID(ctx, tx, storage.KindRefund)
		if err != nil {
			return internalError("failed to allocate refund id: %v", err)
		}

		refund = models.Refund{
			ID:                    id,
			PaymentID:             paymentID,
			Merchant:              merchant,
			Customer:              customer,
			Amount:                amount,
			OriginalPaymentAmount: originalPaymentAmount,
			Token:                 token,
			Status:                models.RefundStatusRequested,
			RequestedAt:           s.clock.Now(),
			Reason:                reason,
		}

		if err := storage.SetJSON(ctx, tx, storage.EntityKey(storage.KindRefund, id), refund); err != nil {
			return internalError("failed to store refund: %v", err)
		}
		if err := s.statusIdx.Add(ctx, tx, string(models.RefundStatusRequested), id); err != nil {
			return internalError("failed to index refund status: %v", err)
		}
		if err := s.merchantIdx.Append(ctx, tx, merchant.String(), id); err != nil {
			return internalError("failed to index refund by merchant: %v", err)
		}
		if err := s.customerIdx.Append(ctx, tx, customer.String(), id); err != nil {
			return internalError("failed to index refund by customer: %v", err)
		}
		if err := s.paymentIdx.Append(ctx, tx, formatPaymentID(paymentID), id); err != nil {
			return internalError("failed to index refund by payment: %v", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.events.Publish(ctx, models.RefundRequested{
		RefundID:  refund.ID,
		PaymentID: paymentID,
		Merchant:  merchant,
		Customer:  customer,
		Amount:    amount,
		Token:     token,
	})
	s.logger.InfoContext(ctx, "refund requested",
		"refund_id", refund.ID,
		"payment_id", paymentID,
		"merchant", merchant,
	)

	return refund.ID, nil
}

// ApproveRefund moves a Requested refund to Approved. Admin only.
func (s *RefundService) ApproveRefund(ctx context.Context, admin models.Address, id uint64) error {
	if err := s.requireAdmin(ctx, admin); err != nil {
		return err
	}

	if err := s.review(ctx, id, models.RefundStatusApproved); err != nil {
		return err
	}

	s.events.Publish(ctx, models.RefundApproved{
		RefundID:   id,
		ApprovedBy: admin,
		ApprovedAt: s.clock.Now(),
	})
	s.logger.InfoContext(ctx, "refund approved", "refund_id", id, "admin", admin)
	return nil
}

// RejectRefund moves a Requested refund to Rejected, recording the reason.
// Admin only. Rejected is terminal.
func (s *RefundService) RejectRefund(ctx context.Context, admin models.Address, id uint64, rejectionReason string) error {
	if err := s.requireAdmin(ctx, admin); err != nil {
		return err
	}

	if err := s.review(ctx, id, models.RefundStatusRejected); err != nil {
		return err
	}

	s.events.Publish(ctx, models.RefundRejected{
		RefundID:        id,
		RejectedBy:      admin,
		RejectedAt:      s.clock.Now(),
		RejectionReason: rejectionReason,
	})
	s.logger.InfoContext(ctx, "refund rejected", "refund_id", id, "admin", admin)
	return nil
}

// review applies the Requested → Approved/Rejected transition.
func (s *RefundService) review(ctx context.Context, id uint64, to models.RefundStatus) error {
	return s.store.Atomic(ctx, func(tx storage.Store) error {
		refund, err := s.loadRefund(ctx, tx, id)
		if err != nil {
			return err
		}
		if refund.Status != models.RefundStatusRequested {
			return &ServiceError{Code: ErrCodeInvalidStatus, Message: "refund is not in requested status"}
		}
		return s.transition(ctx, tx, refund, to)
	})
}

// ProcessRefund executes an Approved refund: the running per-payment total is
// re-validated, tokens move from merchant to customer through the transfer
// collaborator, and the refund reaches Processed. A failed transfer aborts the
// whole scope, leaving the refund Approved so the operation can be retried.
func (s *RefundService) ProcessRefund(ctx context.Context, admin models.Address, id uint64) error {
	if err := s.requireAdmin(ctx, admin); err != nil {
		return err
	}

	var (
		refund      *models.Refund
		processedAt uint64
	)
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		var err error
		refund, err = s.loadRefund(ctx, tx, id)
		if err != nil {
			return err
		}
		if refund.Status != models.RefundStatusApproved {
			return &ServiceError{Code: ErrCodeNotApproved, Message: "refund is not approved"}
		}

		// Other refunds for the same payment may have been processed since this
		// one was approved; the running total must still leave room.
		if err := s.canRefund(ctx, tx, refund.PaymentID, refund.Amount, refund.OriginalPaymentAmount); err != nil {
			return err
		}

		if err := s.token.Transfer(ctx, refund.Token, refund.Merchant, refund.Customer, refund.Amount); err != nil {
			return &ServiceError{Code: ErrCodeTransferFailed, Message: "token transfer failed", Err: err}
		}

		if err := s.transition(ctx, tx, refund, models.RefundStatusProcessed); err != nil {
			return err
		}

		total, err := s.processedTotal(ctx, tx, refund.PaymentID)
		if err != nil {
			return err
		}
		total = total.SaturatingAdd(refund.Amount)
		if err := storage.SetJSON(ctx, tx, storage.ProcessedTotalKey(refund.PaymentID), total); err != nil {
			return internalError("failed to store processed refund total: %v", err)
		}

		processedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, models.RefundProcessed{
		RefundID:    id,
		ProcessedBy: admin,
		Customer:    refund.Customer,
		Amount:      refund.Amount,
		Token:       refund.Token,
		ProcessedAt: processedAt,
	})
	s.logger.InfoContext(ctx, "refund processed",
		"refund_id", id,
		"payment_id", refund.PaymentID,
		"amount", refund.Amount,
	)
	return nil
}

// GetRefund retrieves a refund by id.
func (s *RefundService) GetRefund(ctx context.Context, id uint64) (*models.Refund, error) {
	return s.loadRefund(ctx, s.store, id)
}

// GetRefundsByStatus lists refunds currently in status, in status-array order.
func (s *RefundService) GetRefundsByStatus(ctx context.Context, status models.RefundStatus, limit, offset uint64) ([]models.Refund, error) {
	ids, err := s.statusIdx.Page(ctx, s.store, string(status), limit, offset)
	if err != nil {
		return nil, internalError("failed to read refund status index: %v", err)
	}
	return s.loadRefunds(ctx, ids)
}

// GetRefundCountByStatus returns the number of refunds currently in status.
func (s *RefundService) GetRefundCountByStatus(ctx context.Context, status models.RefundStatus) (uint64, error) {
	count, err := s.statusIdx.Count(ctx, s.store, string(status))
	if err != nil {
		return 0, internalError("failed to read refund status count: %v", err)
	}
	return count, nil
}

// GetRefundsByMerchant lists a merchant's refunds in request order.
func (s *RefundService) GetRefundsByMerchant(ctx context.Context, merchant models.Address, limit, offset uint64) ([]models.Refund, error) {
	ids, err := s.merchantIdx.Page(ctx, s.store, merchant.String(), limit, offset)
	if err != nil {
		return nil, internalError("failed to read merchant refund index: %v", err)
	}
	return s.loadRefunds(ctx, ids)
}

// GetRefundsByCustomer lists a customer's refunds in request order.
func (s *RefundService) GetRefundsByCustomer(ctx context.Context, customer models.Address, limit, offset uint64) ([]models.Refund, error) {
	ids, err := s.customerIdx.Page(ctx, s.store, customer.String(), limit, offset)
	if err != nil {
		return nil, internalError("failed to read customer refund index: %v", err)
	}
	return s.loadRefunds(ctx, ids)
}

// GetRefundsByPayment lists the refunds opened against a payment in request
// order.
func (s *RefundService) GetRefundsByPayment(ctx context.Context, paymentID uint64, limit, offset uint64) ([]models.Refund, error) {
	ids, err := s.paymentIdx.Page(ctx, s.store, formatPaymentID(paymentID), limit, offset)
	if err != nil {
		return nil, internalError("failed to read payment refund index: %v", err)
	}
	return s.loadRefunds(ctx, ids)
}

// GetMerchantRefundCount returns the number of refunds opened by merchant.
func (s *RefundService) GetMerchantRefundCount(ctx context.Context, merchant models.Address) (uint64, error) {
	count, err := s.merchantIdx.Count(ctx, s.store, merchant.String())
	if err != nil {
		return 0, internalError("failed to read merchant refund count: %v", err)
	}
	return count, nil
}

// GetCustomerRefundCount returns the number of refunds owed to customer.
func (s *RefundService) GetCustomerRefundCount(ctx context.Context, customer models.Address) (uint64, error) {
	count, err := s.customerIdx.Count(ctx, s.store, customer.String())
	if err != nil {
		return 0, internalError("failed to read customer refund count: %v", err)
	}
	return count, nil
}

// GetPaymentRefundCount returns the number of refunds opened against a payment.
func (s *RefundService) GetPaymentRefundCount(ctx context.Context, paymentID uint64) (uint64, error) {
	count, err := s.paymentIdx.Count(ctx, s.store, formatPaymentID(paymentID))
	if err != nil {
		return 0, internalError("failed to read payment refund count: %v", err)
	}
	return count, nil
}

// GetTotalRefundedAmount returns the sum of all Processed refund amounts for a
// payment id. The total is maintained incrementally by ProcessRefund.
func (s *RefundService) GetTotalRefundedAmount(ctx context.Context, paymentID uint64) (models.Amount, error) {
	return s.processedTotal(ctx, s.store, paymentID)
}

// CanRefundPayment reports whether requestedAmount still fits under
// originalAmount once all Processed refunds for the payment are accounted for.
func (s *RefundService) CanRefundPayment(ctx context.Context, paymentID uint64, requestedAmount, originalAmount models.Amount) (bool, error) {
	if err := s.canRefund(ctx, s.store, paymentID, requestedAmount, originalAmount); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RefundService) canRefund(ctx context.Context, from storage.Store, paymentID uint64, requested, original models.Amount) error {
	total, err := s.processedTotal(ctx, from, paymentID)
	if err != nil {
		return err
	}
	if requested.SaturatingAdd(total).Cmp(original) > 0 {
		return &ServiceError{Code: ErrCodeTotalRefundsExceedPayment, Message: "total refunds would exceed original payment amount"}
	}
	return nil
}

func (s *RefundService) processedTotal(ctx context.Context, from storage.Store, paymentID uint64) (models.Amount, error) {
	var total models.Amount
	if _, err := storage.GetJSON(ctx, from, storage.ProcessedTotalKey(paymentID), &total); err != nil {
		return models.Amount{}, internalError("failed to read processed refund total: %v", err)
	}
	return total, nil
}

func (s *RefundService) requireAdmin(ctx context.Context, admin models.Address) error {
	if err := s.auth.RequireAuth(ctx, admin); err != nil {
		return &ServiceError{Code: ErrCodeUnauthorized, Message: "admin authentication required", Err: err}
	}
	raw, ok, err := s.store.Get(ctx, storage.AdminKey())
	if err != nil {
		return internalError("failed to read admin address: %v", err)
	}
	if !ok || models.Address(raw) != admin {
		return &ServiceError{Code: ErrCodeUnauthorized, Message: "caller is not the registered admin"}
	}
	return nil
}

func (s *RefundService) loadRefund(ctx context.Context, from storage.Store, id uint64) (*models.Refund, error) {
	var refund models.Refund
	ok, err := storage.GetJSON(ctx, from, storage.EntityKey(storage.KindRefund, id), &refund)
	if err != nil {
		return nil, internalError("failed to load refund: %v", err)
	}
	if !ok {
		return nil, &ServiceError{Code: ErrCodeRefundNotFound, Message: "refund not found"}
	}
	return &refund, nil
}

func (s *RefundService) loadRefunds(ctx context.Context, ids []uint64) ([]models.Refund, error) {
	refunds := make([]models.Refund, 0, len(ids))
	for _, id := range ids {
		var refund models.Refund
		ok, err := storage.GetJSON(ctx, s.store, storage.EntityKey(storage.KindRefund, id), &refund)
		if err != nil {
			return nil, internalError("failed to load refund %d: %v", id, err)
		}
		if !ok {
			continue
		}
		refunds = append(refunds, refund)
	}
	return refunds, nil
}

// transition moves a refund to its next status, keeping the status index
// consistent with the stored record.
func (s *RefundService) transition(ctx context.Context, tx storage.Store, refund *models.Refund, to models.RefundStatus) error {
	from := refund.Status
	refund.Status = to
	if err := storage.SetJSON(ctx, tx, storage.EntityKey(storage.KindRefund, refund.ID), refund); err != nil {
		return internalError("failed to store refund: %v", err)
	}
	if err := s.statusIdx.Move(ctx, tx, string(from), string(to), refund.ID); err != nil {
		return internalError("failed to move refund between status indexes: %v", err)
	}
	return nil
}

func formatPaymentID(paymentID uint64) string {
	return strconv.FormatUint(paymentID, 10)
}
