package service

import (
	"context"
	"log/slog"

	"github.com/paystream/ledger/internal/host"
	"github.com/paystream/ledger/internal/ledger"
	"github.com/paystream/ledger/internal/models"
	"github.com/paystream/ledger/internal/storage"
)

// PaymentService implements the payment state machine over the ledger store.
// Every mutating operation validates, then applies all of its writes in one
// atomic store scope.
type PaymentService struct {
	store  storage.Store
	clock  host.Clock
	auth   host.Auth
	events host.Publisher
	logger *slog.Logger

	statusIdx   *ledger.StatusIndex
	customerIdx *ledger.PartyIndex
	merchantIdx *ledger.PartyIndex
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	store storage.Store,
	clock host.Clock,
	auth host.Auth,
	events host.Publisher,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		store:       store,
		clock:       clock,
		auth:        auth,
		events:      events,
		logger:      logger,
		statusIdx:   ledger.NewStatusIndex(storage.KindPayment),
		customerIdx: ledger.NewPartyIndex(storage.KindPayment, "customer"),
		merchantIdx: ledger.NewPartyIndex(storage.KindPayment, "merchant"),
	}
}

// CreatePayment records a new Pending payment and returns its id. The customer
// must be the authenticated caller. A zero expirationDuration means the
// payment never expires.
func (s *PaymentService) CreatePayment(
	ctx context.Context,
	customer, merchant models.Address,
	amount models.Amount,
	token models.Address,
	expirationDuration uint64,
) (uint64, error) {
	if err := s.auth.RequireAuth(ctx, customer); err != nil {
		return 0, &ServiceError{Code: ErrCodeUnauthorized, Message: "customer authentication required", Err: err}
	}
	if !amount.IsPositive() {
		return 0, &ServiceError{Code: ErrCodeInvalidAmount, Message: "amount must be greater than 0"}
	}

	var payment models.Payment
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		id, err := ledger.NextID(ctx, tx, storage.KindPayment)
		if err != nil {
			return internalError("failed to allocate payment id: %v", err)
		}

		var expiresAt uint64
		if expirationDuration != 0 {
			expiresAt = s.clock.Now() + expirationDuration
		}

		payment = models.Payment{
			ID:        id,
			Customer:  customer,
			Merchant:  merchant,
			Amount:    amount,
			Token:     token,
			Status:    models.PaymentStatusPending,
			ExpiresAt: expiresAt,
		}

		if err := storage.SetJSON(ctx, tx, storage.EntityKey(storage.KindPayment, id), payment); err != nil {
			return internalError("failed to store payment: %v", err)
		}
		if err := s.statusIdx.Add(ctx, tx, string(models.PaymentStatusPending), id); err != nil {
			return internalError("failed to index payment status: %v", err)
		}
		if err := s.customerIdx.Append(ctx, tx, customer.String(), id); err != nil {
			return internalError("failed to index payment by customer: %v", err)
		}
		if err := s.merchantIdx.Append(ctx, tx, merchant.String(), id); err != nil {
			return internalError("failed to index payment by merchant: %v", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.events.Publish(ctx, models.PaymentCreated{
		PaymentID: payment.ID,
		Customer:  customer,
		Merchant:  merchant,
		Amount:    amount,
		Token:     token,
		ExpiresAt: payment.ExpiresAt,
	})
	s.logger.InfoContext(ctx, "payment created",
		"payment_id", payment.ID,
		"customer", customer,
		"merchant", merchant,
		"expires_at", payment.ExpiresAt,
	)

	return payment.ID, nil
}

// GetPayment retrieves a payment by id.
func (s *PaymentService) GetPayment(ctx context.Context, id uint64) (*models.Payment, error) {
	return s.loadPayment(ctx, s.store, id)
}

// CompletePayment transitions a pending, unexpired payment to Completed. The
// admin address must authenticate, but the payment ledger stores no admin
// identity: any authenticated address is accepted here.
func (s *PaymentService) CompletePayment(ctx context.Context, admin models.Address, id uint64) error {
	return s.settlePayment(ctx, admin, id, models.PaymentStatusCompleted)
}

// RefundPayment transitions a pending, unexpired payment to Refunded. Same
// authentication rule as CompletePayment.
func (s *PaymentService) RefundPayment(ctx context.Context, admin models.Address, id uint64) error {
	return s.settlePayment(ctx, admin, id, models.PaymentStatusRefunded)
}

func (s *PaymentService) settlePayment(ctx context.Context, admin models.Address, id uint64, to models.PaymentStatus) error {
	if err := s.auth.RequireAuth(ctx, admin); err != nil {
		return &ServiceError{Code: ErrCodeUnauthorized, Message: "admin authentication required", Err: err}
	}

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		payment, err := s.loadPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if payment.Status != models.PaymentStatusPending {
			return &ServiceError{Code: ErrCodeInvalidStatus, Message: "payment is not pending"}
		}
		if s.expired(payment) {
			return &ServiceError{Code: ErrCodePaymentExpired, Message: "payment has expired"}
		}
		return s.transition(ctx, tx, payment, to)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "payment settled", "payment_id", id, "status", to, "admin", admin)
	return nil
}

// CancelPayment transitions a pending payment to Cancelled. Only the payment's
// customer or merchant may cancel, and must be the authenticated caller.
func (s *PaymentService) CancelPayment(ctx context.Context, caller models.Address, id uint64) error {
	if err := s.auth.RequireAuth(ctx, caller); err != nil {
		return &ServiceError{Code: ErrCodeUnauthorized, Message: "caller authentication required", Err: err}
	}

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		payment, err := s.loadPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if caller != payment.Customer && caller != payment.Merchant {
			return &ServiceError{Code: ErrCodeUnauthorized, Message: "only the customer or merchant may cancel"}
		}
		if payment.Status != models.PaymentStatusPending {
			return &ServiceError{Code: ErrCodeInvalidStatus, Message: "payment is not pending"}
		}
		return s.transition(ctx, tx, payment, models.PaymentStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, models.PaymentCancelled{
		PaymentID:   id,
		CancelledBy: caller,
		CancelledAt: s.clock.Now(),
	})
	s.logger.InfoContext(ctx, "payment cancelled", "payment_id", id, "cancelled_by", caller)
	return nil
}

// IsPaymentExpired reports whether a payment is past its expiry deadline.
// Unknown payments and payments without a deadline are never expired.
func (s *PaymentService) IsPaymentExpired(ctx context.Context, id uint64) (bool, error) {
	var payment models.Payment
	ok, err := storage.GetJSON(ctx, s.store, storage.EntityKey(storage.KindPayment, id), &payment)
	if err != nil {
		return false, internalError("failed to load payment: %v", err)
	}
	if !ok {
		return false, nil
	}
	return s.expired(&payment), nil
}

// ExpirePayment cancels a pending payment whose deadline has passed. No
// authentication is required; anyone may trigger expiration.
func (s *PaymentService) ExpirePayment(ctx context.Context, id uint64) error {
	var expiresAt uint64
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		payment, err := s.loadPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if payment.Status != models.PaymentStatusPending {
			return &ServiceError{Code: ErrCodeInvalidStatus, Message: "payment is not pending"}
		}
		if !s.expired(payment) {
			return &ServiceError{Code: ErrCodePaymentNotExpired, Message: "payment has not expired"}
		}
		expiresAt = payment.ExpiresAt
		return s.transition(ctx, tx, payment, models.PaymentStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, models.PaymentExpired{
		PaymentID: id,
		ExpiresAt: expiresAt,
		ExpiredAt: s.clock.Now(),
	})
	s.logger.InfoContext(ctx, "payment expired", "payment_id", id, "expires_at", expiresAt)
	return nil
}

// GetPaymentsByCustomer lists a customer's payments in creation order.
func (s *PaymentService) GetPaymentsByCustomer(ctx context.Context, customer models.Address, limit, offset uint64) ([]models.Payment, error) {
	ids, err := s.customerIdx.Page(ctx, s.store, customer.String(), limit, offset)
	if err != nil {
		return nil, internalError("failed to read customer payment index: %v", err)
	}
	return s.loadPayments(ctx, ids)
}

// GetPaymentsByMerchant lists a merchant's payments in creation order.
func (s *PaymentService) GetPaymentsByMerchant(ctx context.Context, merchant models.Address, limit, offset uint64) ([]models.Payment, error) {
	ids, err := s.merchantIdx.Page(ctx, s.store, merchant.String(), limit, offset)
	if err != nil {
		return nil, internalError("failed to read merchant payment index: %v", err)
	}
	return s.loadPayments(ctx, ids)
}

// GetPaymentsByStatus lists payments currently in status, in status-array
// order. Order matches insertion order until a removal causes a swap.
func (s *PaymentService) GetPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit, offset uint64) ([]models.Payment, error) {
	ids, err := s.statusIdx.Page(ctx, s.store, string(status), limit, offset)
	if err != nil {
		return nil, internalError("failed to read payment status index: %v", err)
	}
	return s.loadPayments(ctx, ids)
}

// GetCustomerPaymentCount returns the number of payments created by customer.
func (s *PaymentService) GetCustomerPaymentCount(ctx context.Context, customer models.Address) (uint64, error) {
	count, err := s.customerIdx.Count(ctx, s.store, customer.String())
	if err != nil {
		return 0, internalError("failed to read customer payment count: %v", err)
	}
	return count, nil
}

// GetMerchantPaymentCount returns the number of payments addressed to merchant.
func (s *PaymentService) GetMerchantPaymentCount(ctx context.Context, merchant models.Address) (uint64, error) {
	count, err := s.merchantIdx.Count(ctx, s.store, merchant.String())
	if err != nil {
		return 0, internalError("failed to read merchant payment count: %v", err)
	}
	return count, nil
}

// GetPaymentCountByStatus returns the number of payments currently in status.
func (s *PaymentService) GetPaymentCountByStatus(ctx context.Context, status models.PaymentStatus) (uint64, error) {
	count, err := s.statusIdx.Count(ctx, s.store, string(status))
	if err != nil {
		return 0, internalError("failed to read payment status count: %v", err)
	}
	return count, nil
}

func (s *PaymentService) expired(p *models.Payment) bool {
	return p.ExpiresAt != 0 && s.clock.Now() > p.ExpiresAt
}

func (s *PaymentService) loadPayment(ctx context.Context, from storage.Store, id uint64) (*models.Payment, error) {
	var payment models.Payment
	ok, err := storage.GetJSON(ctx, from, storage.EntityKey(storage.KindPayment, id), &payment)
	if err != nil {
		return nil, internalError("failed to load payment: %v", err)
	}
	if !ok {
		return nil, &ServiceError{Code: ErrCodePaymentNotFound, Message: "payment not found"}
	}
	return &payment, nil
}

func (s *PaymentService) loadPayments(ctx context.Context, ids []uint64) ([]models.Payment, error) {
	payments := make([]models.Payment, 0, len(ids))
	for _, id := range ids {
		var payment models.Payment
		ok, err := storage.GetJSON(ctx, s.store, storage.EntityKey(storage.KindPayment, id), &payment)
		if err != nil {
			return nil, internalError("failed to load payment %d: %v", id, err)
		}
		if !ok {
			continue
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// transition moves a payment out of Pending into a terminal status, keeping
// the status index consistent with the stored record.
func (s *PaymentService) transition(ctx context.Context, tx storage.Store, payment *models.Payment, to models.PaymentStatus) error {
	from := payment.Status
	payment.Status = to
	if err := storage.SetJSON(ctx, tx, storage.EntityKey(storage.KindPayment, payment.ID), payment); err != nil {
		return internalError("failed to store payment: %v", err)
	}
	if err := s.statusIdx.Move(ctx, tx, string(from), string(to), payment.ID); err != nil {
		return internalError("failed to move payment between status indexes: %v", err)
	}
	return nil
}
