package service

import (
	"context"

	"github.com/paystream/ledger/internal/models"
)

// PaymentLedger governs the payment lifecycle: Pending → Completed, Refunded
// or Cancelled. Expiration is a conditional cancellation available only from
// Pending.
type PaymentLedger interface {
	CreatePayment(ctx context.Context, customer, merchant models.Address, amount models.Amount, token models.Address, expirationDuration uint64) (uint64, error)
	GetPayment(ctx context.Context, id uint64) (*models.Payment, error)
	CompletePayment(ctx context.Context, admin models.Address, id uint64) error
	RefundPayment(ctx context.Context, admin models.Address, id uint64) error
	CancelPayment(ctx context.Context, caller models.Address, id uint64) error
	IsPaymentExpired(ctx context.Context, id uint64) (bool, error)
	ExpirePayment(ctx context.Context, id uint64) error

	GetPaymentsByCustomer(ctx context.Context, customer models.Address, limit, offset uint64) ([]models.Payment, error)
	GetPaymentsByMerchant(ctx context.Context, merchant models.Address, limit, offset uint64) ([]models.Payment, error)
	GetPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit, offset uint64) ([]models.Payment, error)
	GetCustomerPaymentCount(ctx context.Context, customer models.Address) (uint64, error)
	GetMerchantPaymentCount(ctx context.Context, merchant models.Address) (uint64, error)
	GetPaymentCountByStatus(ctx context.Context, status models.PaymentStatus) (uint64, error)
}

// RefundLedger governs the refund lifecycle: Requested → Approved or Rejected,
// Approved → Processed. Processing moves tokens through the transfer
// collaborator and maintains the per-payment processed running total.
type RefundLedger interface {
	Initialize(ctx context.Context, admin models.Address) error
	RequestRefund(ctx context.Context, merchant models.Address, paymentID uint64, customer models.Address, amount, originalPaymentAmount models.Amount, token models.Address, reason string) (uint64, error)
	ApproveRefund(ctx context.Context, admin models.Address, id uint64) error
	RejectRefund(ctx context.Context, admin models.Address, id uint64, rejectionReason string) error
	ProcessRefund(ctx context.Context, admin models.Address, id uint64) error
	GetRefund(ctx context.Context, id uint64) (*models.Refund, error)

	GetRefundsByStatus(ctx context.Context, status models.RefundStatus, limit, offset uint64) ([]models.Refund, error)
	GetRefundCountByStatus(ctx context.Context, status models.RefundStatus) (uint64, error)
	GetRefundsByMerchant(ctx context.Context, merchant models.Address, limit, offset uint64) ([]models.Refund, error)
	GetRefundsByCustomer(ctx context.Context, customer models.Address, limit, offset uint64) ([]models.Refund, error)
	GetRefundsByPayment(ctx context.Context, paymentID uint64, limit, offset uint64) ([]models.Refund, error)
	GetMerchantRefundCount(ctx context.Context, merchant models.Address) (uint64, error)
	GetCustomerRefundCount(ctx context.Context, customer models.Address) (uint64, error)
	GetPaymentRefundCount(ctx context.Context, paymentID uint64) (uint64, error)
	GetTotalRefundedAmount(ctx context.Context, paymentID uint64) (models.Amount, error)
	CanRefundPayment(ctx context.Context, paymentID uint64, requestedAmount, originalAmount models.Amount) (bool, error)
}

// Ensure concrete types implement interfaces
var (
	_ PaymentLedger = (*PaymentService)(nil)
	_ RefundLedger  = (*RefundService)(nil)
)
