package service

import "fmt"

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes. Every condition has its own code; none are shared.
const (
	ErrCodeInvalidAmount             = "invalid_amount"
	ErrCodeInvalidPaymentID          = "invalid_payment_id"
	ErrCodePaymentNotFound           = "payment_not_found"
	ErrCodeRefundNotFound            = "refund_not_found"
	ErrCodeUnauthorized              = "unauthorized"
	ErrCodeInvalidStatus             = "invalid_status"
	ErrCodePaymentExpired            = "payment_expired"
	ErrCodePaymentNotExpired         = "payment_not_expired"
	ErrCodeRefundExceedsPayment      = "refund_exceeds_payment"
	ErrCodeTotalRefundsExceedPayment = "total_refunds_exceed_payment"
	ErrCodeTransferFailed            = "transfer_failed"
	ErrCodeNotApproved               = "not_approved"
	ErrCodeAlreadyInitialized        = "already_initialized"
	ErrCodeInternalError             = "internal_error"
)

func internalError(format string, args ...any) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInternalError,
		Message: fmt.Sprintf(format, args...),
	}
}
