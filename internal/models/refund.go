package models

import "fmt"

// RefundStatus represents the status of a refund
type RefundStatus string

const (
	RefundStatusRequested RefundStatus = "REQUESTED"
	RefundStatusApproved  RefundStatus = "APPROVED"
	RefundStatusRejected  RefundStatus = "REJECTED"
	RefundStatusProcessed RefundStatus = "PROCESSED"
)

// RefundStatuses lists every valid refund status.
var RefundStatuses = []RefundStatus{
	RefundStatusRequested,
	RefundStatusApproved,
	RefundStatusRejected,
	RefundStatusProcessed,
}

// ParseRefundStatus converts a wire string into a RefundStatus.
func ParseRefundStatus(s string) (RefundStatus, error) {
	for _, status := range RefundStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown refund status: %q", s)
}

// IsTerminal reports whether no further transition is permitted from the status.
// Requested and Approved are intermediate; Rejected and Processed are terminal.
func (s RefundStatus) IsTerminal() bool {
	return s == RefundStatusRejected || s == RefundStatusProcessed
}

// Refund represents a merchant-initiated refund against a payment. The refund id
// space is independent of the payment id space; PaymentID is carried by value and
// never resolved against the payment ledger.
type Refund struct {
	ID                    uint64       `json:"id"`
	PaymentID             uint64       `json:"payment_id"`
	Merchant              Address      `json:"merchant"`
	Customer              Address      `json:"customer"`
	Amount                Amount       `json:"amount"`
	OriginalPaymentAmount Amount       `json:"original_payment_amount"`
	Token                 Address      `json:"token"`
	Status                RefundStatus `json:"status"`
	RequestedAt           uint64       `json:"requested_at"`
	Reason                string       `json:"reason"`
}
