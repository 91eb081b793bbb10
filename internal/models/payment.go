package models

import "fmt"

// Address identifies a party (customer, merchant, admin) or a token contract.
type Address string

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ""
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// PaymentStatuses lists every valid payment status.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusRefunded,
	PaymentStatusCancelled,
}

// ParsePaymentStatus converts a wire string into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, status := range PaymentStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown payment status: %q", s)
}

// IsTerminal reports whether no further transition is permitted from the status.
// Pending is the sole non-terminal payment status.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

// Payment represents a ledger entry for a customer-to-merchant payment.
// ExpiresAt is an absolute ledger timestamp; zero means the payment never expires.
type Payment struct {
	ID        uint64        `json:"id"`
	Customer  Address       `json:"customer"`
	Merchant  Address       `json:"merchant"`
	Amount    Amount        `json:"amount"`
	Token     Address       `json:"token"`
	Status    PaymentStatus `json:"status"`
	ExpiresAt uint64        `json:"expires_at"`
}
