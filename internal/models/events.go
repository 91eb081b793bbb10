package models

// Event is an append-only ledger event. Name identifies the event type on the
// wire and in the log stream.
type Event interface {
	Name() string
}

// PaymentCreated is emitted when a payment enters the ledger in Pending status.
type PaymentCreated struct {
	PaymentID uint64  `json:"payment_id"`
	Customer  Address `json:"customer"`
	Merchant  Address `json:"merchant"`
	Amount    Amount  `json:"amount"`
	Token     Address `json:"token"`
	ExpiresAt uint64  `json:"expires_at"`
}

func (PaymentCreated) Name() string { return "payment_created" }

// PaymentCancelled is emitted when a customer or merchant cancels a pending payment.
type PaymentCancelled struct {
	PaymentID   uint64  `json:"payment_id"`
	CancelledBy Address `json:"cancelled_by"`
	CancelledAt uint64  `json:"cancelled_at"`
}

func (PaymentCancelled) Name() string { return "payment_cancelled" }

// PaymentExpired is emitted when a pending payment is expired past its deadline.
// Expiration lands in Cancelled status; this event is the only record that the
// cancellation was time-driven.
type PaymentExpired struct {
	PaymentID uint64 `json:"payment_id"`
	ExpiresAt uint64 `json:"expires_at"`
	ExpiredAt uint64 `json:"expired_at"`
}

func (PaymentExpired) Name() string { return "payment_expired" }

// RefundRequested is emitted when a merchant opens a refund request.
type RefundRequested struct {
	RefundID  uint64  `json:"refund_id"`
	PaymentID uint64  `json:"payment_id"`
	Merchant  Address `json:"merchant"`
	Customer  Address `json:"customer"`
	Amount    Amount  `json:"amount"`
	Token     Address `json:"token"`
}

func (RefundRequested) Name() string { return "refund_requested" }

// RefundApproved is emitted when the admin approves a requested refund.
type RefundApproved struct {
	RefundID   uint64  `json:"refund_id"`
	ApprovedBy Address `json:"approved_by"`
	ApprovedAt uint64  `json:"approved_at"`
}

func (RefundApproved) Name() string { return "refund_approved" }

// RefundRejected is emitted when the admin rejects a requested refund.
type RefundRejected struct {
	RefundID        uint64  `json:"refund_id"`
	RejectedBy      Address `json:"rejected_by"`
	RejectedAt      uint64  `json:"rejected_at"`
	RejectionReason string  `json:"rejection_reason"`
}

func (RefundRejected) Name() string { return "refund_rejected" }

// RefundProcessed is emitted after the token transfer for an approved refund
// succeeds and the refund reaches Processed status.
type RefundProcessed struct {
	RefundID    uint64  `json:"refund_id"`
	ProcessedBy Address `json:"processed_by"`
	Customer    Address `json:"customer"`
	Amount      Amount  `json:"amount"`
	Token       Address `json:"token"`
	ProcessedAt uint64  `json:"processed_at"`
}

func (RefundProcessed) Name() string { return "refund_processed" }
