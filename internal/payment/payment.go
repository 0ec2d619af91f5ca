package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Open reports whether a callback may still settle the payment. Expiry is
// decided by the local clock only, so an expired payment is re-verified with
// the provider before it is given up on.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusExpired
}

// Outcome is what the customer is told once a callback has been handled.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeFailed           Outcome = "failed"
	OutcomeError            Outcome = "error"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomePartial          Outcome = "partial"
	OutcomeCancelled        Outcome = "cancelled"
)

// PendingPayment stages a checkout while the customer pays at the provider.
type PendingPayment struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	PaymentID  string // Provider invoice id
	InvoiceURL string
	Amount     int64
	Payload    checkout.Request
	Status     Status
	ExpiresAt  time.Time
	PaidAt     *time.Time
	Response   *Response
	OrderID    *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Response is the recorded result of handling a pending payment. It is
// stored once and replayed to duplicate callbacks.
type Response struct {
	Outcome        Outcome    `json:"outcome"`
	ProviderStatus string     `json:"provider_status,omitempty"`
	PaidAmount     int64      `json:"paid_amount,omitempty"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	OrderNumber    string     `json:"order_number,omitempty"`
	Error          string     `json:"error,omitempty"`
	// NeedsReview marks a payment that was collected without an order being
	// placed. An operator has to settle it by hand.
	NeedsReview bool      `json:"needs_review,omitempty"`
	HandledAt   time.Time `json:"handled_at"`
}

type Result struct {
	Outcome Outcome
	Payment *PendingPayment
	Order   *order.Order
	// Previous is set for duplicate callbacks.
	Previous *Response
}

var (
	ErrNotFound        = apperr.New(apperr.KindNotFound, "PAYMENT_NOT_FOUND", "pending payment not found")
	ErrPaymentMismatch = apperr.New(apperr.KindValidation, "PAYMENT_MISMATCH", "payment id does not match the pending payment")
	ErrNothingToPay    = apperr.New(apperr.KindValidation, "NOTHING_TO_PAY", "order total is zero")
)
