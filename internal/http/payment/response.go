package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/payment"
)

type initiateResponse struct {
	PendingPaymentID uuid.UUID `json:"pending_payment_id"`
	RedirectURL      string    `json:"redirect_url"`
	Amount           int64     `json:"amount"`
	ExpiresAt        time.Time `json:"expires_at"`
}

type pendingResponse struct {
	ID          uuid.UUID       `json:"id"`
	Status      payment.Status  `json:"status"`
	Amount      int64           `json:"amount"`
	InvoiceURL  string          `json:"invoice_url"`
	ExpiresAt   time.Time       `json:"expires_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	Outcome     payment.Outcome `json:"outcome,omitempty"`
	OrderNumber string          `json:"order_number,omitempty"`
	NeedsReview bool            `json:"needs_review,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toPendingResponse(p *payment.PendingPayment) pendingResponse {
	resp := pendingResponse{
		ID:         p.ID,
		Status:     p.Status,
		Amount:     p.Amount,
		InvoiceURL: p.InvoiceURL,
		ExpiresAt:  p.ExpiresAt,
		PaidAt:     p.PaidAt,
		OrderID:    p.OrderID,
		CreatedAt:  p.CreatedAt,
	}

	if p.Response != nil {
		resp.Outcome = p.Response.Outcome
		resp.OrderNumber = p.Response.OrderNumber
		resp.NeedsReview = p.Response.NeedsReview
	}

	return resp
}

type webhookResponse struct {
	Outcome payment.Outcome `json:"outcome"`
}

type expireResponse struct {
	Expired int64 `json:"expired"`
}
