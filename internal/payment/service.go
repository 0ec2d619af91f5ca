// Package payment stages checkouts paid through the external gateway and
// reconciles the gateway callback with the checkout orchestrator exactly once.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/gateway"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=payment
type Repository interface {
	CreatePending(ctx context.Context, p *PendingPayment) error
	GetPending(ctx context.Context, id uuid.UUID) (*PendingPayment, error)
	// ClaimPending moves a pending or expired payment to status and reports
	// whether this call won the transition.
	ClaimPending(ctx context.Context, q database.Querier, id uuid.UUID, status Status, at time.Time) (bool, error)
	SaveResponse(ctx context.Context, q database.Querier, id uuid.UUID, resp *Response) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type Gateway interface {
	CreateInvoice(ctx context.Context, in gateway.InvoiceRequest) (*gateway.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*gateway.Invoice, error)
}

type Checkout interface {
	Quote(ctx context.Context, req *checkout.Request) (*checkout.Quote, error)
	Place(ctx context.Context, q database.Querier, req *checkout.Request) (*checkout.Result, error)
}

type Depositor interface {
	Credit(ctx context.Context, q database.Querier, e wallet.Entry) (*wallet.Transaction, error)
}

type Options struct {
	// CallbackURL is the public base URL the provider redirects the customer to.
	CallbackURL string
	TTL         time.Duration
}

type Service struct {
	repo     Repository
	tx       database.Beginner
	gateway  Gateway
	checkout Checkout
	ledger   Depositor
	opts     Options
	nowFunc  func() time.Time
}

func NewService(repo Repository, tx database.Beginner, gw Gateway, co Checkout, ledger Depositor, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}

	return &Service{
		repo:     repo,
		tx:       tx,
		gateway:  gw,
		checkout: co,
		ledger:   ledger,
		opts:     opts,
		nowFunc:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

// Initiate prices the cart, opens an invoice at the provider and stages the
// request until the provider calls back.
func (s *Service) Initiate(ctx context.Context, req *checkout.Request, payerEmail string) (*PendingPayment, error) {
	quote, err := s.checkout.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	if quote.Total <= 0 {
		return nil, ErrNothingToPay
	}

	id := uuid.New()

	inv, err := s.gateway.CreateInvoice(ctx, gateway.InvoiceRequest{
		ExternalID:         id.String(),
		Amount:             quote.Total,
		Description:        fmt.Sprintf("Marketvest order (%d items)", len(quote.Lines)),
		PayerEmail:         payerEmail,
		SuccessRedirectURL: s.callbackURL("success", id),
		FailureRedirectURL: s.callbackURL("failure", id),
		InvoiceDuration:    int(s.opts.TTL.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	p := &PendingPayment{
		ID:         id,
		UserID:     req.UserID,
		PaymentID:  inv.ID,
		InvoiceURL: inv.InvoiceURL,
		Amount:     quote.Total,
		Payload:    *req,
		Status:     StatusPending,
		ExpiresAt:  s.nowFunc().Add(s.opts.TTL),
	}

	if err := s.repo.CreatePending(ctx, p); err != nil {
		return nil, fmt.Errorf("create pending payment: %w", err)
	}

	slog.Info("payment initiated", "pending_id", p.ID, "payment_id", p.PaymentID, "user_id", p.UserID, "amount", p.Amount)

	return p, nil
}

func (s *Service) callbackURL(kind string, id uuid.UUID) string {
	return s.opts.CallbackURL + "/api/v1/payments/callback/" + kind + "?" + url.Values{"pending_id": {id.String()}}.Encode()
}

// GetForUser returns the pending payment when it belongs to the user.
func (s *Service) GetForUser(ctx context.Context, userID, id uuid.UUID) (*PendingPayment, error) {
	p, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.UserID != userID {
		return nil, ErrNotFound
	}

	return p, nil
}

// Reconcile handles a provider callback for the pending payment. Only a
// payment the provider confirms as paid is turned into an order, and only by
// the first callback to claim it; every later callback gets the recorded
// outcome back without side effects.
func (s *Service) Reconcile(ctx context.Context, pendingID uuid.UUID, providerPaymentID string) (*Result, error) {
	p, err := s.repo.GetPending(ctx, pendingID)
	if err != nil {
		return nil, err
	}

	if providerPaymentID != "" && providerPaymentID != p.PaymentID {
		return nil, ErrPaymentMismatch
	}

	if !p.Status.Open() {
		return &Result{Outcome: OutcomeAlreadyProcessed, Payment: p, Previous: p.Response}, nil
	}

	inv, err := s.gateway.GetInvoice(ctx, p.PaymentID)
	if err != nil {
		slog.Error("payment verification failed", "pending_id", p.ID, "payment_id", p.PaymentID, "status", p.Status, "error", err)

		if p.Status == StatusExpired {
			// Left expired so a later callback can still verify it.
			return &Result{Outcome: OutcomeError, Payment: p}, nil
		}

		return s.fail(ctx, p, OutcomeError, &Response{Error: err.Error()})
	}

	if !inv.Paid() {
		return s.fail(ctx, p, OutcomeFailed, &Response{ProviderStatus: string(inv.Status)})
	}

	return s.settle(ctx, p, inv)
}

// Fail records a cancelled or errored payment reported by the provider's
// failure redirect.
func (s *Service) Fail(ctx context.Context, pendingID uuid.UUID) (*Result, error) {
	p, err := s.repo.GetPending(ctx, pendingID)
	if err != nil {
		return nil, err
	}

	if p.Status != StatusPending {
		return &Result{Outcome: OutcomeAlreadyProcessed, Payment: p, Previous: p.Response}, nil
	}

	return s.fail(ctx, p, OutcomeCancelled, &Response{})
}

func (s *Service) fail(ctx context.Context, p *PendingPayment, outcome Outcome, resp *Response) (*Result, error) {
	now := s.nowFunc()
	resp.Outcome = outcome
	resp.HandledAt = now

	claimed := false

	err := database.WithTx(ctx, s.tx, func(tx database.Tx) error {
		ok, err := s.repo.ClaimPending(ctx, tx, p.ID, StatusFailed, now)
		if err != nil || !ok {
			return err
		}

		claimed = true

		return s.repo.SaveResponse(ctx, tx, p.ID, resp)
	})
	if err != nil {
		return nil, fmt.Errorf("record failed payment: %w", err)
	}

	if !claimed {
		return s.replay(ctx, p.ID)
	}

	p.Status = StatusFailed
	p.Response = resp

	slog.Info("payment not completed", "pending_id", p.ID, "outcome", outcome, "provider_status", resp.ProviderStatus)

	return &Result{Outcome: outcome, Payment: p}, nil
}

const checkoutSavepoint = "payment_checkout"

// settle claims the payment, credits the collected money and places the order
// in one unit of work. When the order cannot be placed, everything after the
// credit is rolled back to a savepoint: the claim and the credit stay, so the
// customer keeps the money as wallet balance and the payment is flagged for
// review.
func (s *Service) settle(ctx context.Context, p *PendingPayment, inv *gateway.Invoice) (*Result, error) {
	now := s.nowFunc()

	paid := inv.PaidAmount
	if paid <= 0 {
		paid = p.Amount
	}

	var (
		res     *Result
		claimed bool
	)

	err := database.WithTx(ctx, s.tx, func(tx database.Tx) error {
		ok, err := s.repo.ClaimPending(ctx, tx, p.ID, StatusCompleted, now)
		if err != nil || !ok {
			return err
		}

		claimed = true

		if _, err := s.ledger.Credit(ctx, tx, wallet.Entry{
			UserID:      p.UserID,
			Amount:      paid,
			Type:        wallet.TypeDeposit,
			Description: "Gateway payment " + p.PaymentID,
			Reference:   &wallet.Reference{Type: wallet.RefPendingPayment, ID: p.ID},
		}); err != nil {
			return fmt.Errorf("credit payment: %w", err)
		}

		if err := database.Savepoint(ctx, tx, checkoutSavepoint); err != nil {
			return err
		}

		req := p.Payload
		req.UserID = p.UserID

		resp := &Response{ProviderStatus: string(inv.Status), PaidAmount: paid, HandledAt: now}

		placed, placeErr := s.checkout.Place(ctx, tx, &req)
		if placeErr != nil {
			if err := database.RollbackTo(ctx, tx, checkoutSavepoint); err != nil {
				return err
			}

			resp.Outcome = OutcomePartial
			resp.Error = placeErr.Error()
			resp.NeedsReview = true
			res = &Result{Outcome: OutcomePartial, Payment: p}

			slog.Error("payment collected but order not placed",
				"pending_id", p.ID, "payment_id", p.PaymentID, "user_id", p.UserID, "amount", paid, "error", placeErr)
		} else {
			if err := database.Release(ctx, tx, checkoutSavepoint); err != nil {
				return err
			}

			resp.Outcome = OutcomeSuccess
			resp.OrderID = &placed.Order.ID
			resp.OrderNumber = placed.Order.OrderNumber
			res = &Result{Outcome: OutcomeSuccess, Payment: p, Order: placed.Order}
		}

		p.Response = resp

		return s.repo.SaveResponse(ctx, tx, p.ID, resp)
	})
	if err != nil {
		return nil, fmt.Errorf("settle payment: %w", err)
	}

	if !claimed {
		return s.replay(ctx, p.ID)
	}

	p.Status = StatusCompleted
	p.PaidAt = &now
	p.OrderID = p.Response.OrderID

	slog.Info("payment completed", "pending_id", p.ID, "outcome", res.Outcome, "order_id", p.OrderID)

	return res, nil
}

// replay answers a callback that lost the race to claim the payment.
func (s *Service) replay(ctx context.Context, id uuid.UUID) (*Result, error) {
	p, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Result{Outcome: OutcomeAlreadyProcessed, Payment: p, Previous: p.Response}, nil
}

// ExpireStale marks pending payments past their expiry as expired.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, s.nowFunc())
	if err != nil {
		return 0, fmt.Errorf("expire pending payments: %w", err)
	}

	if n > 0 {
		slog.Info("pending payments expired", "count", n)
	}

	return n, nil
}
