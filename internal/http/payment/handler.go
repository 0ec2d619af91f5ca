package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/payment"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=payment
type Service interface {
	Initiate(ctx context.Context, req *checkout.Request, payerEmail string) (*payment.PendingPayment, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*payment.PendingPayment, error)
	Reconcile(ctx context.Context, pendingID uuid.UUID, providerPaymentID string) (*payment.Result, error)
	Fail(ctx context.Context, pendingID uuid.UUID) (*payment.Result, error)
	ExpireStale(ctx context.Context) (int64, error)
}

var errInvalidPendingID = apperr.New(apperr.KindValidation, "INVALID_PENDING_ID", "pending_id must be a UUID")

type Handler struct {
	svc       Service
	resultURL string
}

// NewHandler redirects gateway callbacks to resultURL, the frontend page
// that renders the payment outcome.
func NewHandler(svc Service, resultURL string) *Handler {
	return &Handler{svc: svc, resultURL: resultURL}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.initiate)
	r.Get("/{id}", h.get)
}

// CallbackRoutes serve the browser redirects from the gateway. They carry no
// credentials; the outcome is always verified with the gateway.
func (h *Handler) CallbackRoutes(r chi.Router) {
	r.Get("/success", h.callbackSuccess)
	r.Get("/failure", h.callbackFailure)
}

func (h *Handler) WebhookRoutes(r chi.Router) {
	r.Post("/", h.webhook)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/expire", h.expire)
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req checkout.Request
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	req.UserID = p.UserID

	pending, err := h.svc.Initiate(r.Context(), &req, p.Email)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, initiateResponse{
		PendingPaymentID: pending.ID,
		RedirectURL:      pending.InvoiceURL,
		Amount:           pending.Amount,
		ExpiresAt:        pending.ExpiresAt,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, payment.ErrNotFound)
		return
	}

	pending, err := h.svc.GetForUser(r.Context(), p.UserID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPendingResponse(pending))
}

func (h *Handler) callbackSuccess(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("pending_id"))
	if err != nil {
		h.redirect(w, r, redirectParams{outcome: payment.OutcomeError})
		return
	}

	res, err := h.svc.Reconcile(r.Context(), id, r.URL.Query().Get("payment_id"))
	if err != nil {
		slog.Error("failed to reconcile payment", "pending_id", id, "error", err)
		h.redirect(w, r, redirectParams{outcome: payment.OutcomeError, pendingID: id})

		return
	}

	h.redirect(w, r, paramsFor(id, res))
}

func (h *Handler) callbackFailure(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("pending_id"))
	if err != nil {
		h.redirect(w, r, redirectParams{outcome: payment.OutcomeCancelled})
		return
	}

	res, err := h.svc.Fail(r.Context(), id)
	if err != nil {
		slog.Error("failed to record cancelled payment", "pending_id", id, "error", err)
		h.redirect(w, r, redirectParams{outcome: payment.OutcomeCancelled, pendingID: id})

		return
	}

	h.redirect(w, r, paramsFor(id, res))
}

type redirectParams struct {
	outcome     payment.Outcome
	pendingID   uuid.UUID
	orderID     *uuid.UUID
	orderNumber string
}

func paramsFor(id uuid.UUID, res *payment.Result) redirectParams {
	p := redirectParams{outcome: res.Outcome, pendingID: id}

	switch {
	case res.Order != nil:
		p.orderID = &res.Order.ID
		p.orderNumber = res.Order.OrderNumber
	case res.Previous != nil:
		p.orderID = res.Previous.OrderID
		p.orderNumber = res.Previous.OrderNumber
	}

	return p
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, p redirectParams) {
	q := url.Values{"status": {string(p.outcome)}}

	if p.pendingID != uuid.Nil {
		q.Set("pending_id", p.pendingID.String())
	}

	if p.orderID != nil {
		q.Set("order_id", p.orderID.String())
	}

	if p.orderNumber != "" {
		q.Set("order_number", p.orderNumber)
	}

	http.Redirect(w, r, h.resultURL+"?"+q.Encode(), http.StatusSeeOther)
}

// webhookRequest is the gateway's invoice notification. Only the ids are
// trusted; the status is always re-read from the gateway.
type webhookRequest struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, respond.ErrMalformedBody.WithCause(err))
		return
	}

	id, err := uuid.Parse(req.ExternalID)
	if err != nil {
		respond.Error(w, r, errInvalidPendingID)
		return
	}

	res, err := h.svc.Reconcile(r.Context(), id, req.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("payment webhook handled", "pending_id", id, "provider_status", req.Status, "outcome", res.Outcome)

	respond.JSON(w, http.StatusOK, webhookResponse{Outcome: res.Outcome})
}

func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ExpireStale(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, expireResponse{Expired: n})
}
