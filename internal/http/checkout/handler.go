package checkout

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=checkout
type Service interface {
	Quote(ctx context.Context, req *checkout.Request) (*checkout.Quote, error)
	Checkout(ctx context.Context, req *checkout.Request) (*checkout.Result, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.checkout)
	r.Post("/quote", h.quote)
}

func (h *Handler) decode(r *http.Request) (*checkout.Request, error) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		return nil, err
	}

	var req checkout.Request
	if err := respond.Decode(r, &req); err != nil {
		return nil, err
	}

	req.UserID = p.UserID

	return &req, nil
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toCheckoutResponse(res))
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q, err := h.svc.Quote(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toQuoteResponse(q))
}
