package order

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/http/resource"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=order
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*order.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*order.Page, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*order.Order, error)
	Transition(ctx context.Context, id uuid.UUID, next order.Status) (*order.Order, error)
	ForceStatus(ctx context.Context, id uuid.UUID, next order.Status) (*order.Order, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/cancel", h.cancel)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/{id}", h.adminGet)
	r.Patch("/{id}/status", h.forceStatus)
	r.Post("/{id}/transition", h.transition)
}

func orderID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, order.ErrNotFound
	}

	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.svc.ListForUser(r.Context(), p.UserID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.Page[resource.Order]{
		Data: resource.NewOrders(page.Orders),
		Meta: page.Meta,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := orderID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.GetForUser(r.Context(), p.UserID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.NewOrder(o))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := orderID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.Cancel(r.Context(), p.UserID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.NewOrder(o))
}

func (h *Handler) adminGet(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.NewOrder(o))
}

type statusRequest struct {
	Status order.Status `json:"status"`
}

func (h *Handler) forceStatus(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.svc.ForceStatus)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.svc.Transition)
}

func (h *Handler) setStatus(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, uuid.UUID, order.Status) (*order.Order, error),
) {
	id, err := orderID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req statusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := apply(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.NewOrder(o))
}
