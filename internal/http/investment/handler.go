package investment

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/http/resource"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=investment
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*investment.Investment, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*investment.Page, error)
	ListMatured(ctx context.Context, page pagination.Request) (*investment.Page, error)
	ListPaid(ctx context.Context, page pagination.Request) (*investment.Page, error)
	MarkPaid(ctx context.Context, id, adminID uuid.UUID) (*investment.Investment, error)
	SweepMatured(ctx context.Context) (int64, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.listOwn)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/matured", h.listMatured)
	r.Get("/paid", h.listPaid)
	r.Post("/sweep", h.sweep)
	r.Get("/{id}", h.get)
	r.Post("/{id}/payout", h.markPaid)
}

func investmentID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, investment.ErrNotFound
	}

	return id, nil
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
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

	respond.JSON(w, http.StatusOK, toListResponse(page))
}

func (h *Handler) listMatured(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListMatured(r.Context(), pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toListResponse(page))
}

func (h *Handler) listPaid(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListPaid(r.Context(), pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toListResponse(page))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := investmentID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.NewInvestment(inv))
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	admin, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := investmentID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.MarkPaid(r.Context(), id, admin.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.NewInvestment(inv))
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.SweepMatured(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, sweepResponse{Matured: n})
}
