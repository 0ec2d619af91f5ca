package matching

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/matching"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=matching
type Service interface {
	Suggest(ctx context.Context, rawDescription string) (uuid.UUID, bool, error)
	Learn(ctx context.Context, rawPattern string, userID uuid.UUID) (*matching.Mapping, error)
	List(ctx context.Context) ([]matching.Mapping, error)
	Forget(ctx context.Context, id uuid.UUID) error
}

var errMissingDescription = apperr.New(apperr.KindValidation, "MISSING_DESCRIPTION", "raw_description query parameter is required")

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Get("/suggest", h.suggest)
	r.Delete("/{id}", h.forget)
}

type mappingResponse struct {
	ID         uuid.UUID `json:"id"`
	RawPattern string    `json:"raw_pattern"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMappingResponse(m *matching.Mapping) mappingResponse {
	return mappingResponse{ID: m.ID, RawPattern: m.RawPattern, UserID: m.UserID, CreatedAt: m.CreatedAt}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]mappingResponse, len(mappings))
	for i := range mappings {
		resp[i] = toMappingResponse(&mappings[i])
	}

	respond.JSON(w, http.StatusOK, resp)
}

type suggestResponse struct {
	RawDescription string     `json:"raw_description"`
	UserID         *uuid.UUID `json:"user_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.Error(w, r, errMissingDescription)
		return
	}

	userID, found, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := suggestResponse{RawDescription: rawDesc}
	if found {
		resp.UserID = &userID
	}

	respond.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	RawPattern string    `json:"raw_pattern"`
	UserID     uuid.UUID `json:"user_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.UserID == uuid.Nil {
		respond.Error(w, r, matching.ErrUnknownUser)
		return
	}

	m, err := h.svc.Learn(r.Context(), req.RawPattern, req.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toMappingResponse(m))
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, matching.ErrNotFound)
		return
	}

	if err := h.svc.Forget(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
