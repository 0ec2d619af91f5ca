package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/export"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=export
type Service interface {
	Statement(ctx context.Context, userID uuid.UUID, filter export.Filter, w io.Writer) (*export.Summary, error)
}

const dateLayout = "2006-01-02"

var (
	errInvalidUserID = apperr.New(apperr.KindValidation, "INVALID_USER_ID", "user id must be a UUID")
	errInvalidDate   = apperr.New(apperr.KindValidation, "INVALID_DATE", "dates must be formatted as YYYY-MM-DD")
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes serve the caller's own statement.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.own)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/{userID}/export", h.forUser)
}

func (h *Handler) own(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.statement(w, r, p.UserID)
}

func (h *Handler) forUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, r, errInvalidUserID)
		return
	}

	h.statement(w, r, userID)
}

// statement reads from (inclusive) and to (inclusive) as calendar dates.
func (h *Handler) statement(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"wallet_%s.csv\"", time.Now().Format("20060102")))

	sum, err := h.svc.Statement(r.Context(), userID, filter, w)
	if err != nil {
		// Headers may already be on the wire; log instead of rewriting the response.
		slog.Error("failed to write statement", "user_id", userID, "error", err)
		return
	}

	slog.Info("statement exported", "user_id", userID, "rows", sum.Rows)
}

func parseFilter(r *http.Request) (export.Filter, error) {
	var f export.Filter

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, errInvalidDate
		}

		f.From = t
	}

	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, errInvalidDate
		}

		f.To = t.AddDate(0, 0, 1)
	}

	return f, nil
}
