package deposit

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=deposit
type Service interface {
	Import(ctx context.Context, bank statement.Bank, r io.Reader) (*deposit.Result, error)
}

const maxStatementSize = 10 << 20

var errMissingFile = apperr.New(apperr.KindValidation, "MISSING_FILE", "file field is required")

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importStatement)
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStatementSize)

	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		respond.Error(w, r, respond.ErrMalformedBody.WithMessage("failed to parse form: %v", err))
		return
	}

	bank := statement.Bank(r.FormValue("bank"))
	if bank == "" {
		bank = statement.BankCGD
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, errMissingFile)
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), bank, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if len(res.Credited) > 0 {
		status = http.StatusCreated
	}

	respond.JSON(w, status, toImportResponse(res))
}
