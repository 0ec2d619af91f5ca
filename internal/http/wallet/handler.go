package wallet

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/http/resource"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=wallet
type Ledger interface {
	Balance(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)
	History(ctx context.Context, userID uuid.UUID, page pagination.Request) (*wallet.History, error)
	Verify(ctx context.Context, userID uuid.UUID) (*wallet.Verification, error)
}

type Deposits interface {
	ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*deposit.Page, error)
}

var errInvalidUserID = apperr.New(apperr.KindValidation, "INVALID_USER_ID", "user id must be a UUID")

type Handler struct {
	ledger   Ledger
	deposits Deposits
}

func NewHandler(ledger Ledger, deposits Deposits) *Handler {
	return &Handler{ledger: ledger, deposits: deposits}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.balance)
	r.Get("/transactions", h.history)
	r.Get("/deposits", h.listDeposits)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/{userID}/verify", h.verify)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	wal, err := h.ledger.Balance(r.Context(), p.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toWalletResponse(wal))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	hist, err := h.ledger.History(r.Context(), p.UserID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, historyResponse{
		Balance: hist.Wallet.Balance,
		Page: resource.Page[transactionResponse]{
			Data: toTransactionResponses(hist.Transactions),
			Meta: hist.Meta,
		},
	})
}

func (h *Handler) listDeposits(w http.ResponseWriter, r *http.Request) {
	p, err := auth.MustFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.deposits.ListForUser(r.Context(), p.UserID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resource.Page[depositResponse]{
		Data: toDepositResponses(page.Deposits),
		Meta: page.Meta,
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, r, errInvalidUserID)
		return
	}

	v, err := h.ledger.Verify(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, verificationResponse{
		UserID:     v.UserID,
		Balance:    v.Balance,
		LedgerSum:  v.LedgerSum,
		Consistent: v.Consistent,
	})
}
