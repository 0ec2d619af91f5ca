package wallet_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	handler "github.com/MrJamesThe3rd/marketvest/internal/http/wallet"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

type fixture struct {
	ledger   *handler.MockLedger
	deposits *handler.MockDeposits
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		ledger:   handler.NewMockLedger(ctrl),
		deposits: handler.NewMockDeposits(ctrl),
	}

	h := handler.NewHandler(f.ledger, f.deposits)
	f.router = chi.NewRouter()
	f.router.Route("/wallet", h.Routes)
	f.router.Route("/admin/wallets", h.AdminRoutes)

	return f
}

func (f *fixture) get(userID uuid.UUID, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: userID}))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Balance(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.ledger.EXPECT().Balance(gomock.Any(), userID).Return(&wallet.Wallet{UserID: userID, Balance: 25000}, nil)

	rec := f.get(userID, "/wallet")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"balance":25000}`, rec.Body.String())
}

func TestHandler_History(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	orderID := uuid.New()
	page := pagination.Request{Page: 1, PerPage: 20}

	f.ledger.EXPECT().History(gomock.Any(), userID, page).Return(&wallet.History{
		Wallet: &wallet.Wallet{Balance: 0},
		Transactions: []*wallet.Transaction{
			{ID: uuid.New(), Type: wallet.TypePayment, Amount: 100000, BalanceAfter: 0, Reference: &wallet.Reference{Type: wallet.RefOrder, ID: orderID}},
			{ID: uuid.New(), Type: wallet.TypeDeposit, Amount: 100000, BalanceAfter: 100000},
		},
		Meta: pagination.NewMeta(page, 2),
	}, nil)

	rec := f.get(userID, "/wallet/transactions")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Balance int64 `json:"balance"`
		Data    []struct {
			Type         string `json:"type"`
			BalanceAfter int64  `json:"balance_after"`
			Reference    *struct {
				ID uuid.UUID `json:"id"`
			} `json:"reference"`
		} `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

	require.Len(t, got.Data, 2)
	assert.Equal(t, "payment", got.Data[0].Type)
	assert.Equal(t, orderID, got.Data[0].Reference.ID)
	assert.Nil(t, got.Data[1].Reference)
	assert.Equal(t, 2, got.Meta.Total)
}

func TestHandler_Deposits(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.deposits.EXPECT().ListForUser(gomock.Any(), userID, gomock.Any()).Return(&deposit.Page{
		Deposits: []*deposit.Deposit{{ID: uuid.New(), Amount: 150000, RawDescription: "TRF MV-7F3A", Date: time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)}},
	}, nil)

	rec := f.get(userID, "/wallet/deposits")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2026-01-09"`)
}

func TestHandler_Verify(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.ledger.EXPECT().Verify(gomock.Any(), userID).
		Return(&wallet.Verification{UserID: userID, Balance: 500, LedgerSum: 400, Consistent: false}, nil)

	rec := f.get(uuid.New(), "/admin/wallets/"+userID.String()+"/verify")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"consistent":false`)

	rec = f.get(uuid.New(), "/admin/wallets/not-a-uuid/verify")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
