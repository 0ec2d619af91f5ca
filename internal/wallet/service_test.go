package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

func TestLedger_Debit(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()
	orderID := uuid.New()

	type testCase struct {
		name        string
		entry       wallet.Entry
		setupMock   func(m *wallet.MockRepository, q database.Querier)
		wantErr     error
		wantBalance int64
	}

	tests := []testCase{
		{
			name: "Success",
			entry: wallet.Entry{
				UserID:    userID,
				Amount:    2500,
				Type:      wallet.TypePayment,
				Reference: &wallet.Reference{Type: wallet.RefOrder, ID: orderID},
			},
			setupMock: func(m *wallet.MockRepository, q database.Querier) {
				gomock.InOrder(
					m.EXPECT().LockWallet(gomock.Any(), q, userID).
						Return(&wallet.Wallet{ID: walletID, UserID: userID, Balance: 10000}, nil),
					m.EXPECT().UpdateBalance(gomock.Any(), q, walletID, int64(7500)).Return(nil),
					m.EXPECT().CreateTransaction(gomock.Any(), q, gomock.Any()).
						DoAndReturn(func(_ context.Context, _ database.Querier, tx *wallet.Transaction) error {
							tx.ID = uuid.New()
							return nil
						}),
				)
			},
			wantBalance: 7500,
		},
		{
			name:  "ExactBalance",
			entry: wallet.Entry{UserID: userID, Amount: 10000, Type: wallet.TypeWithdrawal},
			setupMock: func(m *wallet.MockRepository, q database.Querier) {
				m.EXPECT().LockWallet(gomock.Any(), q, userID).
					Return(&wallet.Wallet{ID: walletID, Balance: 10000}, nil)
				m.EXPECT().UpdateBalance(gomock.Any(), q, walletID, int64(0)).Return(nil)
				m.EXPECT().CreateTransaction(gomock.Any(), q, gomock.Any()).Return(nil)
			},
			wantBalance: 0,
		},
		{
			name:  "InsufficientBalance",
			entry: wallet.Entry{UserID: userID, Amount: 10001, Type: wallet.TypePayment},
			setupMock: func(m *wallet.MockRepository, q database.Querier) {
				m.EXPECT().LockWallet(gomock.Any(), q, userID).
					Return(&wallet.Wallet{ID: walletID, Balance: 10000}, nil)
			},
			wantErr: wallet.ErrInsufficientBalance,
		},
		{
			name:    "CreditTypeRejected",
			entry:   wallet.Entry{UserID: userID, Amount: 100, Type: wallet.TypeRefund},
			wantErr: wallet.ErrInvalidType,
		},
		{
			name:    "ZeroAmount",
			entry:   wallet.Entry{UserID: userID, Amount: 0, Type: wallet.TypePayment},
			wantErr: wallet.ErrInvalidAmount,
		},
		{
			name:  "DuplicateReference",
			entry: wallet.Entry{UserID: userID, Amount: 100, Type: wallet.TypePayment, Reference: &wallet.Reference{Type: wallet.RefOrder, ID: orderID}},
			setupMock: func(m *wallet.MockRepository, q database.Querier) {
				m.EXPECT().LockWallet(gomock.Any(), q, userID).
					Return(&wallet.Wallet{ID: walletID, Balance: 500}, nil)
				m.EXPECT().UpdateBalance(gomock.Any(), q, walletID, int64(400)).Return(nil)
				m.EXPECT().CreateTransaction(gomock.Any(), q, gomock.Any()).
					Return(wallet.ErrDuplicateMovement)
			},
			wantErr: wallet.ErrDuplicateMovement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := wallet.NewMockRepository(ctrl)
			q := database.NewMockTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, q)
			}

			ledger := wallet.NewLedger(repo)
			got, err := ledger.Debit(context.Background(), q, tt.entry)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, got.BalanceAfter)
			assert.Equal(t, tt.entry.Amount, got.Amount)
			assert.Equal(t, -tt.entry.Amount, got.Signed())
			assert.Equal(t, walletID, got.WalletID)
		})
	}
}

func TestLedger_Credit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := wallet.NewMockRepository(ctrl)
	q := database.NewMockTx(ctrl)
	ledger := wallet.NewLedger(repo)

	userID := uuid.New()
	walletID := uuid.New()

	var recorded *wallet.Transaction

	repo.EXPECT().LockWallet(gomock.Any(), q, userID).Return(&wallet.Wallet{ID: walletID, Balance: 0}, nil)
	repo.EXPECT().UpdateBalance(gomock.Any(), q, walletID, int64(115000)).Return(nil)
	repo.EXPECT().CreateTransaction(gomock.Any(), q, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ database.Querier, tx *wallet.Transaction) error {
			recorded = tx
			return nil
		})

	got, err := ledger.Credit(context.Background(), q, wallet.Entry{
		UserID:      userID,
		Amount:      115000,
		Type:        wallet.TypeResaleReturn,
		Description: "Resale return",
	})
	require.NoError(t, err)
	assert.Same(t, recorded, got)
	assert.Equal(t, int64(115000), got.BalanceAfter)
	assert.Equal(t, int64(115000), got.Signed())

	_, err = ledger.Credit(context.Background(), q, wallet.Entry{UserID: userID, Amount: 1, Type: wallet.TypePayment})
	assert.ErrorIs(t, err, wallet.ErrInvalidType)
}

func TestLedger_LockError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := wallet.NewMockRepository(ctrl)
	q := database.NewMockTx(ctrl)

	repo.EXPECT().LockWallet(gomock.Any(), q, gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := wallet.NewLedger(repo).Credit(context.Background(), q, wallet.Entry{
		UserID: uuid.New(), Amount: 100, Type: wallet.TypeDeposit,
	})
	assert.ErrorContains(t, err, "lock wallet")
}

func TestLedger_Balance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := wallet.NewMockRepository(ctrl)
	ledger := wallet.NewLedger(repo)
	userID := uuid.New()

	repo.EXPECT().GetWallet(gomock.Any(), userID).Return(nil, wallet.ErrNotFound)

	w, err := ledger.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, w.UserID)
	assert.Zero(t, w.Balance)
}

func TestLedger_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := wallet.NewMockRepository(ctrl)
	ledger := wallet.NewLedger(repo)
	userID := uuid.New()
	walletID := uuid.New()

	repo.EXPECT().GetWallet(gomock.Any(), userID).Return(&wallet.Wallet{ID: walletID, UserID: userID, Balance: 300}, nil)
	repo.EXPECT().ListTransactions(gomock.Any(), walletID, pagination.Request{Page: 1, PerPage: 20}).
		Return([]*wallet.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, 2, nil)

	h, err := ledger.History(context.Background(), userID, pagination.Request{})
	require.NoError(t, err)
	assert.Len(t, h.Transactions, 2)
	assert.Equal(t, 2, h.Meta.Total)
	assert.Equal(t, 1, h.Meta.TotalPages)
}

func TestLedger_Verify(t *testing.T) {
	tests := []struct {
		name           string
		balance        int64
		sum            int64
		wantConsistent bool
	}{
		{name: "Consistent", balance: 1200, sum: 1200, wantConsistent: true},
		{name: "Diverged", balance: 1200, sum: 1100, wantConsistent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := wallet.NewMockRepository(ctrl)
			userID := uuid.New()
			walletID := uuid.New()

			repo.EXPECT().GetWallet(gomock.Any(), userID).Return(&wallet.Wallet{ID: walletID, Balance: tt.balance}, nil)
			repo.EXPECT().SumTransactions(gomock.Any(), walletID).Return(tt.sum, nil)

			v, err := wallet.NewLedger(repo).Verify(context.Background(), userID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantConsistent, v.Consistent)
			assert.Equal(t, tt.sum, v.LedgerSum)
		})
	}
}
