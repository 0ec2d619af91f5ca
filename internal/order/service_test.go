package order_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

type mocks struct {
	repo        *order.MockRepository
	tx          *database.MockTx
	beginner    *database.MockBeginner
	refunder    *order.MockRefunder
	stock       *order.MockStockReleaser
	investments *order.MockInvestmentCanceller
}

func newMocks(ctrl *gomock.Controller) *mocks {
	return &mocks{
		repo:        order.NewMockRepository(ctrl),
		tx:          database.NewMockTx(ctrl),
		beginner:    database.NewMockBeginner(ctrl),
		refunder:    order.NewMockRefunder(ctrl),
		stock:       order.NewMockStockReleaser(ctrl),
		investments: order.NewMockInvestmentCanceller(ctrl),
	}
}

func (m *mocks) service() *order.Service {
	return order.NewService(m.repo, m.beginner, m.refunder, m.stock, m.investments)
}

func (m *mocks) expectTx(commit bool) {
	m.beginner.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	if commit {
		m.tx.EXPECT().Commit().Return(nil)
	}
	m.tx.EXPECT().Rollback().Return(nil)
}

func TestService_Cancel(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	mixed := func(status order.Status) *order.Order {
		return &order.Order{
			ID:          orderID,
			UserID:      userID,
			OrderNumber: "ORD-20261015-AAAA0001",
			Type:        order.TypeMixed,
			Status:      status,
			TotalAmount: 6000,
			Items: []*order.Item{
				{ProductID: productID, Quantity: 2, PurchaseType: order.PurchaseWallet},
				{ProductID: uuid.New(), Quantity: 1, PurchaseType: order.PurchaseResale},
			},
		}
	}

	type testCase struct {
		name      string
		userID    uuid.UUID
		setupMock func(m *mocks)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "PendingRefundsAndReleases",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(true)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusPending), nil)
				m.repo.EXPECT().UpdateStatus(gomock.Any(), m.tx, orderID, order.StatusCancelled).Return(nil)
				m.refunder.EXPECT().Credit(gomock.Any(), m.tx, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ database.Querier, e wallet.Entry) (*wallet.Transaction, error) {
						assert.Equal(t, int64(6000), e.Amount)
						assert.Equal(t, wallet.TypeRefund, e.Type)
						assert.Equal(t, userID, e.UserID)
						require.NotNil(t, e.Reference)
						assert.Equal(t, orderID, e.Reference.ID)

						return &wallet.Transaction{}, nil
					})
				m.stock.EXPECT().Release(gomock.Any(), m.tx, productID, 2).Return(nil)
				m.investments.EXPECT().CancelForOrder(gomock.Any(), m.tx, orderID).Return(int64(1), nil)
			},
		},
		{
			name:   "ConfirmedIsCancellable",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(true)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusConfirmed), nil)
				m.repo.EXPECT().UpdateStatus(gomock.Any(), m.tx, orderID, order.StatusCancelled).Return(nil)
				m.refunder.EXPECT().Credit(gomock.Any(), m.tx, gomock.Any()).Return(&wallet.Transaction{}, nil)
				m.stock.EXPECT().Release(gomock.Any(), m.tx, productID, 2).Return(nil)
				m.investments.EXPECT().CancelForOrder(gomock.Any(), m.tx, orderID).Return(int64(0), nil)
			},
		},
		{
			name:   "ShippedNotCancellable",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusShipped), nil)
			},
			wantErr: order.ErrNotCancellable,
		},
		{
			name:   "AlreadyCancelled",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusCancelled), nil)
			},
			wantErr: order.ErrNotCancellable,
		},
		{
			name:   "OtherUsersOrder",
			userID: uuid.New(),
			setupMock: func(m *mocks) {
				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusPending), nil)
			},
			wantErr: order.ErrNotFound,
		},
		{
			name:   "NotFound",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(nil, order.ErrNotFound)
			},
			wantErr: order.ErrNotFound,
		},
		{
			name:   "RefundFailureRollsBack",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusPending), nil)
				m.repo.EXPECT().UpdateStatus(gomock.Any(), m.tx, orderID, order.StatusCancelled).Return(nil)
				m.investments.EXPECT().CancelForOrder(gomock.Any(), m.tx, orderID).Return(int64(1), nil)
				m.refunder.EXPECT().Credit(gomock.Any(), m.tx, gomock.Any()).Return(nil, wallet.ErrDuplicateMovement)
			},
			wantErr: wallet.ErrDuplicateMovement,
		},
		{
			name:   "SettledResaleNotRefunded",
			userID: userID,
			setupMock: func(m *mocks) {
				o := mixed(order.StatusPending)
				o.ResaleReturned = true
				o.ResaleExpectedReturn = 4600

				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(o, nil)
			},
			wantErr: order.ErrResaleSettled,
		},
		{
			name:   "MaturedInvestmentNotRefunded",
			userID: userID,
			setupMock: func(m *mocks) {
				m.expectTx(false)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).Return(mixed(order.StatusConfirmed), nil)
				m.investments.EXPECT().CancelForOrder(gomock.Any(), m.tx, orderID).Return(int64(0), investment.ErrMatured)
			},
			wantErr: investment.ErrMatured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			tt.setupMock(m)

			got, err := m.service().Cancel(context.Background(), tt.userID, orderID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, order.StatusCancelled, got.Status)
		})
	}
}

func TestService_Transition(t *testing.T) {
	orderID := uuid.New()

	type testCase struct {
		name      string
		current   order.Status
		next      order.Status
		lock      bool
		wantErr   error
		wantWrite bool
	}

	tests := []testCase{
		{name: "PendingToConfirmed", current: order.StatusPending, next: order.StatusConfirmed, lock: true, wantWrite: true},
		{name: "ConfirmedToProcessing", current: order.StatusConfirmed, next: order.StatusProcessing, lock: true, wantWrite: true},
		{name: "ShippedToDelivered", current: order.StatusShipped, next: order.StatusDelivered, lock: true, wantWrite: true},
		{name: "PendingToShipped", current: order.StatusPending, next: order.StatusShipped, lock: true, wantErr: order.ErrInvalidTransition},
		{name: "InvestedIsTerminal", current: order.StatusInvested, next: order.StatusProcessing, lock: true, wantErr: order.ErrInvalidTransition},
		{name: "CancelRejected", current: order.StatusPending, next: order.StatusCancelled, wantErr: order.ErrInvalidStatus},
		{name: "UnknownStatus", current: order.StatusPending, next: order.Status("lost"), wantErr: order.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)

			if tt.lock {
				m.expectTx(tt.wantWrite)
				m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).
					Return(&order.Order{ID: orderID, Status: tt.current}, nil)

				if tt.wantWrite {
					m.repo.EXPECT().UpdateStatus(gomock.Any(), m.tx, orderID, tt.next).Return(nil)
				}
			}

			got, err := m.service().Transition(context.Background(), orderID, tt.next)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.next, got.Status)
		})
	}
}

func TestService_ForceStatus(t *testing.T) {
	orderID := uuid.New()

	t.Run("NeverTouchesWalletOrStock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl)
		m.expectTx(true)
		m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).
			Return(&order.Order{ID: orderID, Status: order.StatusPending, TotalAmount: 5000}, nil)
		m.repo.EXPECT().UpdateStatus(gomock.Any(), m.tx, orderID, order.StatusCancelled).Return(nil)

		got, err := m.service().ForceStatus(context.Background(), orderID, order.StatusCancelled)

		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status)
	})

	t.Run("BackwardsAllowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl)
		m.expectTx(true)
		m.repo.EXPECT().LockOrder(gomock.Any(), m.tx, orderID).
			Return(&order.Order{ID: orderID, Status: order.StatusInvested}, nil)
		m.repo.EXPECT().UpdateStatus(gomock.Any(), m.tx, orderID, order.StatusPending).Return(nil)

		got, err := m.service().ForceStatus(context.Background(), orderID, order.StatusPending)

		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, got.Status)
	})

	t.Run("ShippedNotForceable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl)

		_, err := m.service().ForceStatus(context.Background(), orderID, order.StatusShipped)
		assert.ErrorIs(t, err, order.ErrInvalidStatus)
	})
}

func TestService_Create(t *testing.T) {
	numberPattern := regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`)

	t.Run("RetriesTakenNumber", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl)
		orderID := uuid.New()
		o := &order.Order{Items: []*order.Item{{ProductID: uuid.New(), Quantity: 1}}}

		gomock.InOrder(
			m.repo.EXPECT().CreateOrder(gomock.Any(), m.tx, o).Return(false, nil),
			m.repo.EXPECT().CreateOrder(gomock.Any(), m.tx, o).
				DoAndReturn(func(_ context.Context, _ database.Querier, o *order.Order) (bool, error) {
					o.ID = orderID
					return true, nil
				}),
			m.repo.EXPECT().CreateItem(gomock.Any(), m.tx, gomock.Any()).Return(nil),
		)

		err := m.service().Create(context.Background(), m.tx, o)

		require.NoError(t, err)
		assert.Regexp(t, numberPattern, o.OrderNumber)
		assert.Equal(t, orderID, o.Items[0].OrderID)
	})

	t.Run("GivesUp", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl)
		m.repo.EXPECT().CreateOrder(gomock.Any(), m.tx, gomock.Any()).Return(false, nil).Times(5)

		err := m.service().Create(context.Background(), m.tx, &order.Order{})
		assert.Error(t, err)
	})

	t.Run("StoreError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl)
		m.repo.EXPECT().CreateOrder(gomock.Any(), m.tx, gomock.Any()).Return(false, errors.New("boom"))

		err := m.service().Create(context.Background(), m.tx, &order.Order{})
		assert.Error(t, err)
	})
}

func TestService_GetForUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	owner := uuid.New()
	orderID := uuid.New()

	m.repo.EXPECT().GetOrder(gomock.Any(), orderID).Return(&order.Order{ID: orderID, UserID: owner}, nil).Times(2)

	got, err := m.service().GetForUser(context.Background(), owner, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID)

	_, err = m.service().GetForUser(context.Background(), uuid.New(), orderID)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestService_ListForUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	userID := uuid.New()

	m.repo.EXPECT().ListOrders(gomock.Any(), userID, pagination.Request{Page: 2, PerPage: 20}).
		Return([]*order.Order{{ID: uuid.New()}}, 21, nil)

	got, err := m.service().ListForUser(context.Background(), userID, pagination.Request{Page: 2})

	require.NoError(t, err)
	assert.Len(t, got.Orders, 1)
	assert.Equal(t, 2, got.Meta.TotalPages)
}

func TestClassifyType(t *testing.T) {
	sale := &order.Item{PurchaseType: order.PurchaseWallet}
	plan := &order.Item{PurchaseType: order.PurchaseResale}

	assert.Equal(t, order.TypeSale, order.ClassifyType([]*order.Item{sale, sale}))
	assert.Equal(t, order.TypeResale, order.ClassifyType([]*order.Item{plan}))
	assert.Equal(t, order.TypeMixed, order.ClassifyType([]*order.Item{plan, sale}))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, order.StatusInvested, order.InitialStatus(order.TypeResale))
	assert.Equal(t, order.StatusPending, order.InitialStatus(order.TypeMixed))
	assert.Equal(t, order.StatusPending, order.InitialStatus(order.TypeSale))
}

func TestNewNumber(t *testing.T) {
	at := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)

	n := order.NewNumber(at)

	assert.Regexp(t, `^ORD-20260309-[0-9A-F]{8}$`, n)
	assert.NotEqual(t, n, order.NewNumber(at))
}
