package investment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func TestService_Open(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := investment.NewMockRepository(ctrl)
	q := database.NewMockTx(ctrl)
	svc := investment.NewService(repo)

	plan, err := resale.NewSnapshot(6, decimal.RequireFromString("15"), "6 months / 15%")
	require.NoError(t, err)

	at := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	repo.EXPECT().CreateInvestment(gomock.Any(), q, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ database.Querier, inv *investment.Investment) error {
			inv.ID = uuid.New()
			return nil
		})

	inv, err := svc.Open(context.Background(), q, investment.OpenParams{
		UserID:      uuid.New(),
		OrderID:     uuid.New(),
		OrderItemID: uuid.New(),
		ProductID:   uuid.New(),
		Invested:    100000,
		Plan:        plan,
		At:          at,
	})
	require.NoError(t, err)

	assert.Equal(t, investment.StatusPending, inv.Status)
	assert.Equal(t, int64(100000), inv.InvestedAmount)
	assert.Equal(t, int64(15000), inv.ProfitAmount)
	assert.Equal(t, int64(115000), inv.ExpectedReturn)
	assert.Equal(t, inv.InvestedAmount+inv.ProfitAmount, inv.ExpectedReturn)
	assert.Equal(t, at.AddDate(0, 6, 0), inv.MaturityDate)
	assert.Equal(t, plan, inv.Plan)
}

func TestService_SweepMatured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := investment.NewMockRepository(ctrl)
	svc := investment.NewService(repo).WithClock(func() time.Time { return fixedNow })

	gomock.InOrder(
		repo.EXPECT().MarkMatured(gomock.Any(), fixedNow).Return(int64(3), nil),
		repo.EXPECT().MarkMatured(gomock.Any(), fixedNow).Return(int64(0), nil),
	)

	n, err := svc.SweepMatured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = svc.SweepMatured(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_MarkPaid(t *testing.T) {
	id := uuid.New()
	adminID := uuid.New()
	paidAt := fixedNow

	type testCase struct {
		name      string
		setupMock func(m *investment.MockRepository)
		wantErr   bool
		wantIs    error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *investment.MockRepository) {
				m.EXPECT().MarkPaidOut(gomock.Any(), id, adminID, fixedNow).Return(true, nil)
				m.EXPECT().GetInvestment(gomock.Any(), id).Return(&investment.Investment{
					ID: id, Status: investment.StatusPaidOut, PaidOutAt: &paidAt, PaidBy: &adminID, ExpectedReturn: 115000,
				}, nil)
			},
		},
		{
			name: "AlreadyPaid",
			setupMock: func(m *investment.MockRepository) {
				m.EXPECT().MarkPaidOut(gomock.Any(), id, adminID, fixedNow).Return(false, nil)
				m.EXPECT().GetInvestment(gomock.Any(), id).Return(&investment.Investment{
					ID: id, Status: investment.StatusPaidOut, PaidOutAt: &paidAt,
				}, nil)
			},
			wantErr: true,
			wantIs:  investment.ErrAlreadyPaidOut,
		},
		{
			name: "StillActive",
			setupMock: func(m *investment.MockRepository) {
				m.EXPECT().MarkPaidOut(gomock.Any(), id, adminID, fixedNow).Return(false, nil)
				m.EXPECT().GetInvestment(gomock.Any(), id).Return(&investment.Investment{
					ID: id, Status: investment.StatusActive,
				}, nil)
			},
			wantErr: true,
			wantIs:  investment.ErrNotMatured,
		},
		{
			name: "NotFound",
			setupMock: func(m *investment.MockRepository) {
				m.EXPECT().MarkPaidOut(gomock.Any(), id, adminID, fixedNow).Return(false, nil)
				m.EXPECT().GetInvestment(gomock.Any(), id).Return(nil, investment.ErrNotFound)
			},
			wantErr: true,
			wantIs:  investment.ErrNotFound,
		},
		{
			name: "RepoError",
			setupMock: func(m *investment.MockRepository) {
				m.EXPECT().MarkPaidOut(gomock.Any(), id, adminID, fixedNow).Return(false, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := investment.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := investment.NewService(repo).WithClock(func() time.Time { return fixedNow })
			got, err := svc.MarkPaid(context.Background(), id, adminID)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, investment.StatusPaidOut, got.Status)
			assert.Equal(t, &adminID, got.PaidBy)
		})
	}
}

func TestService_ListMatured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := investment.NewMockRepository(ctrl)
	svc := investment.NewService(repo)

	filter := investment.ListFilter{Status: new(investment.StatusMatured)}
	page := pagination.Request{Page: 2, PerPage: 1}

	repo.EXPECT().ListInvestments(gomock.Any(), filter, page).
		Return([]*investment.Investment{{ID: uuid.New()}}, 3, nil)
	repo.EXPECT().Summarize(gomock.Any(), filter).
		Return(&investment.Summary{Count: 3, TotalExpected: 345000}, nil)

	got, err := svc.ListMatured(context.Background(), page)
	require.NoError(t, err)
	assert.Len(t, got.Investments, 1)
	assert.Equal(t, pagination.Meta{Page: 2, PerPage: 1, Total: 3, TotalPages: 3}, got.Meta)
	require.NotNil(t, got.Summary)
	assert.Equal(t, int64(345000), got.Summary.TotalExpected)
}

func TestService_ListPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := investment.NewMockRepository(ctrl)
	svc := investment.NewService(repo)

	repo.EXPECT().ListInvestments(gomock.Any(), investment.ListFilter{Status: new(investment.StatusPaidOut)}, gomock.Any()).
		Return(nil, 0, nil)

	got, err := svc.ListPaid(context.Background(), pagination.Request{})
	require.NoError(t, err)
	assert.Empty(t, got.Investments)
	assert.Nil(t, got.Summary)
}

func TestService_ActivateAndCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := investment.NewMockRepository(ctrl)
	q := database.NewMockTx(ctrl)
	svc := investment.NewService(repo)
	orderID := uuid.New()

	repo.EXPECT().ActivateForOrder(gomock.Any(), q, orderID).Return(int64(2), nil)
	repo.EXPECT().LockForOrder(gomock.Any(), q, orderID).
		Return([]investment.Status{investment.StatusActive, investment.StatusActive}, nil)
	repo.EXPECT().CancelForOrder(gomock.Any(), q, orderID).Return(int64(2), nil)

	n, err := svc.Activate(context.Background(), q, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.CancelForOrder(context.Background(), q, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestService_CancelForOrder(t *testing.T) {
	orderID := uuid.New()

	type testCase struct {
		name     string
		statuses []investment.Status
		lockErr  error
		wantN    int64
		wantErr  error
	}

	tests := []testCase{
		{name: "NoInvestments"},
		{name: "ActiveCancelled", statuses: []investment.Status{investment.StatusActive, investment.StatusPending}, wantN: 2},
		{name: "AlreadyCancelledIgnored", statuses: []investment.Status{investment.StatusCancelled}},
		{name: "MaturedRefused", statuses: []investment.Status{investment.StatusActive, investment.StatusMatured}, wantErr: investment.ErrMatured},
		{name: "PaidOutRefused", statuses: []investment.Status{investment.StatusPaidOut}, wantErr: investment.ErrMatured},
		{name: "LockFails", lockErr: errors.New("conn reset"), wantErr: errors.New("conn reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := investment.NewMockRepository(ctrl)
			q := database.NewMockTx(ctrl)
			svc := investment.NewService(repo)

			repo.EXPECT().LockForOrder(gomock.Any(), q, orderID).Return(tt.statuses, tt.lockErr)

			if tt.wantErr == nil {
				repo.EXPECT().CancelForOrder(gomock.Any(), q, orderID).Return(tt.wantN, nil)
			}

			n, err := svc.CancelForOrder(context.Background(), q, orderID)

			if tt.wantErr != nil {
				assert.ErrorContains(t, err, tt.wantErr.Error())
				assert.Zero(t, n)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantN, n)
		})
	}
}
