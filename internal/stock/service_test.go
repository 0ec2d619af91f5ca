package stock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/stock"
)

func TestService_Reserve(t *testing.T) {
	productID := uuid.New()

	type testCase struct {
		name      string
		qty       int
		setupMock func(m *stock.MockRepository, q database.Querier)
		wantErr   bool
		wantShort *stock.InsufficientError
	}

	tests := []testCase{
		{
			name: "Reserved",
			qty:  2,
			setupMock: func(m *stock.MockRepository, q database.Querier) {
				m.EXPECT().Decrement(gomock.Any(), q, productID, 2).Return(true, nil)
			},
		},
		{
			name: "OutOfStock",
			qty:  1,
			setupMock: func(m *stock.MockRepository, q database.Querier) {
				m.EXPECT().Decrement(gomock.Any(), q, productID, 1).Return(false, nil)
				m.EXPECT().Quantity(gomock.Any(), q, productID).Return(0, nil)
			},
			wantErr:   true,
			wantShort: &stock.InsufficientError{ProductID: productID, Requested: 1, Available: 0},
		},
		{
			name: "ExceedsStock",
			qty:  5,
			setupMock: func(m *stock.MockRepository, q database.Querier) {
				m.EXPECT().Decrement(gomock.Any(), q, productID, 5).Return(false, nil)
				m.EXPECT().Quantity(gomock.Any(), q, productID).Return(3, nil)
			},
			wantErr:   true,
			wantShort: &stock.InsufficientError{ProductID: productID, Requested: 5, Available: 3},
		},
		{
			name: "RepoError",
			qty:  1,
			setupMock: func(m *stock.MockRepository, q database.Querier) {
				m.EXPECT().Decrement(gomock.Any(), q, productID, 1).Return(false, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name:    "ZeroQuantity",
			qty:     0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := stock.NewMockRepository(ctrl)
			q := database.NewMockTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, q)
			}

			err := stock.NewService(repo).Reserve(context.Background(), q, productID, tt.qty)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			if tt.wantShort != nil {
				var short *stock.InsufficientError
				require.ErrorAs(t, err, &short)
				assert.Equal(t, tt.wantShort, short)
			}
		})
	}
}

func TestService_Release(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := stock.NewMockRepository(ctrl)
	q := database.NewMockTx(ctrl)
	productID := uuid.New()

	repo.EXPECT().Increment(gomock.Any(), q, productID, 4).Return(nil)

	svc := stock.NewService(repo)
	require.NoError(t, svc.Release(context.Background(), q, productID, 4))
	assert.ErrorIs(t, svc.Release(context.Background(), q, productID, -1), stock.ErrInvalidQuantity)
}
