package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/checkout"
	handler "github.com/MrJamesThe3rd/marketvest/internal/http/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
)

func serve(t *testing.T, svc handler.Service, principal *auth.Principal, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	handler.NewHandler(svc).Routes(r)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *principal))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Checkout(t *testing.T) {
	customer := &auth.Principal{UserID: uuid.New(), Role: auth.RoleCustomer}
	productID := uuid.New()
	companyID := uuid.New()
	planID := uuid.New()

	body := `{"items":[{"product_id":"` + productID.String() + `","quantity":1,"purchase_type":"resale",` +
		`"company_id":"` + companyID.String() + `","resale_plan_id":"` + planID.String() + `"}]}`

	type testCase struct {
		name       string
		principal  *auth.Principal
		body       string
		setupMock  func(svc *handler.MockService)
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{
			name:      "Placed",
			principal: customer,
			body:      body,
			setupMock: func(svc *handler.MockService) {
				svc.EXPECT().Checkout(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req *checkout.Request) (*checkout.Result, error) {
						assert.Equal(t, customer.UserID, req.UserID)
						require.Len(t, req.Items, 1)
						assert.Equal(t, &planID, req.Items[0].ResalePlanID)

						return &checkout.Result{
							Order: &order.Order{ID: uuid.New(), OrderNumber: "ORD-20261015-0A1B2C3D", Type: order.TypeResale, Status: order.StatusInvested, TotalAmount: 100000},
							Investments: []*investment.Investment{
								{ID: uuid.New(), InvestedAmount: 100000, ProfitAmount: 15000, ExpectedReturn: 115000, Status: investment.StatusActive},
							},
						}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:      "Out Of Stock",
			principal: customer,
			body:      body,
			setupMock: func(svc *handler.MockService) {
				svc.EXPECT().Checkout(gomock.Any(), gomock.Any()).Return(nil, checkout.ErrOutOfStock)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "OUT_OF_STOCK",
		},
		{
			name:       "Unknown Field",
			principal:  customer,
			body:       `{"items":[],"coupon":"FREE"}`,
			setupMock:  func(svc *handler.MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "MALFORMED_BODY",
		},
		{
			name:       "Anonymous",
			body:       body,
			setupMock:  func(svc *handler.MockService) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := handler.NewMockService(ctrl)
			tt.setupMock(svc)

			rec := serve(t, svc, tt.principal, "/", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				var got respond.ErrorBody
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.wantCode, got.Code)

				return
			}

			var got struct {
				Order struct {
					OrderNumber string `json:"order_number"`
					Status      string `json:"status"`
				} `json:"order"`
				Investments []struct {
					ExpectedReturn int64 `json:"expected_return"`
					ProfitAmount   int64 `json:"profit_amount"`
				} `json:"investments"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			assert.Equal(t, "ORD-20261015-0A1B2C3D", got.Order.OrderNumber)
			assert.Equal(t, "invested", got.Order.Status)
			require.Len(t, got.Investments, 1)
			assert.Equal(t, int64(115000), got.Investments[0].ExpectedReturn)
			assert.Equal(t, int64(15000), got.Investments[0].ProfitAmount)
		})
	}
}

func TestHandler_Quote(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := handler.NewMockService(ctrl)
	customer := &auth.Principal{UserID: uuid.New()}

	svc.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(nil, checkout.ErrValidation.WithMessage("items: is required"))

	rec := serve(t, svc, customer, "/quote", `{"items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got respond.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "VALIDATION_FAILED", got.Code)
	assert.Equal(t, "items: is required", got.Message)
}
