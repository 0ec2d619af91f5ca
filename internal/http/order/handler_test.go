package order_test

import (
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
	handler "github.com/MrJamesThe3rd/marketvest/internal/http/order"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

var customer = auth.Principal{UserID: uuid.New(), Role: auth.RoleCustomer}

func do(svc handler.Service, method, path, body string) *httptest.ResponseRecorder {
	h := handler.NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/orders", h.Routes)
	r.Route("/admin/orders", h.AdminRoutes)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(req.Context(), customer))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body respond.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body.Code
}

func TestHandler_Cancel(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		path       string
		setupMock  func(svc *handler.MockService)
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{
			name: "Cancelled",
			path: "/orders/" + id.String() + "/cancel",
			setupMock: func(svc *handler.MockService) {
				svc.EXPECT().Cancel(gomock.Any(), customer.UserID, id).
					Return(&order.Order{ID: id, OrderNumber: "ORD-1", Status: order.StatusCancelled}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Too Late",
			path: "/orders/" + id.String() + "/cancel",
			setupMock: func(svc *handler.MockService) {
				svc.EXPECT().Cancel(gomock.Any(), customer.UserID, id).Return(nil, order.ErrNotCancellable)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "ORDER_NOT_CANCELLABLE",
		},
		{
			name:       "Malformed ID",
			path:       "/orders/abc/cancel",
			setupMock:  func(svc *handler.MockService) {},
			wantStatus: http.StatusNotFound,
			wantCode:   "ORDER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := handler.NewMockService(ctrl)
			tt.setupMock(svc)

			rec := do(svc, http.MethodPost, tt.path, "")
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
				return
			}

			var got struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "cancelled", got.Status)
		})
	}
}

func TestHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := handler.NewMockService(ctrl)

	svc.EXPECT().ListForUser(gomock.Any(), customer.UserID, pagination.Request{Page: 2, PerPage: 10}).
		Return(&order.Page{
			Orders: []*order.Order{{ID: uuid.New(), OrderNumber: "ORD-2"}},
			Meta:   pagination.NewMeta(pagination.Request{Page: 2, PerPage: 10}, 11),
		}, nil)

	rec := do(svc, http.MethodGet, "/orders?page=2&per_page=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data []struct {
			OrderNumber string `json:"order_number"`
		} `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

	require.Len(t, got.Data, 1)
	assert.Equal(t, "ORD-2", got.Data[0].OrderNumber)
	assert.Equal(t, 2, got.Meta.TotalPages)
}

func TestHandler_AdminStatus(t *testing.T) {
	id := uuid.New()

	t.Run("Force", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := handler.NewMockService(ctrl)
		svc.EXPECT().ForceStatus(gomock.Any(), id, order.StatusInvested).
			Return(&order.Order{ID: id, Status: order.StatusInvested}, nil)

		rec := do(svc, http.MethodPatch, "/admin/orders/"+id.String()+"/status", `{"status":"invested"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Transition Rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := handler.NewMockService(ctrl)
		svc.EXPECT().Transition(gomock.Any(), id, order.StatusDelivered).Return(nil, order.ErrInvalidTransition)

		rec := do(svc, http.MethodPost, "/admin/orders/"+id.String()+"/transition", `{"status":"delivered"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(t, rec))
	})

	t.Run("Invalid Status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := handler.NewMockService(ctrl)
		svc.EXPECT().ForceStatus(gomock.Any(), id, order.Status("shipped")).Return(nil, order.ErrInvalidStatus)

		rec := do(svc, http.MethodPatch, "/admin/orders/"+id.String()+"/status", `{"status":"shipped"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
