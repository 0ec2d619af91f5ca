package settlement_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	handler "github.com/MrJamesThe3rd/marketvest/internal/http/settlement"
	"github.com/MrJamesThe3rd/marketvest/internal/settlement"
)

func TestHandler_Run(t *testing.T) {
	failed := uuid.New()

	tests := []struct {
		name       string
		res        *settlement.Result
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Reports Totals",
			res:        &settlement.Result{Processed: 2, Credited: 2300, Skipped: 1, Errors: []settlement.OrderError{{OrderID: failed, Error: "lock timeout"}}},
			wantStatus: http.StatusOK,
			wantBody:   `{"processed":2,"credited":2300,"skipped":1,"errors":[{"order_id":"` + failed.String() + `","error":"lock timeout"}]}`,
		},
		{
			name:       "Listing Fails",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"INTERNAL","message":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := handler.NewMockService(ctrl)
			svc.EXPECT().Run(gomock.Any()).Return(tt.res, tt.err)

			r := chi.NewRouter()
			r.Route("/admin/settlements", handler.NewHandler(svc).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/settlements/run", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
