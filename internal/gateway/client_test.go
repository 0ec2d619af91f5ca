package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marketvest/internal/gateway"
)

func TestClient_CreateInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/invoices", r.URL.Path)

		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk_test", user)

		var in gateway.InvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "pp-1", in.ExternalID)
		assert.Equal(t, int64(5400), in.Amount)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"inv_1","external_id":"pp-1","status":"PENDING","amount":5400,
			"invoice_url":"https://pay.example/inv_1","expiry_date":"2026-10-15T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := gateway.NewClient(srv.URL+"/", "sk_test", time.Second)

	inv, err := c.CreateInvoice(t.Context(), gateway.InvoiceRequest{ExternalID: "pp-1", Amount: 5400})

	require.NoError(t, err)
	assert.Equal(t, "inv_1", inv.ID)
	assert.Equal(t, "https://pay.example/inv_1", inv.InvoiceURL)
	assert.False(t, inv.Paid())
}

func TestClient_GetInvoice(t *testing.T) {
	type testCase struct {
		name     string
		status   int
		body     string
		wantPaid bool
		wantErr  error
	}

	tests := []testCase{
		{name: "Paid", status: http.StatusOK, body: `{"id":"inv_1","status":"PAID","paid_amount":5400}`, wantPaid: true},
		{name: "Settled", status: http.StatusOK, body: `{"id":"inv_1","status":"SETTLED"}`, wantPaid: true},
		{name: "Expired", status: http.StatusOK, body: `{"id":"inv_1","status":"EXPIRED"}`},
		{name: "NotFound", status: http.StatusNotFound, body: `{}`, wantErr: gateway.ErrInvoiceNotFound},
		{name: "ServerError", status: http.StatusBadGateway, body: `oops`, wantErr: gateway.ErrUnavailable},
		{name: "Garbage", status: http.StatusOK, body: `<html>`, wantErr: gateway.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/invoices/inv_1", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			inv, err := gateway.NewClient(srv.URL, "sk_test", time.Second).GetInvoice(t.Context(), "inv_1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, inv.Paid())
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := gateway.NewClient(srv.URL, "sk_test", 20*time.Millisecond).GetInvoice(t.Context(), "inv_1")

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}
