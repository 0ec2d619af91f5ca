// Package gateway is a client for the hosted-invoice payment provider. The
// provider collects the money; this package only creates and reads invoices.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
)

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceSettled InvoiceStatus = "SETTLED"
	InvoiceExpired InvoiceStatus = "EXPIRED"
)

var (
	ErrUnavailable     = apperr.New(apperr.KindDependency, "GATEWAY_UNAVAILABLE", "payment provider is unavailable")
	ErrInvoiceNotFound = apperr.New(apperr.KindNotFound, "INVOICE_NOT_FOUND", "invoice not found at payment provider")
)

// InvoiceRequest asks the provider for a hosted payment page. Amount is in
// minor units.
type InvoiceRequest struct {
	ExternalID         string `json:"external_id"`
	Amount             int64  `json:"amount"`
	Description        string `json:"description"`
	PayerEmail         string `json:"payer_email,omitempty"`
	SuccessRedirectURL string `json:"success_redirect_url"`
	FailureRedirectURL string `json:"failure_redirect_url"`
	InvoiceDuration    int    `json:"invoice_duration"` // Seconds
}

type Invoice struct {
	ID         string        `json:"id"`
	ExternalID string        `json:"external_id"`
	Status     InvoiceStatus `json:"status"`
	Amount     int64         `json:"amount"`
	PaidAmount int64         `json:"paid_amount"`
	InvoiceURL string        `json:"invoice_url"`
	ExpiryDate time.Time     `json:"expiry_date"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
}

// Paid reports whether the provider confirms the money was collected.
func (i *Invoice) Paid() bool {
	return i.Status == InvoicePaid || i.Status == InvoiceSettled
}

type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateInvoice(ctx context.Context, in InvoiceRequest) (*Invoice, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding invoice request: %w", err)
	}

	var inv Invoice
	if err := c.do(ctx, http.MethodPost, "/v2/invoices", body, &inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, http.MethodGet, "/v2/invoices/"+url.PathEscape(id), nil, &inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrInvoiceNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return ErrUnavailable.WithMessage("payment provider returned %d", resp.StatusCode).
			WithCause(fmt.Errorf("%s %s: %s", method, path, truncate(respBody, 256)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return ErrUnavailable.WithMessage("unreadable payment provider response").WithCause(err)
	}

	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}

	return string(b)
}
