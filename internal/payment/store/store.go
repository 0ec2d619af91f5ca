package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/payment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectPendingColumns = `
	id, user_id, payment_id, invoice_url, amount, payload, status, expires_at, paid_at,
	payment_response, order_id, created_at, updated_at
`

func (s *Store) CreatePending(ctx context.Context, p *payment.PendingPayment) error {
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	query := `
		INSERT INTO pending_payments (id, user_id, payment_id, invoice_url, amount, payload, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		p.ID,
		p.UserID,
		p.PaymentID,
		p.InvoiceURL,
		p.Amount,
		payload,
		p.Status,
		p.ExpiresAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating pending payment: %w", err)
	}

	return nil
}

func (s *Store) GetPending(ctx context.Context, id uuid.UUID) (*payment.PendingPayment, error) {
	var (
		p         payment.PendingPayment
		payload   []byte
		statusStr string
		response  []byte
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT `+selectPendingColumns+` FROM pending_payments WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.UserID, &p.PaymentID, &p.InvoiceURL, &p.Amount, &payload, &statusStr,
		&p.ExpiresAt, &p.PaidAt, &response, &p.OrderID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting pending payment: %w", err)
	}

	p.Status = payment.Status(statusStr)

	if err := json.Unmarshal(payload, &p.Payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	if len(response) > 0 {
		var r payment.Response
		if err := json.Unmarshal(response, &r); err != nil {
			return nil, fmt.Errorf("decoding payment response: %w", err)
		}

		p.Response = &r
	}

	return &p, nil
}

func (s *Store) ClaimPending(ctx context.Context, q database.Querier, id uuid.UUID, status payment.Status, at time.Time) (bool, error) {
	paidAt := sql.NullTime{Time: at, Valid: status == payment.StatusCompleted}

	res, err := q.ExecContext(ctx, `
		UPDATE pending_payments
		SET status = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'expired')`,
		id, status, paidAt,
	)
	if err != nil {
		return false, fmt.Errorf("claiming pending payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming pending payment: %w", err)
	}

	return n == 1, nil
}

func (s *Store) SaveResponse(ctx context.Context, q database.Querier, id uuid.UUID, resp *payment.Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding payment response: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		UPDATE pending_payments
		SET payment_response = $2, order_id = $3, updated_at = NOW()
		WHERE id = $1`,
		id, body, resp.OrderID,
	)
	if err != nil {
		return fmt.Errorf("saving payment response: %w", err)
	}

	return nil
}

func (s *Store) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_payments
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND expires_at < $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("expiring pending payments: %w", err)
	}

	return res.RowsAffected()
}
