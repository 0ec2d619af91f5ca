package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectWalletColumns = `id, user_id, balance, created_at, updated_at`

func scanWallet(s scanner) (*wallet.Wallet, error) {
	var w wallet.Wallet
	if err := s.Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}

	return &w, nil
}

const selectTransactionColumns = `
	id, wallet_id, type, amount, balance_after, description, reference_type, reference_id, created_at
`

func scanTransaction(s scanner) (*wallet.Transaction, error) {
	var (
		tx      wallet.Transaction
		typeStr string
		refType sql.NullString
		refID   *uuid.UUID
	)

	if err := s.Scan(
		&tx.ID, &tx.WalletID, &typeStr, &tx.Amount, &tx.BalanceAfter, &tx.Description,
		&refType, &refID, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = wallet.Type(typeStr)
	if refType.Valid && refID != nil {
		tx.Reference = &wallet.Reference{Type: refType.String, ID: *refID}
	}

	return &tx, nil
}

// LockWallet provisions the wallet on first use and holds its row lock until
// the surrounding transaction ends.
func (s *Store) LockWallet(ctx context.Context, q database.Querier, userID uuid.UUID) (*wallet.Wallet, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID,
	); err != nil {
		return nil, fmt.Errorf("provisioning wallet: %w", err)
	}

	query := `SELECT ` + selectWalletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	w, err := scanWallet(q.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("locking wallet: %w", err)
	}

	return w, nil
}

func (s *Store) UpdateBalance(ctx context.Context, q database.Querier, walletID uuid.UUID, balance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	if _, err := q.ExecContext(ctx, query, balance, walletID); err != nil {
		if database.IsCheckViolation(err) {
			return wallet.ErrInsufficientBalance
		}

		return fmt.Errorf("updating balance: %w", err)
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, q database.Querier, tx *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (wallet_id, type, amount, balance_after, description, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	var (
		refType *string
		refID   *uuid.UUID
	)

	if tx.Reference != nil {
		refType = &tx.Reference.Type
		refID = &tx.Reference.ID
	}

	err := q.QueryRowContext(ctx, query,
		tx.WalletID,
		tx.Type,
		tx.Amount,
		tx.BalanceAfter,
		tx.Description,
		refType,
		refID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_wallet_transactions_reference") {
			return wallet.ErrDuplicateMovement.WithCause(err)
		}

		return fmt.Errorf("creating wallet transaction: %w", err)
	}

	return nil
}

func (s *Store) GetWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `SELECT ` + selectWalletColumns + ` FROM wallets WHERE user_id = $1`

	w, err := scanWallet(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wallet.ErrNotFound
		}

		return nil, fmt.Errorf("getting wallet: %w", err)
	}

	return w, nil
}

func (s *Store) ListTransactions(ctx context.Context, walletID uuid.UUID, page pagination.Request) ([]*wallet.Transaction, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`, walletID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting wallet transactions: %w", err)
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, walletID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("listing wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []*wallet.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning wallet transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating wallet transactions: %w", err)
	}

	return txs, total, nil
}

func (s *Store) SumTransactions(ctx context.Context, walletID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE WHEN type IN ('deposit', 'refund', 'resale_return') THEN amount ELSE -amount END
		), 0)
		FROM wallet_transactions
		WHERE wallet_id = $1
	`

	var sum int64
	if err := s.db.QueryRowContext(ctx, query, walletID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing wallet transactions: %w", err)
	}

	return sum, nil
}
