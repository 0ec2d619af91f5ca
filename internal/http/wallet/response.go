package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/http/resource"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

type walletResponse struct {
	Balance   int64      `json:"balance"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toWalletResponse(w *wallet.Wallet) walletResponse {
	resp := walletResponse{Balance: w.Balance}
	if !w.UpdatedAt.IsZero() {
		resp.UpdatedAt = &w.UpdatedAt
	}

	return resp
}

type referenceResponse struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

type transactionResponse struct {
	ID           uuid.UUID          `json:"id"`
	Type         wallet.Type        `json:"type"`
	Amount       int64              `json:"amount"`
	BalanceAfter int64              `json:"balance_after"`
	Description  string             `json:"description"`
	Reference    *referenceResponse `json:"reference,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toTransactionResponses(txs []*wallet.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = transactionResponse{
			ID:           tx.ID,
			Type:         tx.Type,
			Amount:       tx.Amount,
			BalanceAfter: tx.BalanceAfter,
			Description:  tx.Description,
			CreatedAt:    tx.CreatedAt,
		}

		if tx.Reference != nil {
			resp[i].Reference = &referenceResponse{Type: tx.Reference.Type, ID: tx.Reference.ID}
		}
	}

	return resp
}

type historyResponse struct {
	Balance int64 `json:"balance"`
	resource.Page[transactionResponse]
}

type depositResponse struct {
	ID             uuid.UUID  `json:"id"`
	Amount         int64      `json:"amount"`
	RawDescription string     `json:"raw_description"`
	Date           string     `json:"date"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toDepositResponses(deposits []*deposit.Deposit) []depositResponse {
	resp := make([]depositResponse, len(deposits))
	for i, d := range deposits {
		resp[i] = depositResponse{
			ID:             d.ID,
			Amount:         d.Amount,
			RawDescription: d.RawDescription,
			Date:           d.Date.Format(time.DateOnly),
			TransactionID:  d.TransactionID,
			CreatedAt:      d.CreatedAt,
		}
	}

	return resp
}

type verificationResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	Balance    int64     `json:"balance"`
	LedgerSum  int64     `json:"ledger_sum"`
	Consistent bool      `json:"consistent"`
}
