package deposit

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/encoding"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
)

type creditedResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Amount         int64      `json:"amount"`
	RawDescription string     `json:"raw_description"`
	Date           string     `json:"date"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`
}

type lineResponse struct {
	Row         int    `json:"row"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type importResponse struct {
	Profile    string              `json:"profile"`
	Charset    encoding.Charset    `json:"charset"`
	Credited   []creditedResponse  `json:"credited"`
	Total      int64               `json:"total"`
	Duplicates int                 `json:"duplicates"`
	Debits     int                 `json:"debits"`
	Unmatched  []lineResponse      `json:"unmatched"`
	Errors     []deposit.LineError `json:"errors"`
}

func toImportResponse(res *deposit.Result) importResponse {
	resp := importResponse{
		Profile:    res.Profile,
		Charset:    res.Charset,
		Credited:   make([]creditedResponse, 0, len(res.Credited)),
		Total:      res.Total(),
		Duplicates: res.Duplicates,
		Debits:     res.Debits,
		Unmatched:  make([]lineResponse, 0, len(res.Unmatched)),
		Errors:     res.Errors,
	}

	for _, d := range res.Credited {
		resp.Credited = append(resp.Credited, creditedResponse{
			ID:             d.ID,
			UserID:         d.UserID,
			Amount:         d.Amount,
			RawDescription: d.RawDescription,
			Date:           d.Date.Format(time.DateOnly),
			TransactionID:  d.TransactionID,
		})
	}

	for _, l := range res.Unmatched {
		resp.Unmatched = append(resp.Unmatched, toLineResponse(l))
	}

	if resp.Errors == nil {
		resp.Errors = []deposit.LineError{}
	}

	return resp
}

func toLineResponse(l statement.Line) lineResponse {
	return lineResponse{
		Row:         l.Row,
		Date:        l.Date.Format(time.DateOnly),
		Description: l.Description,
		Amount:      l.Amount,
	}
}
