package deposit

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/encoding"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
)

// Deposit is a statement credit that has been booked to a wallet.
type Deposit struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Fingerprint    string
	Amount         int64 // Amount in cents
	RawDescription string
	Date           time.Time
	TransactionID  *uuid.UUID
	CreatedAt      time.Time
}

type LineError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Result struct {
	Profile    string
	Charset    encoding.Charset
	Credited   []*Deposit
	Unmatched  []statement.Line
	Duplicates int
	Debits     int
	Errors     []LineError
}

func (r *Result) Total() int64 {
	var total int64
	for _, d := range r.Credited {
		total += d.Amount
	}

	return total
}

// Fingerprint identifies the n-th occurrence (1-based) of a movement so
// re-importing an overlapping statement books nothing twice while two
// identical transfers on the same day are both kept.
func Fingerprint(l statement.Line, occurrence int) string {
	sum := sha256.Sum256([]byte(l.Key() + "|" + strconv.Itoa(occurrence)))
	return hex.EncodeToString(sum[:])
}
