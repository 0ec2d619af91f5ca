// Package resale holds the terms a resale purchase was agreed under.
package resale

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMonths     = errors.New("resale plan months must be positive")
	ErrInvalidPercentage = errors.New("resale plan profit percentage must not be negative")
)

var hundred = decimal.NewFromInt(100)

// Snapshot is the resale plan as it stood at checkout. It is built once and
// copied by value; later edits to the plan never reach it.
type Snapshot struct {
	months           int
	profitPercentage decimal.Decimal
	label            string
}

func NewSnapshot(months int, profitPercentage decimal.Decimal, label string) (Snapshot, error) {
	if months <= 0 {
		return Snapshot{}, ErrInvalidMonths
	}

	if profitPercentage.IsNegative() {
		return Snapshot{}, ErrInvalidPercentage
	}

	return Snapshot{months: months, profitPercentage: profitPercentage, label: label}, nil
}

// Restore rebuilds a snapshot from persisted columns.
func Restore(months int, profitPercentage decimal.Decimal, label string) Snapshot {
	return Snapshot{months: months, profitPercentage: profitPercentage, label: label}
}

func (s Snapshot) Months() int                       { return s.months }
func (s Snapshot) ProfitPercentage() decimal.Decimal { return s.profitPercentage }
func (s Snapshot) Label() string                     { return s.label }
func (s Snapshot) IsZero() bool                      { return s.months == 0 }

// Profit returns invested * percentage / 100 rounded half up to the cent.
func (s Snapshot) Profit(invested int64) int64 {
	return decimal.NewFromInt(invested).
		Mul(s.profitPercentage).
		Div(hundred).
		Round(0).
		IntPart()
}

// MaturityDate adds the plan's months to start, clamping to the last day of
// the target month: Jan 31 + 1 month is Feb 28, not Mar 3.
func (s Snapshot) MaturityDate(start time.Time) time.Time {
	y, m, d := start.Date()
	firstOfTarget := time.Date(y, m+time.Month(s.months), 1, 0, 0, 0, 0, start.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), min(d, lastDay),
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
}

// Terms are the amounts and dates an investment is opened with.
type Terms struct {
	Invested       int64
	Profit         int64
	ExpectedReturn int64
	InvestmentDate time.Time
	MaturityDate   time.Time
}

func (s Snapshot) Terms(invested int64, start time.Time) Terms {
	profit := s.Profit(invested)

	return Terms{
		Invested:       invested,
		Profit:         profit,
		ExpectedReturn: invested + profit,
		InvestmentDate: start,
		MaturityDate:   s.MaturityDate(start),
	}
}

type snapshotJSON struct {
	Months           int             `json:"months"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	Label            string          `json:"label"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Months:           s.months,
		ProfitPercentage: s.profitPercentage,
		Label:            s.label,
	})
}
