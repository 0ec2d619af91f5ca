package resale_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

func TestNewSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		months  int
		pct     string
		wantErr error
	}{
		{name: "Valid", months: 6, pct: "15"},
		{name: "ZeroPercent", months: 1, pct: "0"},
		{name: "ZeroMonths", months: 0, pct: "10", wantErr: resale.ErrInvalidMonths},
		{name: "NegativePercent", months: 3, pct: "-1", wantErr: resale.ErrInvalidPercentage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := resale.NewSnapshot(tt.months, decimal.RequireFromString(tt.pct), "plan")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, s.IsZero())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.months, s.Months())
		})
	}
}

func TestSnapshot_Terms(t *testing.T) {
	s, err := resale.NewSnapshot(6, decimal.RequireFromString("15"), "6 months")
	require.NoError(t, err)

	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	terms := s.Terms(100000, start)

	assert.Equal(t, int64(100000), terms.Invested)
	assert.Equal(t, int64(15000), terms.Profit)
	assert.Equal(t, int64(115000), terms.ExpectedReturn)
	assert.Equal(t, start, terms.InvestmentDate)
	assert.Equal(t, time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC), terms.MaturityDate)
}

func TestSnapshot_MaturityDate(t *testing.T) {
	at := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 14, 30, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		months int
		start  time.Time
		want   time.Time
	}{
		{name: "MidMonth", months: 6, start: at(2026, 1, 15), want: at(2026, 7, 15)},
		{name: "MonthEndClampsToFebruary", months: 1, start: at(2026, 1, 31), want: at(2026, 2, 28)},
		{name: "LeapYear", months: 1, start: at(2028, 1, 31), want: at(2028, 2, 29)},
		{name: "ThirtyDayMonth", months: 3, start: at(2026, 5, 31), want: at(2026, 8, 31)},
		{name: "ClampsToThirtieth", months: 4, start: at(2026, 5, 31), want: at(2026, 9, 30)},
		{name: "CrossesYear", months: 12, start: at(2026, 12, 31), want: at(2027, 12, 31)},
		{name: "CrossesYearIntoFebruary", months: 14, start: at(2026, 12, 31), want: at(2028, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resale.Restore(tt.months, decimal.RequireFromString("10"), "plan")
			assert.Equal(t, tt.want, s.MaturityDate(tt.start))
		})
	}
}

func TestSnapshot_ProfitRoundsHalfUp(t *testing.T) {
	s := resale.Restore(3, decimal.RequireFromString("12.5"), "quarter")

	// 3.33 * 12.5% = 0.41625
	assert.Equal(t, int64(42), s.Profit(333))
	// 0.04 * 12.5% = 0.005
	assert.Equal(t, int64(1), s.Profit(4))
	assert.Equal(t, int64(0), s.Profit(3))
}

func TestSnapshot_MarshalJSON(t *testing.T) {
	s := resale.Restore(12, decimal.RequireFromString("20.5"), "Yearly")

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"months":12,"profit_percentage":"20.5","label":"Yearly"}`, string(b))
}
