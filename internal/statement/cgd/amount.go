package cgd

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// parseEuropeanAmount reads "1.234,56" style amounts into cents.
func parseEuropeanAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}
