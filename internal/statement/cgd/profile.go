package cgd

import (
	"strings"

	"github.com/MrJamesThe3rd/marketvest/internal/statement"
)

type amountMode int

const (
	// amountSingle is one signed column, e.g. "Montante" holding "-10,00".
	amountSingle amountMode = iota
	// amountSplit is a pair of unsigned "Débito"/"Crédito" columns.
	amountSplit
)

// Profile is the column layout of one CGD export.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	if p.AmountMode == amountSplit {
		return append(cols, p.DebitCol, p.CreditCol)
	}

	return append(cols, p.AmountCol)
}

func (p Profile) matches(cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func (p Profile) amount(cols colIndex, row []string) (int64, statement.Direction, bool) {
	if p.AmountMode == amountSingle {
		return signedAmount(cellValue(row, cols[p.AmountCol]))
	}

	if cents, _, ok := signedAmount(cellValue(row, cols[p.DebitCol])); ok {
		return abs(cents), statement.DirectionDebit, true
	}

	if cents, _, ok := signedAmount(cellValue(row, cols[p.CreditCol])); ok {
		return abs(cents), statement.DirectionCredit, true
	}

	return 0, "", false
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "cartão",
		DateCol:    "Data",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "extrato",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Movimento",
	},
	{
		Name:       "conta",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Montante",
	},
}

func profileNames() string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}

	return strings.Join(names, ", ")
}
