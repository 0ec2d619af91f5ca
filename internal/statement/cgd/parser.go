package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/marketvest/internal/encoding"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
)

// Parser reads Caixa Geral de Depósitos CSV exports. The layout (conta,
// extrato, cartão) is picked by matching the header row against profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*statement.Parsed, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, statement.ErrMalformedStatement.WithCause(fmt.Errorf("detect encoding: %w", err))
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, statement.ErrMalformedStatement.WithCause(fmt.Errorf("read csv: %w", err))
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, statement.ErrUnrecognisedLayout.WithMessage(
			"no matching CGD layout: expected the columns of %s", profileNames())
	}

	lines, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	if err != nil {
		return nil, err
	}

	return &statement.Parsed{Profile: profile.Name, Charset: charset, Lines: lines}, nil
}

type colIndex map[string]int

// detectProfile returns the first profile whose columns appear together on
// one row, with that row's column map and index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].matches(cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// parseRows skips rows without a date or a non-zero amount; those are
// footers, page markers and balance lines.
func parseRows(p *Profile, cols colIndex, rows [][]string, firstIdx int) ([]statement.Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var lines []statement.Line

	for i, row := range rows {
		rowNum := firstIdx + i + 1

		date, ok := parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		amount, dir, ok := p.amount(cols, row)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, statement.ErrMalformedStatement.WithMessage("row %d: missing description", rowNum)
		}

		lines = append(lines, statement.Line{
			Row:         rowNum,
			Date:        date,
			Description: desc,
			Amount:      amount,
			Direction:   dir,
		})
	}

	return lines, nil
}

var dateLayouts = []string{"02-01-2006", "02/01/2006"}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// signedAmount turns a signed cell into an amount and direction.
func signedAmount(s string) (int64, statement.Direction, bool) {
	if s == "" {
		return 0, "", false
	}

	cents, err := parseEuropeanAmount(s)
	if err != nil || cents == 0 {
		return 0, "", false
	}

	if cents < 0 {
		return -cents, statement.DirectionDebit, true
	}

	return cents, statement.DirectionCredit, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
