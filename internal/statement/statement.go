package statement

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/encoding"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Line is one movement read from a bank statement.
type Line struct {
	Row         int // 1-based CSV record, blank lines excluded
	Date        time.Time
	Description string
	Amount      int64 // Always positive, in cents
	Direction   Direction
}

func (l Line) IsCredit() bool { return l.Direction == DirectionCredit }

// Key identifies a movement independently of where it appears in the file.
func (l Line) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s",
		l.Date.Format(time.DateOnly), l.Amount, l.Direction, strings.ToUpper(strings.Join(strings.Fields(l.Description), " ")))
}

type Parsed struct {
	Profile string
	Charset encoding.Charset
	Lines   []Line
}

func (p *Parsed) Credits() []Line {
	var credits []Line

	for _, l := range p.Lines {
		if l.IsCredit() {
			credits = append(credits, l)
		}
	}

	return credits
}

var (
	ErrUnknownBank        = apperr.New(apperr.KindValidation, "UNKNOWN_BANK", "unknown bank")
	ErrUnrecognisedLayout = apperr.New(apperr.KindValidation, "UNRECOGNISED_STATEMENT", "statement layout not recognised")
	ErrMalformedStatement = apperr.New(apperr.KindValidation, "MALFORMED_STATEMENT", "statement could not be read")
)

type Parser interface {
	Parse(r io.Reader) (*Parsed, error)
}

type Service struct {
	parsers map[Bank]Parser
}

func NewService(parsers map[Bank]Parser) *Service {
	return &Service{parsers: parsers}
}

func (s *Service) Banks() []Bank {
	return slices.Sorted(maps.Keys(s.parsers))
}

func (s *Service) Parse(_ context.Context, bank Bank, r io.Reader) (*Parsed, error) {
	p, ok := s.parsers[bank]
	if !ok {
		return nil, ErrUnknownBank.WithMessage("unknown bank: %s", bank)
	}

	return p.Parse(r)
}
