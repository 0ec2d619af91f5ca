package deposit_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/encoding"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

type mocks struct {
	repo     *deposit.MockRepository
	parser   *deposit.MockParser
	matcher  *deposit.MockMatcher
	ledger   *deposit.MockCrediter
	beginner *database.MockBeginner
	tx       *database.MockTx
}

func newMocks(t *testing.T) (*mocks, *deposit.Service) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:     deposit.NewMockRepository(ctrl),
		parser:   deposit.NewMockParser(ctrl),
		matcher:  deposit.NewMockMatcher(ctrl),
		ledger:   deposit.NewMockCrediter(ctrl),
		beginner: database.NewMockBeginner(ctrl),
		tx:       database.NewMockTx(ctrl),
	}

	return m, deposit.NewService(m.repo, m.beginner, m.parser, m.matcher, m.ledger)
}

func (m *mocks) expectTx(times, commits int) {
	m.beginner.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(times)
	m.tx.EXPECT().Rollback().Return(nil).Times(times)

	if commits > 0 {
		m.tx.EXPECT().Commit().Return(nil).Times(commits)
	}
}

var day = time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)

func credit(row int, desc string, amount int64) statement.Line {
	return statement.Line{Row: row, Date: day, Description: desc, Amount: amount, Direction: statement.DirectionCredit}
}

func parsed(lines ...statement.Line) *statement.Parsed {
	return &statement.Parsed{Profile: "conta", Charset: encoding.UTF8, Lines: lines}
}

func TestService_Import(t *testing.T) {
	ana := uuid.New()
	debit := statement.Line{Row: 2, Date: day, Description: "COMISSAO", Amount: 780, Direction: statement.DirectionDebit}
	booked := credit(3, "TRF MV-7F3A ANA", 150000)
	seenBefore := credit(4, "TRF MV-7F3A ANA REFORCO", 2000)
	stranger := credit(5, "TRF DESCONHECIDO", 5000)

	m, svc := newMocks(t)
	m.parser.EXPECT().Parse(gomock.Any(), statement.BankCGD, gomock.Any()).
		Return(parsed(debit, booked, seenBefore, stranger), nil)

	m.matcher.EXPECT().Suggest(gomock.Any(), booked.Description).Return(ana, true, nil)
	m.matcher.EXPECT().Suggest(gomock.Any(), seenBefore.Description).Return(ana, true, nil)
	m.matcher.EXPECT().Suggest(gomock.Any(), stranger.Description).Return(uuid.Nil, false, nil)

	m.expectTx(2, 2)

	txID := uuid.New()
	gomock.InOrder(
		m.repo.EXPECT().Claim(gomock.Any(), m.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ database.Querier, d *deposit.Deposit) (bool, error) {
				assert.Equal(t, ana, d.UserID)
				assert.Equal(t, int64(150000), d.Amount)
				assert.Equal(t, deposit.Fingerprint(booked, 1), d.Fingerprint)

				return true, nil
			}),
		m.repo.EXPECT().Claim(gomock.Any(), m.tx, gomock.Any()).Return(false, nil),
	)

	m.ledger.EXPECT().Credit(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ database.Querier, e wallet.Entry) (*wallet.Transaction, error) {
			assert.Equal(t, wallet.TypeDeposit, e.Type)
			assert.Equal(t, wallet.RefDeposit, e.Reference.Type)
			assert.Equal(t, int64(150000), e.Amount)

			return &wallet.Transaction{ID: txID}, nil
		})
	m.repo.EXPECT().AttachTransaction(gomock.Any(), m.tx, gomock.Any(), txID).Return(nil)

	res, err := svc.Import(t.Context(), statement.BankCGD, strings.NewReader("csv"))
	require.NoError(t, err)

	require.Len(t, res.Credited, 1)
	assert.Equal(t, &txID, res.Credited[0].TransactionID)
	assert.Equal(t, int64(150000), res.Total())
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, res.Debits)
	assert.Equal(t, []statement.Line{stranger}, res.Unmatched)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "conta", res.Profile)
}

func TestService_Import_RepeatedLinesGetDistinctFingerprints(t *testing.T) {
	ana := uuid.New()
	line := credit(2, "TRF MV-7F3A", 1000)
	again := credit(3, "TRF MV-7F3A", 1000)

	m, svc := newMocks(t)
	m.parser.EXPECT().Parse(gomock.Any(), statement.BankCGD, gomock.Any()).Return(parsed(line, again), nil)
	m.matcher.EXPECT().Suggest(gomock.Any(), "TRF MV-7F3A").Return(ana, true, nil).Times(2)
	m.expectTx(2, 2)

	var fingerprints []string

	m.repo.EXPECT().Claim(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ database.Querier, d *deposit.Deposit) (bool, error) {
			fingerprints = append(fingerprints, d.Fingerprint)
			return true, nil
		}).Times(2)
	m.ledger.EXPECT().Credit(gomock.Any(), m.tx, gomock.Any()).Return(&wallet.Transaction{ID: uuid.New()}, nil).Times(2)
	m.repo.EXPECT().AttachTransaction(gomock.Any(), m.tx, gomock.Any(), gomock.Any()).Return(nil).Times(2)

	res, err := svc.Import(t.Context(), statement.BankCGD, strings.NewReader("csv"))
	require.NoError(t, err)

	assert.Len(t, res.Credited, 2)
	assert.Equal(t, []string{deposit.Fingerprint(line, 1), deposit.Fingerprint(line, 2)}, fingerprints)
	assert.NotEqual(t, fingerprints[0], fingerprints[1])
}

func TestService_Import_LineFailuresAreReported(t *testing.T) {
	ana := uuid.New()
	failing := credit(2, "TRF MV-7F3A", 1000)
	lookupFails := credit(3, "TRF MV-11AA", 2000)

	m, svc := newMocks(t)
	m.parser.EXPECT().Parse(gomock.Any(), statement.BankCGD, gomock.Any()).Return(parsed(failing, lookupFails), nil)
	m.matcher.EXPECT().Suggest(gomock.Any(), failing.Description).Return(ana, true, nil)
	m.matcher.EXPECT().Suggest(gomock.Any(), lookupFails.Description).Return(uuid.Nil, false, errors.New("db down"))

	m.expectTx(1, 0)
	m.repo.EXPECT().Claim(gomock.Any(), m.tx, gomock.Any()).Return(true, nil)
	m.ledger.EXPECT().Credit(gomock.Any(), m.tx, gomock.Any()).Return(nil, errors.New("lock timeout"))

	res, err := svc.Import(t.Context(), statement.BankCGD, strings.NewReader("csv"))
	require.NoError(t, err)

	assert.Empty(t, res.Credited)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Error, "lock timeout")
	assert.Equal(t, 3, res.Errors[1].Row)
}

func TestService_Import_ParseError(t *testing.T) {
	m, svc := newMocks(t)
	m.parser.EXPECT().Parse(gomock.Any(), statement.Bank("bpi"), gomock.Any()).Return(nil, statement.ErrUnknownBank)

	_, err := svc.Import(t.Context(), "bpi", strings.NewReader(""))
	assert.ErrorIs(t, err, statement.ErrUnknownBank)
}

func TestService_ListForUser(t *testing.T) {
	m, svc := newMocks(t)
	userID := uuid.New()
	deposits := []*deposit.Deposit{{ID: uuid.New(), UserID: userID, Amount: 1000}}

	m.repo.EXPECT().ListForUser(gomock.Any(), userID, pagination.Request{Page: 1, PerPage: 20}).Return(deposits, 21, nil)

	got, err := svc.ListForUser(t.Context(), userID, pagination.Request{})
	require.NoError(t, err)

	assert.Equal(t, deposits, got.Deposits)
	assert.Equal(t, 2, got.Meta.TotalPages)
}

func TestFingerprint(t *testing.T) {
	line := credit(2, "TRF MV-7F3A", 1000)
	moved := line
	moved.Row = 40

	assert.Equal(t, deposit.Fingerprint(line, 1), deposit.Fingerprint(moved, 1))
	assert.NotEqual(t, deposit.Fingerprint(line, 1), deposit.Fingerprint(line, 2))
	assert.Len(t, deposit.Fingerprint(line, 1), 64)
}
