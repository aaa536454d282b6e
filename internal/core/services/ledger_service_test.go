package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	cashCode   = domain.CashOnHandCode
	bankCode   = domain.BankCheckingCode
	rentCode   = "4.1.01.001"
	feesCode   = "5.1.04.001"
	equityCode = "3.1.01.001"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	env *testEnv
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = newSeededEnv(s.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) TestPostEntry_Balanced() {
	entry, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-10", cashCode, rentCode, "1500.00", "1500.00"), testUser)
	s.Require().NoError(err)

	s.Equal(int64(1), entry.EntryNumber)
	s.NotEmpty(entry.PeriodID)
	s.Require().Len(entry.Lines, 2)
	s.Equal(cashCode, entry.Lines[0].AccountCode)
	s.True(entry.TotalDebit.Equal(dec("1500")))

	period, err := s.env.svc.Period.GetPeriod(s.ctx, entry.PeriodID)
	s.Require().NoError(err)
	s.Equal("Junio 2025", period.Name)

	stored, err := s.env.svc.Ledger.GetEntry(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	s.Len(stored.Lines, 2)
}

func (s *LedgerServiceTestSuite) TestPostEntry_BalanceTolerance() {
	_, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-10", cashCode, rentCode, "1000", "999.98"), testUser)
	s.ErrorIs(err, services.ErrJournalUnbalanced)
	var unbalanced *services.UnbalancedError
	s.Require().True(errors.As(err, &unbalanced))
	s.True(unbalanced.TotalCredit.Equal(dec("999.98")))

	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-10", cashCode, rentCode, "1000", "999.991"), testUser)
	s.NoError(err)
}

func (s *LedgerServiceTestSuite) TestPostEntry_RejectsSingleLine() {
	req := entryRequest("2025-06-10", cashCode, rentCode, "0", "0")
	req.Lines = req.Lines[:1]
	_, err := s.env.svc.Ledger.PostEntry(s.ctx, req, testUser)
	s.ErrorIs(err, services.ErrJournalMinLines)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostEntry_InvalidLines() {
	req := entryRequest("2025-06-10", cashCode, rentCode, "100", "100")
	req.Lines[0].Debit = dec("-100")
	_, err := s.env.svc.Ledger.PostEntry(s.ctx, req, testUser)
	s.ErrorIs(err, services.ErrInvalidLine)

	req = entryRequest("2025-06-10", cashCode, rentCode, "100", "100")
	req.Lines = append(req.Lines, dto.PostEntryLineRequest{AccountCode: feesCode})
	_, err = s.env.svc.Ledger.PostEntry(s.ctx, req, testUser)
	s.ErrorIs(err, services.ErrInvalidLine)

	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("10/06/2025", cashCode, rentCode, "1", "1"), testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostEntry_AccountChecks() {
	_, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-10", "1.1.01", rentCode, "100", "100"), testUser)
	s.ErrorIs(err, services.ErrAccountNotPostable)

	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-10", "9.9.99", rentCode, "100", "100"), testUser)
	s.ErrorIs(err, services.ErrAccountNotFound)

	parent, err := s.env.store.FindAccountByCode(s.ctx, "1.1.01")
	s.Require().NoError(err)
	req := entryRequest("2025-06-10", "", rentCode, "100", "100")
	req.Lines[0].AccountID = parent.AccountID
	_, err = s.env.svc.Ledger.PostEntry(s.ctx, req, testUser)
	s.ErrorIs(err, services.ErrAccountNotPostable, "postability is checked when lines use account ids")

	fees, err := s.env.store.FindAccountByCode(s.ctx, feesCode)
	s.Require().NoError(err)
	s.Require().NoError(s.env.svc.Account.DeactivateAccount(s.ctx, fees.AccountID, testUser))
	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-10", feesCode, cashCode, "10", "10"), testUser)
	s.ErrorIs(err, services.ErrAccountInactive)
}

func (s *LedgerServiceTestSuite) TestPostEntry_SourceEventIsIdempotent() {
	req := entryRequest("2025-06-10", cashCode, rentCode, "200", "200")
	req.SourceEventID = "payment-42"

	first, err := s.env.svc.Ledger.PostEntry(s.ctx, req, testUser)
	s.Require().NoError(err)
	second, err := s.env.svc.Ledger.PostEntry(s.ctx, req, testUser)
	s.Require().NoError(err)
	s.Equal(first.EntryID, second.EntryID)

	balance, err := s.env.svc.Ledger.AccountBalanceByCode(s.ctx, cashCode, nil)
	s.Require().NoError(err)
	s.True(balance.Equal(dec("200")), balance.String())
}

func (s *LedgerServiceTestSuite) TestPostEntry_ClosedPeriodGate() {
	entry, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-05-31", cashCode, equityCode, "10000", "10000"), testUser)
	s.Require().NoError(err)
	_, err = s.env.svc.Period.ClosePeriod(s.ctx, entry.PeriodID, testUser)
	s.Require().NoError(err)

	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-05-15", cashCode, rentCode, "50", "50"), testUser)
	s.ErrorIs(err, services.ErrPeriodClosed)

	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-01", cashCode, rentCode, "50", "50"), testUser)
	s.NoError(err)
}

func (s *LedgerServiceTestSuite) TestBalances_SignConvention() {
	_, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-01", bankCode, equityCode, "10000", "10000"), testUser)
	s.Require().NoError(err)
	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-05", feesCode, bankCode, "150", "150"), testUser)
	s.Require().NoError(err)
	_, err = s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-20", bankCode, rentCode, "3000", "3000"), testUser)
	s.Require().NoError(err)

	bank, err := s.env.svc.Ledger.AccountBalanceByCode(s.ctx, bankCode, nil)
	s.Require().NoError(err)
	s.True(bank.Equal(dec("12850")), bank.String())

	asOf := day(2025, 6, 10)
	bankEarly, err := s.env.svc.Ledger.AccountBalanceByCode(s.ctx, bankCode, &asOf)
	s.Require().NoError(err)
	s.True(bankEarly.Equal(dec("9850")), bankEarly.String())

	rent, err := s.env.svc.Ledger.AccountBalanceByCode(s.ctx, rentCode, nil)
	s.Require().NoError(err)
	s.True(rent.Equal(dec("3000")), "income balances are credit natured")

	unused, err := s.env.svc.Ledger.AccountBalanceByCode(s.ctx, cashCode, nil)
	s.Require().NoError(err)
	s.True(unused.IsZero())

	parent, err := s.env.svc.Ledger.AccountBalanceByCode(s.ctx, "1.1.01", nil)
	s.Require().NoError(err)
	s.True(parent.IsZero())

	tb, err := s.env.svc.Ledger.TrialBalance(s.ctx, nil)
	s.Require().NoError(err)
	s.True(tb.TotalDebit.Equal(tb.TotalCredit))
	s.True(tb.TotalDebit.Equal(dec("13150")))
	s.Require().Len(tb.Rows, 4)
	s.Equal(bankCode, tb.Rows[0].Code)
	s.True(tb.Rows[0].Balance.Equal(dec("12850")))
}

func (s *LedgerServiceTestSuite) TestListEntries_Pages() {
	for _, date := range []string{"2025-06-01", "2025-06-02", "2025-06-03"} {
		_, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest(date, cashCode, rentCode, "1", "1"), testUser)
		s.Require().NoError(err)
	}

	page, err := s.env.svc.Ledger.ListEntries(s.ctx, dto.ListEntriesParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page.Entries, 2)
	s.Equal("2025-06-03", page.Entries[0].Date)
	s.Require().NotEmpty(page.NextToken)

	rest, err := s.env.svc.Ledger.ListEntries(s.ctx, dto.ListEntriesParams{Limit: 2, NextToken: page.NextToken})
	s.Require().NoError(err)
	s.Require().Len(rest.Entries, 1)
	s.Equal("2025-06-01", rest.Entries[0].Date)
	s.Empty(rest.NextToken)

	_, err = s.env.svc.Ledger.ListEntries(s.ctx, dto.ListEntriesParams{From: "junio"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryBySourceEventID(ctx context.Context, sourceEventID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, sourceEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, string, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), args.String(1), args.Error(2)
}

func (m *MockJournalRepository) SumAccountLines(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockJournalRepository) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestPostEntry_ConcurrentSourceEventReturnsWinner(t *testing.T) {
	env := newSeededEnv(t)
	ctx := context.Background()
	repo := new(MockJournalRepository)
	ledger := services.NewLedgerService(repo, env.store, env.svc.Account, env.svc.Period)

	winner := &domain.JournalEntry{EntryID: "winner", SourceEventID: "evt-1"}
	repo.On("FindEntryBySourceEventID", mock.Anything, "evt-1").Return(nil, apperrors.ErrNotFound).Once()
	repo.On("SaveEntry", mock.Anything, mock.AnythingOfType("*domain.JournalEntry")).Return(apperrors.ErrDuplicate).Once()
	repo.On("FindEntryBySourceEventID", mock.Anything, "evt-1").Return(winner, nil).Once()

	req := entryRequest("2025-06-10", cashCode, rentCode, "10", "10")
	req.SourceEventID = "evt-1"
	got, err := ledger.PostEntry(ctx, req, testUser)
	require.NoError(t, err)
	assert.Equal(t, "winner", got.EntryID)
	repo.AssertExpectations(t)
}

func TestAccountBalance_PropagatesRepositoryError(t *testing.T) {
	env := newSeededEnv(t)
	ctx := context.Background()
	repo := new(MockJournalRepository)
	ledger := services.NewLedgerService(repo, env.store, env.svc.Account, env.svc.Period)

	cash, err := env.store.FindAccountByCode(ctx, cashCode)
	require.NoError(t, err)
	dbErr := errors.New("connection reset")
	repo.On("SumAccountLines", mock.Anything, cash.AccountID, (*time.Time)(nil)).Return(decimal.Zero, decimal.Zero, dbErr)

	_, err = ledger.AccountBalance(ctx, cash.AccountID, nil)
	assert.ErrorIs(t, err, dbErr)

	_, err = ledger.AccountBalance(ctx, "missing", nil)
	assert.ErrorIs(t, err, services.ErrAccountNotFound)
}

// noChartScan fails any full listing of the chart.
type noChartScan struct {
	portssvc.AccountReaderSvc
}

func (noChartScan) ListAccounts(context.Context, dto.ListAccountsParams) ([]domain.Account, error) {
	return nil, errors.New("chart listed")
}

func TestAccountBalanceByCode_SummaryAccountLookup(t *testing.T) {
	env := newSeededEnv(t)
	ctx := context.Background()
	ledger := services.NewLedgerService(env.store, env.store, noChartScan{env.svc.Account}, env.svc.Period)

	_, err := ledger.PostEntry(ctx, entryRequest("2025-06-01", bankCode, equityCode, "500", "500"), testUser)
	require.NoError(t, err)

	parent, err := ledger.AccountBalanceByCode(ctx, "1.1.01", nil)
	require.NoError(t, err)
	assert.True(t, parent.IsZero(), "summary balances only hold direct postings")

	bank, err := ledger.AccountBalanceByCode(ctx, bankCode, nil)
	require.NoError(t, err)
	assert.True(t, bank.Equal(dec("500")), bank.String())

	_, err = ledger.AccountBalanceByCode(ctx, "9.9.99", nil)
	assert.ErrorIs(t, err, services.ErrAccountNotFound)
}
